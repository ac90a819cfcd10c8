package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/epsilon/internal/logging"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/topology"
)

// DefaultEpsilon is the exploration probability used when none is configured.
const DefaultEpsilon = 0.4

// WarmupIterations is the number of completed loops observed before warmup may end.
// The flag flips on the iteration check whose pre-increment counter exceeds it.
const WarmupIterations = 3

// Engine is the step sequencer and epsilon-greedy decision engine.
// All mutating operations are serialized; Snapshot returns an immutable copy.
type Engine struct {
	mu    sync.Mutex
	topo  *topology.Topology
	state domain.State

	epsilon float64
	rng     RandomSource
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithEpsilon sets the exploration probability. It must lie in (0,1).
func WithEpsilon(eps float64) EngineOption {
	return func(e *Engine) {
		e.epsilon = eps
	}
}

// WithRandom injects the source of the decision draws.
func WithRandom(src RandomSource) EngineOption {
	return func(e *Engine) {
		if src != nil {
			e.rng = src
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a sequencer over the given topology.
func NewEngine(topo *topology.Topology, opts ...EngineOption) (*Engine, error) {
	if topo == nil {
		return nil, fmt.Errorf("topology is required")
	}
	e := &Engine{
		topo:    topo,
		epsilon: DefaultEpsilon,
		rng:     DefaultRandom(),
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !(e.epsilon > 0 && e.epsilon < 1) {
		return nil, fmt.Errorf("%w: got %v", domain.ErrInvalidEpsilon, e.epsilon)
	}
	e.state = domain.NewState(e.epsilon)
	return e, nil
}

// Topology returns the read-only pipeline model.
func (e *Engine) Topology() *topology.Topology {
	return e.topo
}

// StepCount is the terminal step of a run.
func (e *Engine) StepCount() int {
	return e.topo.StepCount()
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Activation derives the lit stages and edges for the current state.
func (e *Engine) Activation() domain.Activation {
	return DeriveActivation(e.topo, e.Snapshot())
}

// Start sets the engine running. A completed run is reset first.
func (e *Engine) Start() domain.State {
	e.mu.Lock()
	if e.state.Step >= e.topo.StepCount() {
		e.logger.Debug("Start after completion, resetting")
		e.resetLocked()
	}
	e.state.Running = true
	s := e.state
	e.mu.Unlock()

	e.emitControl(domain.ControlStart, s)
	return s
}

// Continue starts the next loop of a completed run, keeping the iteration
// counter and warmup flag. On an incomplete run it behaves like Start.
func (e *Engine) Continue() domain.State {
	e.mu.Lock()
	if e.state.Step >= e.topo.StepCount() {
		e.state.Step = 0
	}
	e.state.Running = true
	s := e.state
	e.mu.Unlock()

	e.emitControl(domain.ControlContinue, s)
	return s
}

// Pause stops the run without touching anything else.
func (e *Engine) Pause() domain.State {
	e.mu.Lock()
	e.state.Running = false
	s := e.state
	e.mu.Unlock()

	e.emitControl(domain.ControlPause, s)
	return s
}

// Reset returns to the construction defaults and stops the run.
func (e *Engine) Reset() domain.State {
	e.mu.Lock()
	e.resetLocked()
	s := e.state
	e.mu.Unlock()

	e.emitControl(domain.ControlReset, s)
	return s
}

func (e *Engine) resetLocked() {
	selected := e.state.SelectedStageID
	e.state = domain.NewState(e.epsilon)
	e.state.SelectedStageID = selected
}

// Tick advances the clock by one step.
// It is a no-op unless the engine is running and the run is incomplete;
// ticking a completed run stops it.
func (e *Engine) Tick() domain.State {
	e.mu.Lock()

	last := e.topo.StepCount()
	if !e.state.Running || e.state.Step >= last {
		if e.state.Step >= last && e.state.Running {
			e.state.Running = false
			e.logger.Debug("Run complete, stopping", "step", e.state.Step)
		}
		s := e.state
		e.mu.Unlock()
		return s
	}

	e.state.Step++
	step := e.state.Step

	var decision *domain.DecisionEvent
	var iteration *domain.IterationEvent

	if step == e.topo.DecisionStep() {
		draw := e.rng.Float64()
		e.state.RandomDraw = draw
		e.state.Exploring = e.state.Warmup || draw < e.epsilon
		decision = &domain.DecisionEvent{
			EventBase:  e.base(domain.EventDecision),
			RandomDraw: draw,
			Epsilon:    e.epsilon,
			Warmup:     e.state.Warmup,
			Exploring:  e.state.Exploring,
		}
	}

	if step == e.topo.IterationStep() {
		prev := e.state.Iteration
		e.state.Iteration++
		ended := false
		if prev > WarmupIterations && e.state.Warmup {
			e.state.Warmup = false
			ended = true
		}
		iteration = &domain.IterationEvent{
			EventBase:   e.base(domain.EventIteration),
			Iteration:   e.state.Iteration,
			Warmup:      e.state.Warmup,
			WarmupEnded: ended,
		}
	}

	s := e.state
	e.mu.Unlock()

	stageID := ""
	if st, ok := CurrentStage(e.topo, s); ok {
		stageID = st.ID
	}
	e.logger.Debug("Tick", "step", s.Step, "stage", stageID)

	if e.hooks.OnStep != nil {
		e.hooks.OnStep(&domain.StepEvent{EventBase: e.base(domain.EventStep), Step: s.Step, StageID: stageID})
	}
	if decision != nil {
		e.logger.Debug("Decision", "draw", decision.RandomDraw, "epsilon", decision.Epsilon, "warmup", decision.Warmup, "exploring", decision.Exploring)
		if e.hooks.OnDecision != nil {
			e.hooks.OnDecision(decision)
		}
	}
	if iteration != nil {
		if iteration.WarmupEnded {
			e.logger.Info("Warmup ended", "iteration", iteration.Iteration)
		}
		if e.hooks.OnIteration != nil {
			e.hooks.OnIteration(iteration)
		}
	}
	return s
}

// SelectStage toggles the UI focus. Selecting the focused stage again, or
// passing an empty id, clears it. Unknown ids are ignored.
func (e *Engine) SelectStage(id string) domain.State {
	e.mu.Lock()
	switch {
	case id == "" || id == e.state.SelectedStageID:
		e.state.SelectedStageID = ""
	default:
		if _, ok := e.topo.StageByID(id); ok {
			e.state.SelectedStageID = id
		} else {
			e.logger.Debug("Ignoring selection of unknown stage", "stage", id)
		}
	}
	s := e.state
	e.mu.Unlock()

	e.emitControl(domain.ControlSelect, s)
	return s
}

func (e *Engine) emitControl(c domain.Control, s domain.State) {
	e.logger.Debug("Control", "op", c, "step", s.Step, "running", s.Running)
	if e.hooks.OnControl != nil {
		e.hooks.OnControl(&domain.ControlEvent{EventBase: e.base(domain.EventControl), Control: c, State: s})
	}
}

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t}
}
