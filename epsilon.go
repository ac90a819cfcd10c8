package epsilon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/epsilon/internal/logging"
	"github.com/aretw0/epsilon/internal/presentation/graph"
	"github.com/aretw0/epsilon/internal/runtime"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/observability"
	"github.com/aretw0/epsilon/pkg/scheduler"
	"github.com/aretw0/epsilon/pkg/topology"
	"github.com/aretw0/epsilon/pkg/view"
)

// Engine is the high-level entry point of the library.
// It wires the sequencer, its scheduler and the text catalog together.
type Engine struct {
	runtime   *runtime.Engine
	scheduler *scheduler.Scheduler
	topo      *topology.Topology
	catalog   *locale.Catalog

	epsilon  float64
	interval time.Duration
	loop     bool
	random   runtime.RandomSource
	hooks    domain.LifecycleHooks
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithTopology replaces the default pipeline.
func WithTopology(topo *topology.Topology) Option {
	return func(e *Engine) {
		e.topo = topo
	}
}

// WithEpsilon sets the exploration probability.
func WithEpsilon(eps float64) Option {
	return func(e *Engine) {
		e.epsilon = eps
	}
}

// WithInterval sets the tick period of the scheduler.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// WithLoop keeps the scheduler iterating after each completed run.
func WithLoop(loop bool) Option {
	return func(e *Engine) {
		e.loop = loop
	}
}

// WithRandom injects the source of decision draws.
func WithRandom(src runtime.RandomSource) Option {
	return func(e *Engine) {
		e.random = src
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMetrics records lifecycle events into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithCatalog sets the text catalog (default: embedded catalogs).
func WithCatalog(c *locale.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine. No timer runs until Play.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		epsilon:  runtime.DefaultEpsilon,
		interval: scheduler.DefaultInterval,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.topo == nil {
		eng.topo = topology.Default()
	}
	if eng.catalog == nil {
		c, err := locale.New(locale.WithLogger(eng.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to load catalogs: %w", err)
		}
		eng.catalog = c
	}

	hooks := eng.hooks
	if eng.metrics != nil {
		hooks = observability.Combine(eng.metrics.Hooks(), hooks)
	}

	rtOpts := []runtime.EngineOption{
		runtime.WithEpsilon(eng.epsilon),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.random != nil {
		rtOpts = append(rtOpts, runtime.WithRandom(eng.random))
	}

	rt, err := runtime.NewEngine(eng.topo, rtOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sequencer: %w", err)
	}
	eng.runtime = rt

	eng.scheduler = scheduler.New(rt,
		scheduler.WithInterval(eng.interval),
		scheduler.WithLoop(eng.loop),
		scheduler.WithLogger(eng.logger),
	)
	return eng, nil
}

// Play starts or resumes the animation; the timer lives until ctx is done,
// Pause, Reset, Close or the end of the run.
func (e *Engine) Play(ctx context.Context) domain.State {
	return e.scheduler.Play(ctx)
}

// Toggle plays a stopped run and pauses a running one.
func (e *Engine) Toggle(ctx context.Context) domain.State {
	return e.scheduler.Toggle(ctx)
}

// Pause stops the timer and the run.
func (e *Engine) Pause() domain.State {
	return e.scheduler.Pause()
}

// Reset stops the timer and returns to the defaults.
func (e *Engine) Reset() domain.State {
	return e.scheduler.Reset()
}

// Step advances the clock once by hand.
func (e *Engine) Step() domain.State {
	return e.scheduler.Step()
}

// Select toggles the focused stage.
func (e *Engine) Select(stageID string) domain.State {
	return e.scheduler.Select(stageID)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() domain.State {
	return e.scheduler.Snapshot()
}

// Subscribe registers a listener for every emitted snapshot.
func (e *Engine) Subscribe(l scheduler.Listener) func() {
	return e.scheduler.Subscribe(l)
}

// Active reports whether the timer is armed.
func (e *Engine) Active() bool {
	return e.scheduler.Active()
}

// Close releases the timer permanently.
func (e *Engine) Close() {
	e.scheduler.Close()
}

// View renders s in lang.
func (e *Engine) View(s domain.State, lang string) view.View {
	return view.Build(e.topo, s, runtime.DeriveActivation(e.topo, s), e.catalog, lang)
}

// Graph renders the diagram of s as "mermaid" or "dot".
func (e *Engine) Graph(s domain.State, lang, format string, overlay bool) (string, error) {
	f, err := graph.ParseFormat(format)
	if err != nil {
		return "", err
	}
	return graph.Render(f, e.View(s, lang), graph.Options{Overlay: overlay}), nil
}

// Topology returns the immutable pipeline model.
func (e *Engine) Topology() *topology.Topology {
	return e.topo
}

// Catalog returns the text catalog.
func (e *Engine) Catalog() *locale.Catalog {
	return e.catalog
}

// Epsilon returns the exploration probability.
func (e *Engine) Epsilon() float64 {
	return e.epsilon
}

// Interval returns the tick period.
func (e *Engine) Interval() time.Duration {
	return e.scheduler.Interval()
}
