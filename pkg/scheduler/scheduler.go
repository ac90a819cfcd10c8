// Package scheduler drives a sequencer on a wall-clock interval.
//
// The Scheduler owns at most one live ticker. The ticker is a scoped resource:
// it is released by Pause, Reset, Close, cancellation of the context passed to
// Play, or by the sequencer auto-stopping at the end of a run.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/epsilon/internal/logging"
	"github.com/aretw0/epsilon/pkg/domain"
)

// DefaultInterval is the delay between two ticks.
const DefaultInterval = 2500 * time.Millisecond

// Sequencer is the control surface of the step engine.
type Sequencer interface {
	Start() domain.State
	Continue() domain.State
	Pause() domain.State
	Reset() domain.State
	Tick() domain.State
	SelectStage(id string) domain.State
	Snapshot() domain.State
	StepCount() int
}

// Listener receives every snapshot emitted by the scheduler.
// Listeners run on the emitting goroutine and must not call back into the Scheduler.
type Listener func(domain.State)

// Scheduler invokes Tick on a fixed interval while the sequencer is running.
type Scheduler struct {
	seq      Sequencer
	interval time.Duration
	loop     bool
	logger   *slog.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	closed    bool
	listeners map[int]Listener
	nextID    int
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLoop makes the scheduler continue into the next loop when a run
// completes, instead of stopping.
func WithLoop(loop bool) Option {
	return func(s *Scheduler) {
		s.loop = loop
	}
}

// WithLogger configures a logger for the Scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Scheduler for seq. No timer is armed until Play.
func New(seq Sequencer, opts ...Option) *Scheduler {
	s := &Scheduler{
		seq:       seq,
		interval:  DefaultInterval,
		logger:    logging.NewNop(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the configured tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Subscribe registers a listener and returns its release function.
func (s *Scheduler) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Play starts (or resumes) the run and arms the ticker.
// The ticker lives until ctx is cancelled or one of the release paths fires.
func (s *Scheduler) Play(ctx context.Context) domain.State {
	st := s.seq.Start()
	s.arm(ctx)
	s.notify(st)
	return st
}

// Toggle plays a stopped run and pauses a running one.
func (s *Scheduler) Toggle(ctx context.Context) domain.State {
	if s.seq.Snapshot().Running {
		return s.Pause()
	}
	return s.Play(ctx)
}

// Pause releases the ticker and pauses the sequencer.
func (s *Scheduler) Pause() domain.State {
	s.release()
	st := s.seq.Pause()
	s.notify(st)
	return st
}

// Reset releases the ticker and resets the sequencer.
func (s *Scheduler) Reset() domain.State {
	s.release()
	st := s.seq.Reset()
	s.notify(st)
	return st
}

// Step performs one manual tick, independently of the timer.
func (s *Scheduler) Step() domain.State {
	st := s.seq.Tick()
	s.notify(st)
	return st
}

// Select toggles the UI focus.
func (s *Scheduler) Select(id string) domain.State {
	st := s.seq.SelectStage(id)
	s.notify(st)
	return st
}

// Snapshot returns the current sequencer state.
func (s *Scheduler) Snapshot() domain.State {
	return s.seq.Snapshot()
}

// Active reports whether a ticker is currently armed.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Close releases the ticker permanently. Subsequent Play calls still start
// the sequencer but no longer arm a timer.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.release()
}

func (s *Scheduler) arm(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.logger.Debug("Scheduler armed", "interval", s.interval)
	go s.run(runCtx, done)
}

// release stops the live ticker (if any) and waits for its goroutine to exit.
func (s *Scheduler) release() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		s.logger.Debug("Scheduler released")
	}
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.disarm(done)
			return
		case <-ticker.C:
			st := s.seq.Tick()
			s.notify(st)
			if st.Running {
				continue
			}
			if s.loop && st.Step >= s.seq.StepCount() && ctx.Err() == nil {
				s.notify(s.seq.Continue())
				continue
			}
			if s.stopIfIdle(done) {
				s.logger.Debug("Run complete, scheduler stopped", "step", st.Step)
				return
			}
		}
	}
}

// stopIfIdle clears the handle unless the sequencer was restarted meanwhile.
func (s *Scheduler) stopIfIdle(done chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq.Snapshot().Running {
		return false
	}
	if s.done == done {
		s.cancel()
		s.cancel, s.done = nil, nil
	}
	return true
}

func (s *Scheduler) disarm(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == done {
		s.cancel, s.done = nil, nil
	}
}

func (s *Scheduler) notify(st domain.State) {
	s.mu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(st)
	}
}
