package topology

import (
	"fmt"

	"github.com/aretw0/epsilon/pkg/domain"
)

// Topology is the validated, read-only pipeline diagram.
type Topology struct {
	stages []domain.Stage
	edges  []domain.Edge
	index  map[string]int

	decisionID  string
	iterationID string
	stepCount   int
}

// Option configures which stages carry the epsilon-greedy semantics.
type Option func(*Topology)

// WithDecision designates the stage whose entry triggers a new random draw.
func WithDecision(id string) Option {
	return func(t *Topology) {
		t.decisionID = id
	}
}

// WithIterationCheck designates the stage whose entry completes a loop.
func WithIterationCheck(id string) Option {
	return func(t *Topology) {
		t.iterationID = id
	}
}

// New validates the stages and edges and returns an immutable Topology.
// All problems are reported at once in a *ConfigError.
func New(stages []domain.Stage, edges []domain.Edge, opts ...Option) (*Topology, error) {
	t := &Topology{
		stages: make([]domain.Stage, len(stages)),
		edges:  make([]domain.Edge, len(edges)),
		index:  make(map[string]int, len(stages)),
	}
	copy(t.stages, stages)
	copy(t.edges, edges)

	for _, opt := range opts {
		opt(t)
	}

	var errs []error

	for i, st := range t.stages {
		if st.ID == "" {
			errs = append(errs, &ValidationError{Subject: fmt.Sprintf("stage #%d", i), Err: domain.ErrInvalidStage, Detail: "empty id"})
			continue
		}
		if _, dup := t.index[st.ID]; dup {
			errs = append(errs, &ValidationError{Subject: "stage " + st.ID, Err: domain.ErrDuplicateStage})
			continue
		}
		if !st.Role.Valid() {
			errs = append(errs, &ValidationError{Subject: "stage " + st.ID, Err: domain.ErrInvalidStage, Detail: fmt.Sprintf("invalid role %q", st.Role)})
		}
		if st.Threshold < 0 {
			errs = append(errs, &ValidationError{Subject: "stage " + st.ID, Err: domain.ErrInvalidStage, Detail: "negative threshold"})
		}
		t.index[st.ID] = i
		if st.Threshold+1 > t.stepCount {
			t.stepCount = st.Threshold + 1
		}
	}

	seen := make(map[string]bool, len(t.edges))
	for _, e := range t.edges {
		if _, ok := t.index[e.From]; !ok {
			errs = append(errs, &ValidationError{Subject: "edge " + e.ID(), Err: domain.ErrUnknownStage, Detail: "from " + e.From})
		}
		if _, ok := t.index[e.To]; !ok {
			errs = append(errs, &ValidationError{Subject: "edge " + e.ID(), Err: domain.ErrUnknownStage, Detail: "to " + e.To})
		}
		if seen[e.ID()] {
			errs = append(errs, &ValidationError{Subject: "edge " + e.ID(), Err: domain.ErrDuplicateEdge})
		}
		seen[e.ID()] = true
	}

	for _, id := range []string{t.decisionID, t.iterationID} {
		if id == "" {
			continue
		}
		i, ok := t.index[id]
		if !ok {
			errs = append(errs, &ValidationError{Subject: "designated stage " + id, Err: domain.ErrUnknownStage})
			continue
		}
		if t.stages[i].Role != domain.RoleDecision {
			errs = append(errs, &ValidationError{Subject: "designated stage " + id, Err: domain.ErrInvalidStage, Detail: "role must be decision"})
		}
	}

	if len(errs) > 0 {
		return nil, &ConfigError{Errors: errs}
	}
	return t, nil
}

// StageByID looks up a stage.
func (t *Topology) StageByID(id string) (domain.Stage, bool) {
	i, ok := t.index[id]
	if !ok {
		return domain.Stage{}, false
	}
	return t.stages[i], true
}

// Stages returns the stages in declaration order.
func (t *Topology) Stages() []domain.Stage {
	out := make([]domain.Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Edges returns the edges in declaration order.
func (t *Topology) Edges() []domain.Edge {
	out := make([]domain.Edge, len(t.edges))
	copy(out, t.edges)
	return out
}

// StepCount is the terminal ("complete") step: one past the highest threshold.
func (t *Topology) StepCount() int {
	return t.stepCount
}

// DecisionStep returns the threshold of the designated decision stage, or -1.
func (t *Topology) DecisionStep() int {
	return t.stepOf(t.decisionID)
}

// IterationStep returns the threshold of the designated iteration-check stage, or -1.
func (t *Topology) IterationStep() int {
	return t.stepOf(t.iterationID)
}

// StageAt returns the first stage declared with the given threshold.
func (t *Topology) StageAt(step int) (domain.Stage, bool) {
	for _, st := range t.stages {
		if st.Threshold == step {
			return st, true
		}
	}
	return domain.Stage{}, false
}

func (t *Topology) stepOf(id string) int {
	if id == "" {
		return -1
	}
	return t.stages[t.index[id]].Threshold
}
