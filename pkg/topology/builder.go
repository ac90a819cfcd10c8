package topology

import (
	"fmt"

	"github.com/aretw0/epsilon/pkg/domain"
)

// Builder manages the topology construction.
// Stages and edges keep their declaration order.
type Builder struct {
	stages []*StageBuilder
	edges  []*EdgeBuilder
	opts   []Option
}

// NewBuilder creates a new topology builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add declares a new stage. Declaring the same id twice makes Build fail
// with domain.ErrDuplicateStage.
func (b *Builder) Add(id string) *StageBuilder {
	sb := &StageBuilder{stage: domain.Stage{ID: id, Role: domain.RoleProcess}}
	b.stages = append(b.stages, sb)
	return sb
}

// Connect declares an edge between two stages.
func (b *Builder) Connect(from, to string) *EdgeBuilder {
	eb := &EdgeBuilder{edge: domain.Edge{From: from, To: to}}
	b.edges = append(b.edges, eb)
	return eb
}

// Decision designates the epsilon-greedy decision stage.
func (b *Builder) Decision(id string) *Builder {
	b.opts = append(b.opts, WithDecision(id))
	return b
}

// IterationCheck designates the stage that closes a loop.
func (b *Builder) IterationCheck(id string) *Builder {
	b.opts = append(b.opts, WithIterationCheck(id))
	return b
}

// Build validates and compiles the topology.
func (b *Builder) Build() (*Topology, error) {
	stages := make([]domain.Stage, 0, len(b.stages))
	for _, sb := range b.stages {
		stages = append(stages, sb.stage)
	}
	edges := make([]domain.Edge, 0, len(b.edges))
	for _, eb := range b.edges {
		edges = append(edges, eb.edge)
	}

	t, err := New(stages, edges, b.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build topology: %w", err)
	}
	return t, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Topology {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// StageBuilder provides a fluent API for configuring a stage.
type StageBuilder struct {
	stage domain.Stage
}

// Role sets the stage role.
func (s *StageBuilder) Role(r domain.Role) *StageBuilder {
	s.stage.Role = r
	return s
}

// At sets the activation threshold.
func (s *StageBuilder) At(step int) *StageBuilder {
	s.stage.Threshold = step
	return s
}

// Guard restricts the stage to states where p holds.
func (s *StageBuilder) Guard(p domain.Predicate) *StageBuilder {
	s.stage.Guard = p
	return s
}

// Outcome sets the decision outcome used to match outgoing branches.
func (s *StageBuilder) Outcome(p domain.Predicate) *StageBuilder {
	s.stage.Outcome = p
	return s
}

// EdgeBuilder provides a fluent API for configuring an edge.
type EdgeBuilder struct {
	edge domain.Edge
}

// Branch ties the edge to one side of its source decision.
func (e *EdgeBuilder) Branch(br domain.Branch) *EdgeBuilder {
	e.edge.Branch = br
	return e
}

// Guard restricts the edge to states where p holds.
func (e *EdgeBuilder) Guard(p domain.Predicate) *EdgeBuilder {
	e.edge.Guard = p
	return e
}

// Label sets the semantic label key.
func (e *EdgeBuilder) Label(key string) *EdgeBuilder {
	e.edge.LabelKey = key
	return e
}
