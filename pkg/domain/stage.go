package domain

// Role classifies a stage by the part it plays in the pipeline.
type Role string

const (
	// RoleData marks stores and datasets (database, selected variables, history log).
	RoleData Role = "data"
	// RoleProcess marks transformations (introspector, embedder, forecasting model).
	RoleProcess Role = "process"
	// RoleDecision marks branching points whose outgoing edges carry a Branch.
	RoleDecision Role = "decision"
	// RoleTerminal marks sink stages.
	RoleTerminal Role = "terminal"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleData, RoleProcess, RoleDecision, RoleTerminal:
		return true
	}
	return false
}

// Predicate is a pure function of the engine state.
// It is used both as a visibility guard and as the outcome of a decision stage.
type Predicate func(State) bool

// Stage represents a node of the pipeline diagram.
// Stages are immutable once a topology has been built; only their derived
// activation changes as the sequencer advances.
type Stage struct {
	ID   string `json:"id" yaml:"id"`
	Role Role   `json:"role" yaml:"role"`

	// Threshold is the step index at which the stage becomes active.
	Threshold int `json:"threshold" yaml:"threshold"`

	// Guard restricts the stage to one side of a decision (e.g. the introspector
	// is only lit while exploiting). A nil guard always holds.
	Guard Predicate `json:"-" yaml:"-"`

	// Outcome is only meaningful for decision stages: it yields the boolean
	// branch currently taken, matched against Edge.Branch of outgoing edges.
	Outcome Predicate `json:"-" yaml:"-"`
}

// Holds evaluates the stage guard against s.
func (st Stage) Holds(s State) bool {
	return st.Guard == nil || st.Guard(s)
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(s State) bool { return !p(s) }
}

// IsExploring is the guard for stages on the exploration branch.
func IsExploring(s State) bool { return s.Exploring }
