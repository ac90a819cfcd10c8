package domain

// Branch names the side of a decision an edge belongs to.
type Branch string

const (
	BranchNone  Branch = ""
	BranchTrue  Branch = "true"
	BranchFalse Branch = "false"
)

// Matches reports whether the branch agrees with a decision outcome.
// BranchNone matches every outcome.
func (b Branch) Matches(outcome bool) bool {
	switch b {
	case BranchTrue:
		return outcome
	case BranchFalse:
		return !outcome
	}
	return true
}

// Edge defines a directed link from one stage to another.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	// Branch is set on edges leaving a decision stage.
	Branch Branch `json:"branch,omitempty" yaml:"branch,omitempty"`

	// Guard optionally restricts the edge further. A nil guard always holds.
	Guard Predicate `json:"-" yaml:"-"`

	// LabelKey is the semantic id of the display label, resolved by the locale provider.
	LabelKey string `json:"label_key,omitempty" yaml:"label_key,omitempty"`
}

// ID returns the stable identifier of the edge ("from->to").
func (e Edge) ID() string {
	return e.From + "->" + e.To
}

// Holds evaluates the edge guard against s.
func (e Edge) Holds(s State) bool {
	return e.Guard == nil || e.Guard(s)
}
