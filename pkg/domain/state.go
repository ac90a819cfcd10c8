package domain

// State represents the current snapshot of the sequencer.
// It is a plain value: copies handed out by the engine can be read freely.
type State struct {
	// Step is the simulation clock, in [0, StepCount].
	Step int `json:"step"`

	// Running indicates whether the scheduler should keep ticking.
	Running bool `json:"running"`

	// RandomDraw is the last uniform draw in [0,1), refreshed when the decision stage is entered.
	RandomDraw float64 `json:"random_draw"`

	// Epsilon is the exploration probability, fixed at construction.
	Epsilon float64 `json:"epsilon"`

	// Exploring is the branch taken at the last decision.
	Exploring bool `json:"exploring"`

	// Iteration counts completed loops, starting at 1.
	Iteration int `json:"iteration"`

	// Warmup forces exploration until enough iterations were observed.
	Warmup bool `json:"warmup"`

	// SelectedStageID is UI focus only; it never affects the simulation.
	SelectedStageID string `json:"selected_stage_id,omitempty"`
}

// InitialRandomDraw is the draw shown before the first decision.
const InitialRandomDraw = 0.5

// NewState creates the construction-default state for the given epsilon.
func NewState(epsilon float64) State {
	return State{
		RandomDraw: InitialRandomDraw,
		Epsilon:    epsilon,
		Iteration:  1,
		Warmup:     true,
	}
}

// BelowEpsilon reports whether the last draw falls under epsilon,
// independently of the warmup override.
func (s State) BelowEpsilon() bool {
	return s.RandomDraw < s.Epsilon
}
