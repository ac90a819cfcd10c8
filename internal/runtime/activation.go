package runtime

import (
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/topology"
)

// DeriveActivation computes which stages and edges are lit for s.
// It is pure: the same topology and state always yield the same result.
//
// A stage is active once the clock reached its threshold and its guard holds.
// An edge is active when both endpoints are, its own guard holds and, for edges
// leaving a decision stage, its branch agrees with the decision outcome.
func DeriveActivation(topo *topology.Topology, s domain.State) domain.Activation {
	stages := topo.Stages()
	edges := topo.Edges()

	act := domain.Activation{
		Stages: make(map[string]bool, len(stages)),
		Edges:  make(map[string]bool, len(edges)),
	}

	for _, st := range stages {
		act.Stages[st.ID] = s.Step >= st.Threshold && st.Holds(s)
	}

	for _, e := range edges {
		active := act.Stages[e.From] && act.Stages[e.To] && e.Holds(s)
		if active && e.Branch != domain.BranchNone {
			if src, ok := topo.StageByID(e.From); ok && src.Role == domain.RoleDecision && src.Outcome != nil {
				active = e.Branch.Matches(src.Outcome(s))
			}
		}
		act.Edges[e.ID()] = active
	}

	return act
}

// CurrentStage returns the stage lit at exactly the current step.
// When several stages share the threshold, the first one whose guard holds wins.
func CurrentStage(topo *topology.Topology, s domain.State) (domain.Stage, bool) {
	for _, st := range topo.Stages() {
		if st.Threshold == s.Step && st.Holds(s) {
			return st, true
		}
	}
	return domain.Stage{}, false
}
