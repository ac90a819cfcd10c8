package topology_test

import (
	"errors"
	"testing"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/aretw0/epsilon/pkg/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	topo := topology.Default()

	assert.Len(t, topo.Stages(), 11)
	assert.Len(t, topo.Edges(), 14)
	assert.Equal(t, 10, topo.StepCount())
	assert.Equal(t, 2, topo.DecisionStep())
	assert.Equal(t, 8, topo.IterationStep())

	// Every edge must reference known stages.
	for _, e := range topo.Edges() {
		_, ok := topo.StageByID(e.From)
		assert.True(t, ok, "edge %s has unknown source", e.ID())
		_, ok = topo.StageByID(e.To)
		assert.True(t, ok, "edge %s has unknown target", e.ID())
	}

	ids := make(map[string]bool)
	for _, st := range topo.Stages() {
		assert.False(t, ids[st.ID], "duplicate stage %s", st.ID)
		ids[st.ID] = true
	}
}

func TestDefault_StageOrderMatchesThresholds(t *testing.T) {
	topo := topology.Default()
	stages := topo.Stages()

	require.Equal(t, topology.StageDatabase, stages[0].ID)
	require.Equal(t, topology.StageDecision, stages[2].ID)
	require.Equal(t, topology.StageUpdate, stages[len(stages)-1].ID)

	prev := -1
	for _, st := range stages {
		assert.GreaterOrEqual(t, st.Threshold, prev, "thresholds must be non-decreasing (%s)", st.ID)
		prev = st.Threshold
	}

	st, ok := topo.StageAt(8)
	require.True(t, ok)
	assert.Equal(t, topology.StageIterationCheck, st.ID)
}

func TestStageByID(t *testing.T) {
	topo := topology.Default()

	st, ok := topo.StageByID(topology.StageDecision)
	require.True(t, ok)
	assert.Equal(t, domain.RoleDecision, st.Role)
	assert.NotNil(t, st.Outcome)

	_, ok = topo.StageByID("nope")
	assert.False(t, ok)
}

func TestStages_ReturnsCopy(t *testing.T) {
	topo := topology.Default()
	stages := topo.Stages()
	stages[0].ID = "mutated"

	st, ok := topo.StageByID(topology.StageDatabase)
	require.True(t, ok)
	assert.Equal(t, topology.StageDatabase, st.ID)
	assert.Equal(t, topology.StageDatabase, topo.Stages()[0].ID)
}

func TestNew_Validation(t *testing.T) {
	a := domain.Stage{ID: "a", Role: domain.RoleData, Threshold: 0}
	b := domain.Stage{ID: "b", Role: domain.RoleDecision, Threshold: 1}

	tests := []struct {
		name    string
		stages  []domain.Stage
		edges   []domain.Edge
		opts    []topology.Option
		wantErr error
		count   int
	}{
		{
			name:   "Valid",
			stages: []domain.Stage{a, b},
			edges:  []domain.Edge{{From: "a", To: "b"}},
		},
		{
			name:    "Duplicate Stage",
			stages:  []domain.Stage{a, b, a},
			wantErr: domain.ErrDuplicateStage,
			count:   1,
		},
		{
			name:    "Dangling Edge Target",
			stages:  []domain.Stage{a, b},
			edges:   []domain.Edge{{From: "a", To: "ghost"}},
			wantErr: domain.ErrUnknownStage,
			count:   1,
		},
		{
			name:    "Dangling Both Ends",
			stages:  []domain.Stage{a},
			edges:   []domain.Edge{{From: "x", To: "y"}},
			wantErr: domain.ErrUnknownStage,
			count:   2,
		},
		{
			name:    "Empty ID",
			stages:  []domain.Stage{{Role: domain.RoleData}},
			wantErr: domain.ErrInvalidStage,
			count:   1,
		},
		{
			name:    "Bad Role",
			stages:  []domain.Stage{{ID: "a", Role: "widget"}},
			wantErr: domain.ErrInvalidStage,
			count:   1,
		},
		{
			name:    "Duplicate Edge",
			stages:  []domain.Stage{a, b},
			edges:   []domain.Edge{{From: "a", To: "b"}, {From: "a", To: "b"}},
			wantErr: domain.ErrDuplicateEdge,
			count:   1,
		},
		{
			name:    "Unknown Decision",
			stages:  []domain.Stage{a, b},
			opts:    []topology.Option{topology.WithDecision("ghost")},
			wantErr: domain.ErrUnknownStage,
			count:   1,
		},
		{
			name:    "Decision Must Have Decision Role",
			stages:  []domain.Stage{a, b},
			opts:    []topology.Option{topology.WithIterationCheck("a")},
			wantErr: domain.ErrInvalidStage,
			count:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, err := topology.New(tt.stages, tt.edges, tt.opts...)
			if tt.wantErr == nil {
				require.NoError(t, err)
				require.NotNil(t, topo)
				return
			}
			require.Error(t, err)
			assert.Nil(t, topo)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
			assert.Len(t, topology.ValidationErrors(err), tt.count)
		})
	}
}

func TestNew_DesignationsDefaultToMissing(t *testing.T) {
	topo, err := topology.New([]domain.Stage{{ID: "only", Role: domain.RoleData, Threshold: 3}}, nil)
	require.NoError(t, err)

	assert.Equal(t, -1, topo.DecisionStep())
	assert.Equal(t, -1, topo.IterationStep())
	assert.Equal(t, 4, topo.StepCount())
}

func TestBuilder(t *testing.T) {
	b := topology.NewBuilder()
	b.Add("src").Role(domain.RoleData).At(0)
	b.Add("gate").Role(domain.RoleDecision).At(1).Outcome(domain.IsExploring)
	b.Add("sink").Role(domain.RoleTerminal).At(2)
	b.Connect("src", "gate")
	b.Connect("gate", "sink").Branch(domain.BranchTrue).Label("edge.true")
	b.Decision("gate")

	topo, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 1, topo.DecisionStep())
	assert.Equal(t, 3, topo.StepCount())

	edges := topo.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, domain.BranchTrue, edges[1].Branch)
	assert.Equal(t, "edge.true", edges[1].LabelKey)

	t.Run("Build Reports Duplicate Stage", func(t *testing.T) {
		b := topology.NewBuilder()
		b.Add("a").Role(domain.RoleData).At(0)
		b.Add("a").Role(domain.RoleDecision).At(5)
		_, err := b.Build()
		assert.ErrorIs(t, err, domain.ErrDuplicateStage)
	})

	t.Run("Build Reports Dangling Edge", func(t *testing.T) {
		b := topology.NewBuilder()
		b.Add("x").Role(domain.RoleData)
		b.Connect("x", "missing")
		_, err := b.Build()
		assert.ErrorIs(t, err, domain.ErrUnknownStage)
	})

	t.Run("MustBuild Panics", func(t *testing.T) {
		b := topology.NewBuilder()
		b.Connect("x", "y")
		assert.Panics(t, func() { b.MustBuild() })
	})
}
