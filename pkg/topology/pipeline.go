package topology

import "github.com/aretw0/epsilon/pkg/domain"

// Stage identifiers of the forecasting pipeline.
const (
	StageDatabase       = "database"
	StageWarmupNote     = "warmup-note"
	StageDecision       = "decision"
	StageIntrospector   = "introspector"
	StageRandomPicker   = "random-picker"
	StageSelectedVars   = "selected-vars"
	StageEmbedder       = "embedder"
	StageForecasting    = "forecasting"
	StageHistory        = "history"
	StageIterationCheck = "iteration-check"
	StageUpdate         = "update"
)

// Edge label keys resolved by the locale provider.
const (
	LabelTrue         = "edge.true"
	LabelFalse        = "edge.false"
	LabelEmbeddings   = "edge.embeddings"
	LabelForecastLoss = "edge.forecast_loss"
	LabelMetaUpdate   = "edge.meta_update"
)

// updateStep is the threshold of the update stage; the iteration check
// reports "true" once the clock has reached it.
const updateStep = 9

func updateReached(s domain.State) bool {
	return s.Step >= updateStep
}

// Default returns the epsilon-greedy variable-selection pipeline:
//
//	database → warmup-note → decision ─false→ introspector ─┐
//	                            └─true→ random-picker ──────┴→ selected-vars
//	selected-vars → embedder, forecasting → history → iteration-check
//	iteration-check ─true→ update → warmup-note
//	iteration-check ─false→ warmup-note
func Default() *Topology {
	b := NewBuilder()

	b.Add(StageDatabase).Role(domain.RoleData).At(0)
	b.Add(StageWarmupNote).Role(domain.RoleProcess).At(1)
	b.Add(StageDecision).Role(domain.RoleDecision).At(2).Outcome(domain.IsExploring)
	b.Add(StageIntrospector).Role(domain.RoleProcess).At(3).Guard(domain.Not(domain.IsExploring))
	b.Add(StageRandomPicker).Role(domain.RoleProcess).At(3).Guard(domain.IsExploring)
	b.Add(StageSelectedVars).Role(domain.RoleData).At(4)
	b.Add(StageEmbedder).Role(domain.RoleProcess).At(5)
	b.Add(StageForecasting).Role(domain.RoleProcess).At(6)
	b.Add(StageHistory).Role(domain.RoleData).At(7)
	b.Add(StageIterationCheck).Role(domain.RoleDecision).At(8).Outcome(updateReached)
	b.Add(StageUpdate).Role(domain.RoleProcess).At(updateStep)

	b.Connect(StageDatabase, StageWarmupNote)
	b.Connect(StageWarmupNote, StageDecision)
	b.Connect(StageDecision, StageIntrospector).Branch(domain.BranchFalse).Label(LabelFalse)
	b.Connect(StageDecision, StageRandomPicker).Branch(domain.BranchTrue).Label(LabelTrue)
	b.Connect(StageIntrospector, StageSelectedVars)
	b.Connect(StageRandomPicker, StageSelectedVars)
	b.Connect(StageSelectedVars, StageEmbedder)
	b.Connect(StageSelectedVars, StageForecasting)
	b.Connect(StageEmbedder, StageHistory).Label(LabelEmbeddings)
	b.Connect(StageForecasting, StageHistory).Label(LabelForecastLoss)
	b.Connect(StageHistory, StageIterationCheck)
	b.Connect(StageIterationCheck, StageUpdate).Branch(domain.BranchTrue).Label(LabelTrue)
	b.Connect(StageIterationCheck, StageWarmupNote).Branch(domain.BranchFalse).Label(LabelFalse)
	b.Connect(StageUpdate, StageWarmupNote).Label(LabelMetaUpdate)

	b.Decision(StageDecision)
	b.IterationCheck(StageIterationCheck)

	return b.MustBuild()
}
