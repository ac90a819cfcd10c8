/*
Package epsilon animates the epsilon-greedy variable-selection pipeline of a
time-series forecasting system.

A fixed diagram of eleven stages (database, warmup note, decision, introspector,
random picker, selected variables, embedder, forecasting model, history log,
iteration check, update) is lit progressively by a step clock. At the decision
stage a uniform draw is compared with epsilon: below it the run explores (random
variable picker), otherwise it exploits (introspector). A warmup phase forces
exploration for the first iterations.

# Usage

	eng, err := epsilon.New(epsilon.WithEpsilon(0.4))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	eng.Subscribe(func(s domain.State) {
		v := eng.View(s, "en")
		fmt.Println(v.Progress.Text, v.Current.Label)
	})
	eng.Play(ctx)

The Engine bundles the step sequencer (internal/runtime), the wall-clock
scheduler (pkg/scheduler), the localized text catalog (pkg/locale) and the
view builder (pkg/view). Outer surfaces live under pkg/adapters (HTTP, MCP) and
cmd/epsilon (CLI).
*/
package epsilon
