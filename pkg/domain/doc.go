/*
Package domain contains the core domain models of the epsilon pipeline sequencer.

It defines the fixed vocabulary shared by every other package: the stages and edges of
the pipeline diagram, the mutable engine State, the derived Activation map and the
lifecycle events emitted while the sequencer advances. This package is kept pure and
free of I/O, timers or randomness.

# Key Entities

  - Stage: A named point in the simulated pipeline with a role and an activation threshold.
  - Edge: A directed link between two stages, optionally tied to one branch of a decision.
  - State: The snapshot of the sequencer (step, warmup, epsilon-greedy draw, selection).
  - Activation: Which stages and edges are lit for a given State.
*/
package domain
