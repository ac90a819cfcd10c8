/*
Package topology provides the immutable stage/edge model of the pipeline diagram.

A Topology is built once at startup and validated eagerly: duplicate stage ids and
edges that reference unknown stages are configuration errors and abort construction.
After that the model is read-only for the lifetime of the process.

	topo, err := topology.New(stages, edges,
		topology.WithDecision("decision"),
		topology.WithIterationCheck("iteration-check"),
	)

Default returns the forecasting pipeline used by the sequencer. Builder offers a
fluent alternative to assembling the slices by hand.
*/
package topology
