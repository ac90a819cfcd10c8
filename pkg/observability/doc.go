/*
Package observability turns sequencer lifecycle events into Prometheus metrics.

Metrics.Hooks returns plain domain.LifecycleHooks, which Combine chains with
caller-provided hooks:

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := observability.Combine(metrics.Hooks(), userHooks)
	eng, _ := runtime.NewEngine(topo, runtime.WithLifecycleHooks(hooks))
*/
package observability
