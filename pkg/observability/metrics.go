package observability

import (
	"net/http"
	"strconv"

	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors fed by the sequencer hooks.
type Metrics struct {
	gatherer prometheus.Gatherer

	steps       *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	controls    *prometheus.CounterVec
	iterations  prometheus.Counter
	warmupEnded prometheus.Counter
	draws       prometheus.Histogram
	step        prometheus.Gauge
	iteration   prometheus.Gauge
	warmup      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epsilon_steps_total",
			Help: "Total number of clock advances, by stage entered.",
		}, []string{"stage_id"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epsilon_decisions_total",
			Help: "Total number of explore/exploit decisions.",
		}, []string{"strategy", "warmup"}),
		controls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "epsilon_controls_total",
			Help: "Total number of control operations.",
		}, []string{"control"}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epsilon_iterations_total",
			Help: "Total number of iteration checks reached.",
		}),
		warmupEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epsilon_warmup_ended_total",
			Help: "Number of times the warmup phase ended.",
		}),
		draws: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "epsilon_random_draw",
			Help:    "Distribution of the uniform draws taken at the decision stage.",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		step: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "epsilon_step",
			Help: "Current simulation step.",
		}),
		iteration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "epsilon_iteration",
			Help: "Current iteration counter.",
		}),
		warmup: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "epsilon_warmup",
			Help: "1 while the warmup phase forces exploration.",
		}),
	}

	reg.MustRegister(m.steps, m.decisions, m.controls, m.iterations, m.warmupEnded,
		m.draws, m.step, m.iteration, m.warmup)
	m.warmup.Set(1)
	m.iteration.Set(1)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(e *domain.StepEvent) {
			m.steps.WithLabelValues(e.StageID).Inc()
			m.step.Set(float64(e.Step))
		},
		OnDecision: func(e *domain.DecisionEvent) {
			strategy := "exploit"
			if e.Exploring {
				strategy = "explore"
			}
			m.decisions.WithLabelValues(strategy, strconv.FormatBool(e.Warmup)).Inc()
			m.draws.Observe(e.RandomDraw)
		},
		OnIteration: func(e *domain.IterationEvent) {
			m.iterations.Inc()
			m.iteration.Set(float64(e.Iteration))
			if e.WarmupEnded {
				m.warmupEnded.Inc()
			}
			m.warmup.Set(boolGauge(e.Warmup))
		},
		OnControl: func(e *domain.ControlEvent) {
			m.controls.WithLabelValues(string(e.Control)).Inc()
			m.step.Set(float64(e.State.Step))
			m.iteration.Set(float64(e.State.Iteration))
			m.warmup.Set(boolGauge(e.State.Warmup))
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Step exposes the current-step gauge.
func (m *Metrics) Step() prometheus.Gauge { return m.step }

// Iterations exposes the iteration-check counter.
func (m *Metrics) Iterations() prometheus.Counter { return m.iterations }
