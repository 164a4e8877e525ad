package metrics

import "github.com/prometheus/client_golang/prometheus"

// Request outcomes for SchedulerMetrics.Requests.
const (
	OutcomeImmediate = "immediate"
	OutcomeDeferred  = "deferred"
	OutcomeCoalesced = "coalesced"
	OutcomeDropped   = "dropped"
)

// SchedulerMetrics holds Prometheus metrics for the coalescing sync scheduler.
type SchedulerMetrics struct {
	Requests     *prometheus.CounterVec
	Firings      prometheus.Counter
	ActionPanics prometheus.Counter
}

// NewSchedulerMetrics creates and registers scheduler metrics on the given registry.
func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	m := &SchedulerMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync_scheduler",
			Name:      "requests_total",
			Help:      "Total number of firing requests, by outcome.",
		}, []string{"outcome"}),
		Firings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync_scheduler",
			Name:      "firings_total",
			Help:      "Total number of times the registered actions were fired.",
		}),
		ActionPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync_scheduler",
			Name:      "action_panics_total",
			Help:      "Total number of recovered panics raised by registered actions.",
		}),
	}

	reg.MustRegister(m.Requests, m.Firings, m.ActionPanics)
	return m
}
