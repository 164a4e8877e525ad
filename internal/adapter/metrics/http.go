package metrics

import "github.com/prometheus/client_golang/prometheus"

// HTTPMetrics holds Prometheus metrics for the HTTP surface.
type HTTPMetrics struct {
	Errors *prometheus.CounterVec
	Events *prometheus.CounterVec
}

// NewHTTPMetrics creates and registers HTTP metrics on the given registry.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total HTTP errors by error type.",
		}, []string{"type"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "events_total",
			Help:      "Total session events received over HTTP, by event type.",
		}, []string{"type"}),
	}

	reg.MustRegister(m.Errors, m.Events)
	return m
}
