package metrics

import "github.com/prometheus/client_golang/prometheus"

// AttachmentMetrics holds Prometheus metrics for the attachment lifecycle manager.
type AttachmentMetrics struct {
	Active            prometheus.Gauge
	Assigns           *prometheus.CounterVec
	Removals          prometheus.Counter
	ReconcilePasses   prometheus.Counter
	ReconcileFailures prometheus.Counter
	ReconcileDuration prometheus.Histogram
}

// NewAttachmentMetrics creates and registers attachment metrics on the given registry.
func NewAttachmentMetrics(reg prometheus.Registerer) *AttachmentMetrics {
	m := &AttachmentMetrics{
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "attachments",
			Name:      "active",
			Help:      "Number of users currently wearing an attachment.",
		}),
		Assigns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachments",
			Name:      "assigns_total",
			Help:      "Total number of assign operations, by status.",
		}, []string{"status"}),
		Removals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachments",
			Name:      "removals_total",
			Help:      "Total number of attachments torn down.",
		}),
		ReconcilePasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachments",
			Name:      "reconcile_passes_total",
			Help:      "Total number of detach/reattach passes over all attachments.",
		}),
		ReconcileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attachments",
			Name:      "reconcile_failures_total",
			Help:      "Total number of attachments that failed to reconcile.",
		}),
		ReconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "attachments",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of a reconcile pass in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
	}

	reg.MustRegister(m.Active, m.Assigns, m.Removals, m.ReconcilePasses, m.ReconcileFailures, m.ReconcileDuration)
	return m
}
