package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "empire"
	subsystem = "engine"
)

var (
	// Registry is the Prometheus registry for all engine metrics.
	// Nil until InitRegistry is called; recording is a no-op then.
	Registry *prometheus.Registry

	collector *engineCollector
)

// engineCollector holds every collector the engine records through
type engineCollector struct {
	admissionsTotal    *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	orderETASeconds    *prometheus.HistogramVec
	sweepActivated     prometheus.Counter
	sweepCompleted     prometheus.Counter
	pendingDepth       *prometheus.GaugeVec
}

// InitRegistry initializes the registry and registers the engine
// collectors. Call once at startup when metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()

	collector = &engineCollector{
		admissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_admissions_total",
				Help:      "Order admission attempts by queue kind, outcome, and rejection reason",
			},
			[]string{"kind", "outcome", "reason"},
		),
		cancellationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_cancellations_total",
				Help:      "Order cancellation attempts by outcome",
			},
			[]string{"outcome"},
		),
		orderETASeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_eta_seconds",
				Help:      "Completion ETA distribution of admitted orders",
				Buckets:   []float64{1, 60, 300, 900, 3600, 14400, 43200, 86400, 604800},
			},
			[]string{"kind"},
		),
		sweepActivated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweep_buildings_activated_total",
				Help:      "Building records finalized by the tick sweep",
			},
		),
		sweepCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweep_items_completed_total",
				Help:      "Queue items completed by the tick sweep",
			},
		),
		pendingDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_pending_depth",
				Help:      "Pending queue items by kind",
			},
			[]string{"kind"},
		),
	}

	Registry.MustRegister(
		collector.admissionsTotal,
		collector.cancellationsTotal,
		collector.orderETASeconds,
		collector.sweepActivated,
		collector.sweepCompleted,
		collector.pendingDepth,
	)
}

// RecordAdmission records one admission attempt
func RecordAdmission(kind, outcome, reason string) {
	if collector == nil {
		return
	}
	collector.admissionsTotal.WithLabelValues(kind, outcome, reason).Inc()
}

// RecordCancellation records one cancellation attempt
func RecordCancellation(outcome string) {
	if collector == nil {
		return
	}
	collector.cancellationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveOrderETA records the ETA of an admitted order in seconds
func ObserveOrderETA(kind string, seconds float64) {
	if collector == nil {
		return
	}
	collector.orderETASeconds.WithLabelValues(kind).Observe(seconds)
}

// RecordSweep records the results of one tick sweep
func RecordSweep(buildingsActivated, itemsCompleted int) {
	if collector == nil {
		return
	}
	collector.sweepActivated.Add(float64(buildingsActivated))
	collector.sweepCompleted.Add(float64(itemsCompleted))
}

// SetPendingDepth sets the pending gauge for one queue kind
func SetPendingDepth(kind string, depth int) {
	if collector == nil {
		return
	}
	collector.pendingDepth.WithLabelValues(kind).Set(float64(depth))
}
