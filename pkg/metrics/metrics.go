// Package metrics provides Prometheus observability for the persistence
// and publishing adapters. All methods are nil-safe so instrumentation is
// strictly optional.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers repository operations and event publication.
type Metrics struct {
	// Repository operation latencies by aggregate tag and operation
	RepositoryLatency *prometheus.HistogramVec

	// Repository failures by aggregate tag, operation and error code
	RepositoryErrors *prometheus.CounterVec

	// Domain events published by aggregate type and event name
	EventsPublished *prometheus.CounterVec

	// Event publication failures by transport
	PublishErrors *prometheus.CounterVec

	// Outbox relay cycle latency
	RelayLatency prometheus.Histogram

	// Events currently saved but not yet relayed
	OutboxPending prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		RepositoryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "modelkit_repository_duration_seconds",
			Help:    "Duration of repository operations by aggregate tag and operation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"tag", "operation"}),

		RepositoryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "modelkit_repository_errors_total",
			Help: "Total repository operation failures by tag, operation and code",
		}, []string{"tag", "operation", "code"}),

		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "modelkit_events_published_total",
			Help: "Total domain events published by aggregate type and event name",
		}, []string{"aggregate_type", "event"}),

		PublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "modelkit_publish_errors_total",
			Help: "Total event publication failures by transport",
		}, []string{"transport"}),

		RelayLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "modelkit_outbox_relay_duration_seconds",
			Help:    "Duration of one outbox relay cycle",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		OutboxPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "modelkit_outbox_pending_events",
			Help: "Events saved to the outbox and not yet marked handled",
		}),
	}
}

// ObserveRepositoryLatency records the duration of one repository operation.
func (m *Metrics) ObserveRepositoryLatency(tag, operation string, d time.Duration) {
	if m != nil {
		m.RepositoryLatency.WithLabelValues(tag, operation).Observe(d.Seconds())
	}
}

// IncrementRepositoryError records a failed repository operation.
func (m *Metrics) IncrementRepositoryError(tag, operation, code string) {
	if m != nil {
		m.RepositoryErrors.WithLabelValues(tag, operation, code).Inc()
	}
}

// IncrementEventsPublished records one published domain event.
func (m *Metrics) IncrementEventsPublished(aggregateType, eventName string) {
	if m != nil {
		m.EventsPublished.WithLabelValues(aggregateType, eventName).Inc()
	}
}

// IncrementPublishError records a failed publication attempt.
func (m *Metrics) IncrementPublishError(transport string) {
	if m != nil {
		m.PublishErrors.WithLabelValues(transport).Inc()
	}
}

// ObserveRelayLatency records the duration of one outbox relay cycle.
func (m *Metrics) ObserveRelayLatency(d time.Duration) {
	if m != nil {
		m.RelayLatency.Observe(d.Seconds())
	}
}

// SetOutboxPending records the current outbox backlog size.
func (m *Metrics) SetOutboxPending(n int) {
	if m != nil {
		m.OutboxPending.Set(float64(n))
	}
}
