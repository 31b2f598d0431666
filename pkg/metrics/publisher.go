package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records outbox publishing activity.
type PublisherMetrics struct {
	batchDuration *prometheus.HistogramVec
	published     *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

// NewPublisherMetrics registers the publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	batchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events successfully published.",
	}, []string{"topic"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox events that failed to publish.",
	}, []string{"topic"})
	reg.MustRegister(batchDuration, published, failures)
	return &PublisherMetrics{
		batchDuration: batchDuration,
		published:     published,
		failures:      failures,
	}
}

// ObserveBatch records the duration of one publish batch.
func (m *PublisherMetrics) ObserveBatch(topic string, elapsed time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	m.batchDuration.WithLabelValues(normalizeLabel(topic)).Observe(elapsed.Seconds())
}

// IncPublished increments the published counter.
func (m *PublisherMetrics) IncPublished(topic string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(topic)).Inc()
}

// IncFailure increments the failure counter.
func (m *PublisherMetrics) IncFailure(topic string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(topic)).Inc()
}
