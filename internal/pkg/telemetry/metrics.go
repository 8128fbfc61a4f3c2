package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments shared across the services
type Metrics struct {
	EventsProcessed  prometheus.Counter
	DuplicateEvents  prometheus.Counter
	PoisonEvents     prometheus.Counter
	ProcessingTime   prometheus.Histogram
	DecisionsTotal   *prometheus.CounterVec
	ScoringLatency   prometheus.Histogram
	FeatureWaitMiss  prometheus.Counter
	AlertsPublished  prometheus.Counter
	ModelVersionInfo *prometheus.GaugeVec
}

// New registers the instruments on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_events_processed_total",
			Help: "Transaction events materialized into feature records",
		}),
		DuplicateEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_events_duplicate_total",
			Help: "Redelivered events skipped by the unique constraint",
		}),
		PoisonEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_events_poison_total",
			Help: "Events surrendered after exhausting the store retry budget",
		}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_event_processing_seconds",
			Help:    "End-to-end latency of feature materialization per event",
			Buckets: prometheus.DefBuckets,
		}),
		DecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_decisions_total",
			Help: "Scoring decisions by outcome",
		}, []string{"decision"}),
		ScoringLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_scoring_duration_seconds",
			Help:    "Latency of scoring requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}),
		FeatureWaitMiss: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_scoring_feature_wait_misses_total",
			Help: "Scoring requests that timed out waiting for features",
		}),
		AlertsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_alerts_published_total",
			Help: "Alerts pushed to the downstream alert topic",
		}),
		ModelVersionInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fraud_model_version_info",
			Help: "Currently loaded model version (value is always 1)",
		}, []string{"version"}),
	}
}

// ObserveDecision records one scoring outcome with its latency
func (m *Metrics) ObserveDecision(decision string, elapsed time.Duration) {
	m.DecisionsTotal.WithLabelValues(decision).Inc()
	m.ScoringLatency.Observe(elapsed.Seconds())
}

// SetModelVersion resets the version gauge to the given version
func (m *Metrics) SetModelVersion(version string) {
	m.ModelVersionInfo.Reset()
	m.ModelVersionInfo.WithLabelValues(version).Set(1)
}
