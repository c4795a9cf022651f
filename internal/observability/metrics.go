package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// dashboard service.
type Metrics struct {
	Submissions         *prometheus.CounterVec // labels: mode={number,date}
	FetchOutcomes       *prometheus.CounterVec // labels: product, outcome={success,error}
	FetchBatchDuration  prometheus.Histogram
	StaleBatchesDropped prometheus.Counter

	AvailabilityLookups *prometheus.CounterVec // labels: outcome={success,no_data,error}

	ArtifactCache *prometheus.CounterVec // labels: result={hit,miss}

	AuditEnabled prometheus.Gauge
	AuditErrors  prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Submissions,
		m.FetchOutcomes,
		m.FetchBatchDuration,
		m.StaleBatchesDropped,
		m.AvailabilityLookups,
		m.ArtifactCache,
		m.AuditEnabled,
		m.AuditErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpd_verif",
			Name:      "submissions_total",
			Help:      "Completed selection submissions by search mode.",
		}, []string{"mode"}),
		FetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpd_verif",
			Name:      "artifact_fetches_total",
			Help:      "Per-product artifact fetches by outcome.",
		}, []string{"product", "outcome"}),
		FetchBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mpd_verif",
			Name:      "fetch_batch_duration_seconds",
			Help:      "Duration of a complete fan-out fetch across the product catalog.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		StaleBatchesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mpd_verif",
			Name:      "stale_batches_dropped_total",
			Help:      "Fetch batches discarded because a newer submission superseded them.",
		}),
		AvailabilityLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpd_verif",
			Name:      "availability_lookups_total",
			Help:      "Valid-MPD-number lookups by outcome.",
		}, []string{"outcome"}),
		ArtifactCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mpd_verif",
			Name:      "artifact_cache_total",
			Help:      "Artifact cache lookups by result.",
		}, []string{"result"}),
		AuditEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mpd_verif",
			Name:      "audit_enabled",
			Help:      "1 when submission audit publishing is enabled, 0 otherwise.",
		}),
		AuditErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mpd_verif",
			Name:      "audit_errors_total",
			Help:      "Failed audit event publishes.",
		}),
	}
}
