// Package metrics provides the Prometheus registry for the odds pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "odds_edge"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PipelineRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs",
	})
	QuotesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_processed_total",
		Help:      "Total number of quotes fed into the pipeline",
	})
	QuotesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_skipped_total",
		Help:      "Total number of skipped quotes by reason",
	}, []string{"reason"})
	BetsFlaggedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_flagged_total",
		Help:      "Total number of records flagged as bets",
	})
	ArbitrageDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "arbitrage_detected_total",
		Help:      "Total number of markets where best prices sum below one",
	})
)

// Gauge metrics
var (
	LastRunOpportunities = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_opportunities",
		Help:      "Number of records flagged as bets in the most recent run",
	}, []string{"sport"})
	SnapshotAgeSeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshot_age_seconds",
		Help:      "Age of the odds snapshot used by the most recent run",
	}, []string{"sport"})
)

// Histogram metrics
var (
	PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of pipeline computation in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(QuotesProcessedTotal)
		registry.MustRegister(QuotesSkippedTotal)
		registry.MustRegister(BetsFlaggedTotal)
		registry.MustRegister(ArbitrageDetectedTotal)

		registry.MustRegister(LastRunOpportunities)
		registry.MustRegister(SnapshotAgeSeconds)

		registry.MustRegister(PipelineDuration)

		// Source metrics
		registry.MustRegister(OddsFetchTotal)
		registry.MustRegister(OddsFetchLatency)
		registry.MustRegister(CacheLookupsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRun records one completed pipeline run.
func RecordRun(sport string, quotes, bets, arbitrages int, skipReasons []string, durationSeconds float64) {
	PipelineRunsTotal.Inc()
	QuotesProcessedTotal.Add(float64(quotes))
	BetsFlaggedTotal.Add(float64(bets))
	ArbitrageDetectedTotal.Add(float64(arbitrages))
	for _, reason := range skipReasons {
		QuotesSkippedTotal.WithLabelValues(reason).Inc()
	}
	LastRunOpportunities.WithLabelValues(sport).Set(float64(bets))
	PipelineDuration.Observe(durationSeconds)
}

// UpdateSnapshotAge sets the age of the snapshot used for a sport.
func UpdateSnapshotAge(sport string, ageSeconds float64) {
	SnapshotAgeSeconds.WithLabelValues(sport).Set(ageSeconds)
}
