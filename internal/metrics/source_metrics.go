package metrics

import "github.com/prometheus/client_golang/prometheus"

// Fetch results
const (
	FetchSuccess = "success"
	FetchError   = "error"
)

// Cache lookup results
const (
	CacheHit   = "hit"
	CacheStale = "stale"
	CacheMiss  = "miss"
)

var (
	OddsFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "odds_fetch_total",
		Help:      "Total number of odds feed requests by result",
	}, []string{"source", "result"})

	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of snapshot cache lookups by result",
	}, []string{"result"})

	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of odds feed circuit breaker trips",
	})
)

var OddsFetchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "odds_fetch_latency_seconds",
	Help:      "Latency of odds feed requests in seconds",
	Buckets:   prometheus.DefBuckets,
}, []string{"source"})

// RecordFetch records an odds feed request.
func RecordFetch(source string, err error, durationSeconds float64) {
	result := FetchSuccess
	if err != nil {
		result = FetchError
	}
	OddsFetchTotal.WithLabelValues(source, result).Inc()
	OddsFetchLatency.WithLabelValues(source).Observe(durationSeconds)
}

// RecordCacheLookup records a cache lookup result.
func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}
