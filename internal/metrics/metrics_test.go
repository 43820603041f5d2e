package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordRun(t *testing.T) {
	InitRegistry()

	runsBefore := testutil.ToFloat64(PipelineRunsTotal)
	quotesBefore := testutil.ToFloat64(QuotesProcessedTotal)
	skipsBefore := testutil.ToFloat64(QuotesSkippedTotal.WithLabelValues("invalid_price"))

	RecordRun("basketball_nba", 12, 3, 1, []string{"invalid_price", "invalid_price"}, 0.01)

	assert.Equal(t, runsBefore+1, testutil.ToFloat64(PipelineRunsTotal))
	assert.Equal(t, quotesBefore+12, testutil.ToFloat64(QuotesProcessedTotal))
	assert.Equal(t, skipsBefore+2, testutil.ToFloat64(QuotesSkippedTotal.WithLabelValues("invalid_price")))
	assert.Equal(t, 3.0, testutil.ToFloat64(LastRunOpportunities.WithLabelValues("basketball_nba")))
}

func TestUpdateSnapshotAge(t *testing.T) {
	InitRegistry()

	UpdateSnapshotAge("americanfootball_nfl", 120)
	assert.Equal(t, 120.0, testutil.ToFloat64(SnapshotAgeSeconds.WithLabelValues("americanfootball_nfl")))
}

func TestRecordFetch(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		err    error
		result string
	}{
		{name: "success", err: nil, result: FetchSuccess},
		{name: "failure", err: errors.New("boom"), result: FetchError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(OddsFetchTotal.WithLabelValues("test_source", tt.result))
			RecordFetch("test_source", tt.err, 0.2)
			assert.Equal(t, before+1, testutil.ToFloat64(OddsFetchTotal.WithLabelValues("test_source", tt.result)))
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	InitRegistry()

	for _, result := range []string{CacheHit, CacheStale, CacheMiss} {
		before := testutil.ToFloat64(CacheLookupsTotal.WithLabelValues(result))
		RecordCacheLookup(result)
		assert.Equal(t, before+1, testutil.ToFloat64(CacheLookupsTotal.WithLabelValues(result)))
	}
}

func TestRecordCircuitBreakerTrip(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCircuitBreakerTrip()
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordRun("basketball_nba", 1, 0, 0, nil, 0.001)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "odds_edge_pipeline_runs_total")
}
