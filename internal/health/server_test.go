package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "odds-edge", Version: "test"})
	h := s.Handler()

	for _, path := range []string{"/health", "/live"} {
		rec := get(t, h, path)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "odds-edge", resp.Service)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		dbErr      error
		wantStatus int
		wantDB     string
	}{
		{name: "not marked ready", ready: false, wantStatus: http.StatusServiceUnavailable, wantDB: "ok"},
		{name: "ready and healthy", ready: true, wantStatus: http.StatusOK, wantDB: "ok"},
		{name: "database down", ready: true, dbErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantDB: "error: connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Config{ServiceName: "odds-edge"})
			s.SetReady(tt.ready)
			s.AddCheck("database", PingFunc(func(ctx context.Context) error { return tt.dbErr }))

			rec := get(t, s.Handler(), "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantDB, resp.Checks["database"])
		})
	}
}

func TestMetricsMounted(t *testing.T) {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("metrics"))
	})
	s := NewServer(Config{MetricsHandler: metricsHandler, MetricsPath: "/metrics"})

	rec := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestShutdownWithoutStart(t *testing.T) {
	s := NewServer(Config{})
	assert.NoError(t, s.Shutdown())
}
