package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/odds-edge/internal/comparator"
	"github.com/yourusername/odds-edge/internal/logger"
	"github.com/yourusername/odds-edge/internal/models"
	"github.com/yourusername/odds-edge/internal/pipeline"
	"github.com/yourusername/odds-edge/internal/service"
)

type fakeOdds struct {
	reports map[string]*service.Report
	runErr  error
	runs    []string
}

func (f *fakeOdds) Latest(sportKey string) (*service.Report, bool) {
	r, ok := f.reports[sportKey]
	return r, ok
}

func (f *fakeOdds) RunSport(ctx context.Context, sportKey string) (*service.Report, error) {
	f.runs = append(f.runs, sportKey)
	if f.runErr != nil {
		return nil, f.runErr
	}
	r, ok := f.reports[sportKey]
	if !ok {
		r = &service.Report{SportKey: sportKey, Result: &pipeline.Result{}}
	}
	return r, nil
}

func (f *fakeOdds) Sports() []string {
	return []string{"basketball_nba"}
}

func (f *fakeOdds) Metrics() service.IngestionStats {
	return service.IngestionStats{Runs: 1}
}

type fakeHistory struct {
	quotes     []models.Quote
	err        error
	start, end time.Time
}

func (f *fakeHistory) LatestForMarket(ctx context.Context, marketID string) ([]models.Quote, error) {
	return f.quotes, f.err
}

func (f *fakeHistory) History(ctx context.Context, marketID, outcomeID, bookmaker string, start, end time.Time) ([]models.Quote, error) {
	f.start, f.end = start, end
	return f.quotes, f.err
}

func testQuotes() []models.Quote {
	ts := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	q := func(book, outcome string, price float64) models.Quote {
		return models.Quote{
			MarketID: "evt1:h2h", OutcomeID: outcome, Bookmaker: book, Price: price,
			ObservedAt: ts, EventID: "evt1", SportKey: "basketball_nba", MarketKey: "h2h",
		}
	}
	return []models.Quote{
		q("BookA", "Lakers", 2.2), q("BookA", "Celtics", 2.2),
		q("BookB", "Lakers", 1.91), q("BookB", "Celtics", 1.91),
		q("BookC", "Lakers", 1.0),
	}
}

func testReport(t *testing.T) *service.Report {
	t.Helper()
	quotes := testQuotes()
	result, err := pipeline.Compute(quotes, pipeline.DefaultConfig())
	require.NoError(t, err)
	return &service.Report{
		RunID:       result.RunID,
		SportKey:    "basketball_nba",
		GeneratedAt: time.Now(),
		Source:      service.SourceFetch,
		Result:      result,
		Comparisons: comparator.Analyze(quotes),
	}
}

func newTestServer(t *testing.T, history HistoryReader) (*fakeOdds, http.Handler) {
	odds := &fakeOdds{reports: map[string]*service.Report{"basketball_nba": testReport(t)}}
	srv := NewServer(odds, history, Options{DefaultSport: "basketball_nba"}, logger.NewNopLogger())
	return odds, srv.Router()
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestOpportunities(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/opportunities")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), body["count"])

	records := body["records"].([]interface{})
	first := records[0].(map[string]interface{})
	assert.Contains(t, first, "decision")
	assert.Contains(t, first, "ev_adj")
	assert.Contains(t, first, "kelly_fraction")

	_, body = do(t, h, http.MethodGet, "/api/v1/opportunities?bets_only=true")
	assert.Equal(t, float64(2), body["count"])
	for _, r := range body["records"].([]interface{}) {
		row := r.(map[string]interface{})
		assert.Equal(t, "BookA", row["bookmaker"])
		assert.Equal(t, "bet", row["decision"])
	}

	_, body = do(t, h, http.MethodGet, "/api/v1/opportunities?limit=1")
	assert.Equal(t, float64(1), body["count"])

	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, "basketball_nba", meta["sport_key"])
	assert.Equal(t, "fetch", meta["source"])
}

func TestOpportunities_UnknownSport(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/opportunities?sport=icehockey_nhl")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(http.StatusNotFound), body["code"])
}

func TestArbitrage(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/arbitrage?bankroll=100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])

	comps := body["comparisons"].([]interface{})
	comp := comps[0].(map[string]interface{})
	assert.Equal(t, "evt1:h2h", comp["market_id"])
	stakes := comp["stakes"].(map[string]interface{})
	assert.Equal(t, "50", stakes["Lakers"])
	assert.Equal(t, "50", stakes["Celtics"])

	rec, _ = do(t, h, http.MethodGet, "/api/v1/arbitrage?bankroll=-5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComparisons(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/comparisons")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestSkips(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/skips")
	require.Equal(t, http.StatusOK, rec.Code)

	skips := body["skips"].([]interface{})
	require.Len(t, skips, 1)
	skip := skips[0].(map[string]interface{})
	assert.Equal(t, "BookC", skip["bookmaker"])
	assert.Equal(t, pipeline.ReasonInvalidPrice, skip["reason"])
}

func TestRefresh(t *testing.T) {
	odds, h := newTestServer(t, nil)

	rec, body := do(t, h, http.MethodPost, "/api/v1/refresh?sport=basketball_nba")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["bets"])
	assert.Equal(t, float64(1), body["arbitrages"])
	assert.Equal(t, []string{"basketball_nba"}, odds.runs)

	odds.runErr = errors.New("invalid pipeline config")
	rec, _ = do(t, h, http.MethodPost, "/api/v1/refresh")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConvert(t *testing.T) {
	_, h := newTestServer(t, nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantDec    float64
		wantAm     float64
	}{
		{name: "positive american", query: "american=150", wantStatus: http.StatusOK, wantDec: 2.5, wantAm: 150},
		{name: "negative american", query: "american=-200", wantStatus: http.StatusOK, wantDec: 1.5, wantAm: -200},
		{name: "decimal", query: "decimal=2.5", wantStatus: http.StatusOK, wantDec: 2.5, wantAm: 150},
		{name: "invalid american", query: "american=50", wantStatus: http.StatusBadRequest},
		{name: "invalid decimal", query: "decimal=0.9", wantStatus: http.StatusBadRequest},
		{name: "missing", query: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodGet, "/api/v1/convert?"+tt.query)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.InDelta(t, tt.wantDec, body["decimal"], 1e-9)
				assert.InDelta(t, tt.wantAm, body["american"], 1e-9)
			}
		})
	}
}

func TestDevig(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/devig?odds=1.91,1.91")
	require.Equal(t, http.StatusOK, rec.Code)
	probs := body["probs"].([]interface{})
	require.Len(t, probs, 2)
	assert.InDelta(t, 0.5, probs[0], 1e-9)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/devig?odds=1.91")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/api/v1/devig?odds=abc,2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	_, disabled := newTestServer(t, nil)
	rec, _ := do(t, disabled, http.MethodGet, "/api/v1/history?market=m&outcome=o&bookmaker=b")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, h := newTestServer(t, &fakeHistory{quotes: testQuotes()[:2]})
	rec, body := do(t, h, http.MethodGet, "/api/v1/history?market=evt1:h2h&outcome=Lakers&bookmaker=BookA")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["count"])

	rec, _ = do(t, h, http.MethodGet, "/api/v1/history?market=evt1:h2h")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryWindow(t *testing.T) {
	fh := &fakeHistory{}
	_, h := newTestServer(t, fh)

	rec, body := do(t, h, http.MethodGet, "/api/v1/history?market=m&outcome=o&bookmaker=b&hours=6")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, 6*time.Hour, fh.end.Sub(fh.start))

	rec, _ = do(t, h, http.MethodGet, "/api/v1/history?market=m&outcome=o&bookmaker=b&hours=99999999999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fh.start.Before(fh.end))
	assert.Equal(t, 365*24*time.Hour, fh.end.Sub(fh.start))

	rec, _ = do(t, h, http.MethodGet, "/api/v1/history?market=m&outcome=o&bookmaker=b&hours=-3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24*time.Hour, fh.end.Sub(fh.start))
}

func TestMarketLatest(t *testing.T) {
	_, h := newTestServer(t, &fakeHistory{err: models.ErrNotFound})
	rec, _ := do(t, h, http.MethodGet, "/api/v1/markets/nope/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, h = newTestServer(t, &fakeHistory{quotes: testQuotes()[:2]})
	rec, body := do(t, h, http.MethodGet, "/api/v1/markets/evt1:h2h/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "evt1:h2h", body["market_id"])
}

func TestSportsAndStats(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec, body := do(t, h, http.MethodGet, "/api/v1/sports")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"basketball_nba"}, body["sports"])

	rec, body = do(t, h, http.MethodGet, "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["runs"])
}
