package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/odds-edge/internal/comparator"
	"github.com/yourusername/odds-edge/internal/models"
	"github.com/yourusername/odds-edge/internal/oddsmath"
	"github.com/yourusername/odds-edge/internal/service"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type reportMeta struct {
	SportKey    string    `json:"sport_key"`
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
	Degraded    bool      `json:"degraded"`
	FetchError  string    `json:"fetch_error,omitempty"`
	SnapshotAge float64   `json:"snapshot_age_seconds"`
}

func metaOf(r *service.Report) reportMeta {
	return reportMeta{
		SportKey:    r.SportKey,
		RunID:       r.RunID.String(),
		GeneratedAt: r.GeneratedAt,
		Source:      r.Source,
		Degraded:    r.Degraded,
		FetchError:  r.FetchError,
		SnapshotAge: r.SnapshotAge.Seconds(),
	}
}

func (s *Server) sportParam(r *http.Request) string {
	if sport := r.URL.Query().Get("sport"); sport != "" {
		return sport
	}
	return s.opts.DefaultSport
}

// latestReport writes a 404 and returns false when no report exists for the requested sport
func (s *Server) latestReport(w http.ResponseWriter, r *http.Request) (*service.Report, bool) {
	sport := s.sportParam(r)
	if sport == "" {
		respondError(w, http.StatusBadRequest, "sport is required")
		return nil, false
	}
	report, ok := s.odds.Latest(sport)
	if !ok {
		respondError(w, http.StatusNotFound, "no report for sport "+sport+"; POST /api/v1/refresh first")
		return nil, false
	}
	return report, true
}

func (s *Server) handleSports(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"sports": s.odds.Sports()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.odds.Metrics())
}

// handleOpportunities returns the ranked record table.
// Query params: sport, bets_only, limit
func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	report, ok := s.latestReport(w, r)
	if !ok {
		return
	}

	betsOnly := parseBoolParam(r, "bets_only", false)
	limit := parseIntParam(r, "limit", 0)

	records := report.Records(betsOnly, limit)
	rows := make([]map[string]interface{}, 0, len(records))
	for i := range records {
		rows = append(rows, records[i].Fields())
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meta":    metaOf(report),
		"count":   len(rows),
		"records": rows,
	})
}

type comparisonView struct {
	comparator.MarketComparison
	Stakes map[string]decimal.Decimal `json:"stakes,omitempty"`
}

func comparisonViews(comparisons []comparator.MarketComparison, bankroll *decimal.Decimal) []comparisonView {
	views := make([]comparisonView, 0, len(comparisons))
	for _, c := range comparisons {
		v := comparisonView{MarketComparison: c}
		if bankroll != nil && c.IsArbitrage() {
			v.Stakes = c.Stakes(*bankroll)
		}
		views = append(views, v)
	}
	return views
}

// handleArbitrage returns markets whose best prices sum below one.
// Query params: sport, bankroll (optional, adds per-outcome stakes)
func (s *Server) handleArbitrage(w http.ResponseWriter, r *http.Request) {
	report, ok := s.latestReport(w, r)
	if !ok {
		return
	}

	var bankroll *decimal.Decimal
	if raw := r.URL.Query().Get("bankroll"); raw != "" {
		b, err := decimal.NewFromString(raw)
		if err != nil || !b.IsPositive() {
			respondError(w, http.StatusBadRequest, "bankroll must be a positive number")
			return
		}
		bankroll = &b
	}

	arbs := comparisonViews(report.Arbitrages(), bankroll)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meta":        metaOf(report),
		"count":       len(arbs),
		"comparisons": arbs,
	})
}

// handleComparisons returns the best and worst price per outcome for every market
func (s *Server) handleComparisons(w http.ResponseWriter, r *http.Request) {
	report, ok := s.latestReport(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meta":        metaOf(report),
		"count":       len(report.Comparisons),
		"comparisons": report.Comparisons,
	})
}

func (s *Server) handleSkips(w http.ResponseWriter, r *http.Request) {
	report, ok := s.latestReport(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meta":   metaOf(report),
		"skips":  report.Skips(),
		"issues": report.Issues,
	})
}

// handleRefresh runs the pipeline for a sport and returns a summary
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sport := s.sportParam(r)
	if sport == "" {
		respondError(w, http.StatusBadRequest, "sport is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RefreshTimeout)
	defer cancel()

	report, err := s.odds.RunSport(ctx, sport)
	if err != nil {
		s.logger.WithError(err).WithField("sport_key", sport).Error("Refresh failed")
		respondError(w, http.StatusInternalServerError, "refresh failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meta":       metaOf(report),
		"events":     report.Events,
		"records":    len(report.Result.Records),
		"bets":       len(report.Result.Bets()),
		"skips":      len(report.Skips()),
		"arbitrages": len(report.Arbitrages()),
	})
}

// handleConvert converts one price. Query params: american or decimal
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		price oddsmath.Price
		err   error
	)
	switch {
	case q.Get("american") != "":
		var a float64
		a, err = oddsmath.ParseAmerican(q.Get("american"))
		if err == nil {
			price, err = oddsmath.PriceFromAmerican(a)
		}
	case q.Get("decimal") != "":
		var d float64
		d, err = strconv.ParseFloat(q.Get("decimal"), 64)
		if err == nil {
			price, err = oddsmath.PriceFromDecimal(d)
		}
	default:
		respondError(w, http.StatusBadRequest, "american or decimal is required")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, price)
}

// handleDevig removes the margin from a comma separated list of decimal prices
func (s *Server) handleDevig(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("odds")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "odds is required")
		return
	}

	parts := strings.Split(raw, ",")
	prices := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "odds must be decimal numbers")
			return
		}
		prices = append(prices, v)
	}

	probs, err := oddsmath.Devig(prices)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	overround, err := oddsmath.Overround(prices)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"odds":      prices,
		"probs":     probs,
		"overround": overround,
	})
}

func (s *Server) handleMarketLatest(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusServiceUnavailable, "line history is disabled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	marketID := chi.URLParam(r, "marketID")
	quotes, err := s.history.LatestForMarket(ctx, marketID)
	if errors.Is(err, models.ErrNotFound) {
		respondError(w, http.StatusNotFound, "market not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load market")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"market_id": marketID, "quotes": quotes})
}

// handleHistory returns one outcome's price series at one bookmaker.
// Query params: market, outcome, bookmaker, hours (default 24)
// maxHistoryHours caps the history lookback at one year
const maxHistoryHours = 24 * 365

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondError(w, http.StatusServiceUnavailable, "line history is disabled")
		return
	}

	q := r.URL.Query()
	market, outcome, book := q.Get("market"), q.Get("outcome"), q.Get("bookmaker")
	if market == "" || outcome == "" || book == "" {
		respondError(w, http.StatusBadRequest, "market, outcome and bookmaker are required")
		return
	}
	hours := parseIntParam(r, "hours", 24)
	if hours <= 0 {
		hours = 24
	}
	if hours > maxHistoryHours {
		hours = maxHistoryHours
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	end := time.Now().UTC()
	start := end.Add(-time.Duration(hours) * time.Hour)
	quotes, err := s.history.History(ctx, market, outcome, book, start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"count": len(quotes), "quotes": quotes})
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseBoolParam(r *http.Request, param string, defaultValue bool) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(param))
	if err != nil {
		return defaultValue
	}
	return value
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
