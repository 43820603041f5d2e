package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/odds-edge/internal/comparator"
	"github.com/yourusername/odds-edge/internal/datasource"
	"github.com/yourusername/odds-edge/internal/models"
	"github.com/yourusername/odds-edge/internal/pipeline"
)

// Snapshot sources
const (
	SourceCache      = "cache"
	SourceFetch      = "fetch"
	SourceStaleCache = "stale_cache"
	SourceNone       = "none"
)

// LoadResult is the odds snapshot chosen for a run
type LoadResult struct {
	Snapshot *models.Snapshot
	Events   []datasource.Event
	Source   string
	Age      time.Duration
	// Degraded is set when the feed could not be reached and older or no data was used
	Degraded bool
	FetchErr error
}

// Report is the outcome of one run for one sport
type Report struct {
	RunID       uuid.UUID                     `json:"run_id"`
	SportKey    string                        `json:"sport_key"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Source      string                        `json:"source"`
	Degraded    bool                          `json:"degraded"`
	FetchError  string                        `json:"fetch_error,omitempty"`
	SnapshotAge time.Duration                 `json:"snapshot_age"`
	Events      int                           `json:"events"`
	Issues      []datasource.FlattenIssue     `json:"issues"`
	Result      *pipeline.Result              `json:"result"`
	Comparisons []comparator.MarketComparison `json:"comparisons"`
}

// Records returns the ranked records, optionally only bets, truncated to limit when limit > 0
func (r *Report) Records(betsOnly bool, limit int) []models.EVRecord {
	if r.Result == nil {
		return []models.EVRecord{}
	}
	records := r.Result.Records
	if betsOnly {
		records = r.Result.Bets()
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// Arbitrages returns the compared markets whose best prices lock in a profit
func (r *Report) Arbitrages() []comparator.MarketComparison {
	return comparator.Arbitrages(r.Comparisons)
}

// Skips returns the rows the pipeline dropped
func (r *Report) Skips() []models.Skip {
	if r.Result == nil {
		return []models.Skip{}
	}
	return r.Result.Skips
}
