package models

import (
	"strconv"
	"strings"
	"time"
)

// QuoteKey identifies the series a quote belongs to. A newer quote for the same key
// supersedes an older one.
type QuoteKey struct {
	MarketID  string
	OutcomeID string
	Bookmaker string
}

// Quote represents one bookmaker's price for one outcome of one market at a point in time
type Quote struct {
	MarketID     string    `db:"market_id" json:"market_id" validate:"required"`
	OutcomeID    string    `db:"outcome_id" json:"outcome_id" validate:"required"`
	Bookmaker    string    `db:"bookmaker" json:"bookmaker" validate:"required"`
	Price        float64   `db:"price" json:"price" validate:"required,gt=1"` // Decimal odds
	ObservedAt   time.Time `db:"observed_at" json:"observed_at" validate:"required"`
	EventID      string    `db:"event_id" json:"event_id"`
	SportKey     string    `db:"sport_key" json:"sport_key"`
	MarketKey    string    `db:"market_key" json:"market_key"`
	HomeTeam     string    `db:"home_team" json:"home_team,omitempty"`
	AwayTeam     string    `db:"away_team" json:"away_team,omitempty"`
	CommenceTime time.Time `db:"commence_time" json:"commence_time"`
	Description  string    `db:"description" json:"description,omitempty"` // Player name for props
	Point        *float64  `db:"point" json:"point,omitempty"`             // Spread, total or prop line
}

// Key returns the supersession key of the quote
func (q *Quote) Key() QuoteKey {
	return QuoteKey{MarketID: q.MarketID, OutcomeID: q.OutcomeID, Bookmaker: q.Bookmaker}
}

// Supersedes reports whether q replaces other in the same series
func (q *Quote) Supersedes(other *Quote) bool {
	return q.Key() == other.Key() && q.ObservedAt.After(other.ObservedAt)
}

// LatestQuotes keeps the latest observation per key, preserving first-seen order. On equal
// timestamps the later quote in the slice wins.
func LatestQuotes(quotes []Quote) []Quote {
	index := make(map[QuoteKey]int, len(quotes))
	kept := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		key := q.Key()
		idx, ok := index[key]
		if !ok {
			index[key] = len(kept)
			kept = append(kept, q)
			continue
		}
		if !kept[idx].Supersedes(&q) {
			kept[idx] = q
		}
	}
	return kept
}

// BuildMarketID groups mutually exclusive outcomes of one game, market and line. For
// spreads, point must be the same side's signed line for every outcome (see
// datasource.Flatten), so that a flipped line is a different market.
func BuildMarketID(eventID, marketKey, description string, point *float64) string {
	parts := []string{eventID, marketKey}
	if description != "" {
		parts = append(parts, description)
	}
	if point != nil {
		parts = append(parts, strconv.FormatFloat(*point, 'f', -1, 64))
	}
	return strings.Join(parts, ":")
}
