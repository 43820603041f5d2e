package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision is the bet/pass outcome for one priced quote
type Decision string

const (
	DecisionBet  Decision = "bet"
	DecisionPass Decision = "pass"
)

// EVRecord holds the derived pricing figures for one quote. Records are recomputed on
// every pipeline run and never stored as authoritative state.
type EVRecord struct {
	MarketID         string          `json:"market_id"`
	OutcomeID        string          `json:"outcome_id"`
	Bookmaker        string          `json:"bookmaker"`
	EventID          string          `json:"event_id"`
	SportKey         string          `json:"sport_key"`
	MarketKey        string          `json:"market_key"`
	HomeTeam         string          `json:"home_team,omitempty"`
	AwayTeam         string          `json:"away_team,omitempty"`
	Description      string          `json:"description,omitempty"`
	Point            *float64        `json:"point,omitempty"`
	Price            float64         `json:"price"`
	AmericanOdds     float64         `json:"american_odds"`
	ImpliedProb      float64         `json:"implied_prob"`
	DevigProb        float64         `json:"devig_prob"`
	FairProb         float64         `json:"fair_prob"` // probability EV was computed against
	EV               float64         `json:"ev"`
	Variance         float64         `json:"variance"`
	EVAdj            float64         `json:"ev_adj"`
	KellyFraction    float64         `json:"kelly_fraction"`
	RecommendedStake decimal.Decimal `json:"recommended_stake"`
	Decision         Decision        `json:"decision"`
	ObservedAt       time.Time       `json:"observed_at"`
}

// IsBet reports whether the record was flagged as a bet
func (r *EVRecord) IsBet() bool {
	return r.Decision == DecisionBet
}

// Fields returns the record as a flat column mapping for presentation layers
func (r *EVRecord) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"market_id":         r.MarketID,
		"outcome_id":        r.OutcomeID,
		"bookmaker":         r.Bookmaker,
		"event_id":          r.EventID,
		"sport_key":         r.SportKey,
		"market_key":        r.MarketKey,
		"home_team":         r.HomeTeam,
		"away_team":         r.AwayTeam,
		"description":       r.Description,
		"price":             r.Price,
		"american_odds":     r.AmericanOdds,
		"implied_prob":      r.ImpliedProb,
		"devig_prob":        r.DevigProb,
		"fair_prob":         r.FairProb,
		"ev":                r.EV,
		"variance":          r.Variance,
		"ev_adj":            r.EVAdj,
		"kelly_fraction":    r.KellyFraction,
		"recommended_stake": r.RecommendedStake.StringFixed(2),
		"decision":          string(r.Decision),
		"observed_at":       r.ObservedAt,
	}
	if r.Point != nil {
		fields["point"] = *r.Point
	}
	return fields
}

// Skip records a quote or market the pipeline could not price
type Skip struct {
	MarketID  string `json:"market_id"`
	OutcomeID string `json:"outcome_id,omitempty"`
	Bookmaker string `json:"bookmaker,omitempty"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail,omitempty"`
	Err       error  `json:"-"`
}
