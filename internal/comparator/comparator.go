// Package comparator compares prices for the same market across bookmakers to find the
// best available line, price discrepancies and arbitrage.
package comparator

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/odds-edge/internal/models"
)

// arbEpsilon absorbs rounding noise so a fair book summing to exactly one is not an arb
const arbEpsilon = 1e-9

// BestPrice is the highest price offered for one outcome
type BestPrice struct {
	OutcomeID  string    `json:"outcome_id"`
	Bookmaker  string    `json:"bookmaker"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// OutcomeComparison summarises the prices offered for one outcome of a market
type OutcomeComparison struct {
	OutcomeID      string  `json:"outcome_id"`
	BestBookmaker  string  `json:"best_bookmaker"`
	BestPrice      float64 `json:"best_price"`
	WorstBookmaker string  `json:"worst_bookmaker"`
	WorstPrice     float64 `json:"worst_price"`
	Books          int     `json:"books"`
	ImpliedProb    float64 `json:"implied_prob"` // of the best price
	Spread         float64 `json:"spread_pct"`   // best over worst, percent of worst
	StakeShare     float64 `json:"stake_share"`  // share of bankroll that equalises payout
}

// MarketComparison is the cross-bookmaker view of one market
type MarketComparison struct {
	MarketID        string              `json:"market_id"`
	EventID         string              `json:"event_id,omitempty"`
	MarketKey       string              `json:"market_key,omitempty"`
	HomeTeam        string              `json:"home_team,omitempty"`
	AwayTeam        string              `json:"away_team,omitempty"`
	Outcomes        []OutcomeComparison `json:"outcomes"`
	ImpliedSum      float64             `json:"implied_sum"`
	ArbitrageMargin *float64            `json:"arbitrage_margin,omitempty"` // percent, set when ImpliedSum < 1
}

// IsArbitrage reports whether backing every outcome at its best price locks in a profit
func (m *MarketComparison) IsArbitrage() bool {
	return m.ArbitrageMargin != nil
}

// Stakes splits bankroll across the outcomes so every outcome returns the same payout.
// Amounts are rounded to cents.
func (m *MarketComparison) Stakes(bankroll decimal.Decimal) map[string]decimal.Decimal {
	stakes := make(map[string]decimal.Decimal, len(m.Outcomes))
	for _, o := range m.Outcomes {
		stakes[o.OutcomeID] = bankroll.Mul(decimal.NewFromFloat(o.StakeShare)).Round(2)
	}
	return stakes
}

// BestPrices returns the highest price per outcome per market using each bookmaker's
// latest quote. Ties go to the alphabetically first bookmaker.
func BestPrices(quotes []models.Quote) map[string]map[string]BestPrice {
	best := make(map[string]map[string]BestPrice)
	for _, q := range usable(quotes) {
		outcomes, ok := best[q.MarketID]
		if !ok {
			outcomes = make(map[string]BestPrice)
			best[q.MarketID] = outcomes
		}
		cur, ok := outcomes[q.OutcomeID]
		if !ok || q.Price > cur.Price || (q.Price == cur.Price && q.Bookmaker < cur.Bookmaker) {
			outcomes[q.OutcomeID] = BestPrice{
				OutcomeID:  q.OutcomeID,
				Bookmaker:  q.Bookmaker,
				Price:      q.Price,
				ObservedAt: q.ObservedAt,
			}
		}
	}
	return best
}

// Analyze compares every market with at least two outcomes. Results are ordered by
// market id.
func Analyze(quotes []models.Quote) []MarketComparison {
	byMarket := make(map[string][]models.Quote)
	for _, q := range usable(quotes) {
		byMarket[q.MarketID] = append(byMarket[q.MarketID], q)
	}

	ids := make([]string, 0, len(byMarket))
	for id := range byMarket {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	comparisons := make([]MarketComparison, 0, len(ids))
	for _, id := range ids {
		if cmp, ok := compareMarket(byMarket[id]); ok {
			comparisons = append(comparisons, cmp)
		}
	}
	return comparisons
}

// Arbitrages filters comparisons to arbitrage markets, largest margin first
func Arbitrages(comparisons []MarketComparison) []MarketComparison {
	arbs := make([]MarketComparison, 0)
	for _, c := range comparisons {
		if c.IsArbitrage() {
			arbs = append(arbs, c)
		}
	}
	sort.SliceStable(arbs, func(i, j int) bool {
		return *arbs[i].ArbitrageMargin > *arbs[j].ArbitrageMargin
	})
	return arbs
}

func compareMarket(quotes []models.Quote) (MarketComparison, bool) {
	byOutcome := make(map[string][]models.Quote)
	for _, q := range quotes {
		byOutcome[q.OutcomeID] = append(byOutcome[q.OutcomeID], q)
	}
	if len(byOutcome) < 2 {
		return MarketComparison{}, false
	}

	first := quotes[0]
	cmp := MarketComparison{
		MarketID:  first.MarketID,
		EventID:   first.EventID,
		MarketKey: first.MarketKey,
		HomeTeam:  first.HomeTeam,
		AwayTeam:  first.AwayTeam,
		Outcomes:  make([]OutcomeComparison, 0, len(byOutcome)),
	}

	for outcome, oq := range byOutcome {
		sort.Slice(oq, func(i, j int) bool { return oq[i].Bookmaker < oq[j].Bookmaker })

		oc := OutcomeComparison{OutcomeID: outcome, Books: len(oq)}
		for _, q := range oq {
			if oc.BestBookmaker == "" || q.Price > oc.BestPrice {
				oc.BestBookmaker, oc.BestPrice = q.Bookmaker, q.Price
			}
			if oc.WorstBookmaker == "" || q.Price < oc.WorstPrice {
				oc.WorstBookmaker, oc.WorstPrice = q.Bookmaker, q.Price
			}
		}
		oc.ImpliedProb = 1 / oc.BestPrice
		oc.Spread = (oc.BestPrice - oc.WorstPrice) / oc.WorstPrice * 100
		cmp.Outcomes = append(cmp.Outcomes, oc)
	}

	sort.Slice(cmp.Outcomes, func(i, j int) bool {
		return cmp.Outcomes[i].OutcomeID < cmp.Outcomes[j].OutcomeID
	})
	for _, oc := range cmp.Outcomes {
		cmp.ImpliedSum += oc.ImpliedProb
	}
	for i := range cmp.Outcomes {
		cmp.Outcomes[i].StakeShare = cmp.Outcomes[i].ImpliedProb / cmp.ImpliedSum
	}

	if cmp.ImpliedSum < 1-arbEpsilon {
		margin := (1 - cmp.ImpliedSum) * 100
		cmp.ArbitrageMargin = &margin
	}
	return cmp, true
}

// usable drops unpriceable rows and keeps each bookmaker's latest quote
func usable(quotes []models.Quote) []models.Quote {
	valid := make([]models.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.MarketID == "" || q.OutcomeID == "" || q.Bookmaker == "" {
			continue
		}
		if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) || q.Price <= 1.0 {
			continue
		}
		valid = append(valid, q)
	}
	return models.LatestQuotes(valid)
}
