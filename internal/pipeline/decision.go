package pipeline

import (
	"sort"

	"github.com/yourusername/odds-edge/internal/models"
)

// Decide returns DecisionBet when ev reaches the threshold. The boundary counts as a bet.
func Decide(ev, threshold float64) models.Decision {
	if ev >= threshold {
		return models.DecisionBet
	}
	return models.DecisionPass
}

// Rank orders records by EVAdj descending, then EV descending, then market, outcome and
// bookmaker ascending. The input slice is not modified.
func Rank(records []models.EVRecord, betsOnly bool) []models.EVRecord {
	ranked := make([]models.EVRecord, 0, len(records))
	for _, r := range records {
		if betsOnly && !r.IsBet() {
			continue
		}
		ranked = append(ranked, r)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return rankedBefore(&ranked[i], &ranked[j])
	})
	return ranked
}

func rankedBefore(a, b *models.EVRecord) bool {
	if a.EVAdj != b.EVAdj {
		return a.EVAdj > b.EVAdj
	}
	if a.EV != b.EV {
		return a.EV > b.EV
	}
	if a.MarketID != b.MarketID {
		return a.MarketID < b.MarketID
	}
	if a.OutcomeID != b.OutcomeID {
		return a.OutcomeID < b.OutcomeID
	}
	return a.Bookmaker < b.Bookmaker
}
