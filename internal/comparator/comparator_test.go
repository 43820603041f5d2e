package comparator

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/odds-edge/internal/models"
)

var t0 = time.Date(2024, 11, 2, 18, 0, 0, 0, time.UTC)

func q(market, outcome, book string, price float64, offset time.Duration) models.Quote {
	return models.Quote{
		MarketID:   market,
		OutcomeID:  outcome,
		Bookmaker:  book,
		Price:      price,
		ObservedAt: t0.Add(offset),
		EventID:    "evt",
		MarketKey:  "h2h",
	}
}

func sampleQuotes() []models.Quote {
	return []models.Quote{
		q("g1:h2h", "Lakers", "fanduel", 3.0, 0),
		q("g1:h2h", "Lakers", "fanduel", 2.1, time.Minute),
		q("g1:h2h", "Lakers", "draftkings", 2.05, 0),
		q("g1:h2h", "Celtics", "fanduel", 1.95, 0),
		q("g1:h2h", "Celtics", "draftkings", 2.0, 0),
		q("g2:h2h", "Home", "fanduel", 1.91, 0),
		q("g2:h2h", "Away", "fanduel", 1.91, 0),
		q("g3:outrights", "Winner", "fanduel", 4.0, 0),
		q("g4:h2h", "A", "promo", 2.5, 0),
		q("g4:h2h", "B", "promo", 2.5, 0),
	}
}

func TestBestPrices(t *testing.T) {
	best := BestPrices(sampleQuotes())

	require.Contains(t, best, "g1:h2h")
	lakers := best["g1:h2h"]["Lakers"]
	assert.Equal(t, "fanduel", lakers.Bookmaker)
	assert.Equal(t, 2.1, lakers.Price, "superseded quote must not count")
	assert.Equal(t, t0.Add(time.Minute), lakers.ObservedAt)

	celtics := best["g1:h2h"]["Celtics"]
	assert.Equal(t, "draftkings", celtics.Bookmaker)
	assert.Equal(t, 2.0, celtics.Price)
}

func TestBestPricesTieBreak(t *testing.T) {
	best := BestPrices([]models.Quote{
		q("g1:h2h", "Lakers", "williamhill", 2.1, 0),
		q("g1:h2h", "Lakers", "betmgm", 2.1, 0),
		q("g1:h2h", "Lakers", "caesars", 2.1, 0),
	})
	assert.Equal(t, "betmgm", best["g1:h2h"]["Lakers"].Bookmaker)
}

func TestAnalyze(t *testing.T) {
	comparisons := Analyze(sampleQuotes())

	// g3 has a single outcome and is not comparable
	require.Len(t, comparisons, 3)
	assert.Equal(t, "g1:h2h", comparisons[0].MarketID)
	assert.Equal(t, "g2:h2h", comparisons[1].MarketID)
	assert.Equal(t, "g4:h2h", comparisons[2].MarketID)

	g1 := comparisons[0]
	require.Len(t, g1.Outcomes, 2)
	assert.Equal(t, "Celtics", g1.Outcomes[0].OutcomeID)
	assert.Equal(t, "Lakers", g1.Outcomes[1].OutcomeID)

	wantSum := 1/2.1 + 1/2.0
	assert.InDelta(t, wantSum, g1.ImpliedSum, 1e-12)
	require.True(t, g1.IsArbitrage())
	assert.InDelta(t, (1-wantSum)*100, *g1.ArbitrageMargin, 1e-9)

	lakers := g1.Outcomes[1]
	assert.Equal(t, "fanduel", lakers.BestBookmaker)
	assert.Equal(t, "draftkings", lakers.WorstBookmaker)
	assert.Equal(t, 2, lakers.Books)
	assert.InDelta(t, (2.1-2.05)/2.05*100, lakers.Spread, 1e-9)
	assert.InDelta(t, (1/2.1)/wantSum, lakers.StakeShare, 1e-12)

	g2 := comparisons[1]
	assert.False(t, g2.IsArbitrage())
	assert.Nil(t, g2.ArbitrageMargin)
	assert.InDelta(t, 0.0, g2.Outcomes[0].Spread, 1e-12)
}

func TestAnalyzeFairBookIsNotArbitrage(t *testing.T) {
	comparisons := Analyze([]models.Quote{
		q("g1:h2h", "Home", "pinnacle", 3.0, 0),
		q("g1:h2h", "Away", "pinnacle", 1.5, 0),
	})
	require.Len(t, comparisons, 1)
	assert.False(t, comparisons[0].IsArbitrage())
}

func TestAnalyzeFlippedSpreadLinesAreSeparateMarkets(t *testing.T) {
	minus, plus := -1.5, 1.5
	x := models.BuildMarketID("g1", "spreads", "", &minus)
	y := models.BuildMarketID("g1", "spreads", "", &plus)
	require.NotEqual(t, x, y)

	comparisons := Analyze([]models.Quote{
		q(x, "A", "bookx", 2.10, 0),
		q(x, "B", "bookx", 1.80, 0),
		q(y, "A", "booky", 1.50, 0),
		q(y, "B", "booky", 2.60, 0),
	})
	require.Len(t, comparisons, 2)
	assert.Empty(t, Arbitrages(comparisons))
}

func TestAnalyzeThreeWayArbitrage(t *testing.T) {
	comparisons := Analyze([]models.Quote{
		q("g1:h2h", "Arsenal", "bet365", 3.2, 0),
		q("g1:h2h", "Draw", "unibet", 3.9, 0),
		q("g1:h2h", "Chelsea", "betfair", 3.5, 0),
	})
	require.Len(t, comparisons, 1)

	cmp := comparisons[0]
	sum := 1/3.2 + 1/3.9 + 1/3.5
	require.Less(t, sum, 1.0)
	require.True(t, cmp.IsArbitrage())

	var shares float64
	payouts := make([]float64, 0, 3)
	for _, o := range cmp.Outcomes {
		shares += o.StakeShare
		payouts = append(payouts, o.StakeShare*o.BestPrice)
	}
	assert.InDelta(t, 1.0, shares, 1e-12)
	for _, p := range payouts {
		assert.InDelta(t, payouts[0], p, 1e-12, "every outcome must return the same payout")
		assert.Greater(t, p, 1.0)
	}
}

func TestAnalyzeIgnoresUnusableQuotes(t *testing.T) {
	comparisons := Analyze([]models.Quote{
		q("g1:h2h", "Home", "fanduel", 1.9, 0),
		q("g1:h2h", "Away", "fanduel", 1.9, 0),
		q("g1:h2h", "Away", "draftkings", 0.5, 0),
		q("g1:h2h", "Away", "betmgm", math.NaN(), 0),
		q("g1:h2h", "Away", "", 5.0, 0),
	})
	require.Len(t, comparisons, 1)
	for _, o := range comparisons[0].Outcomes {
		assert.Equal(t, 1, o.Books)
		assert.Equal(t, "fanduel", o.BestBookmaker)
	}
	assert.Empty(t, Analyze(nil))
}

func TestArbitragesOrderedByMargin(t *testing.T) {
	arbs := Arbitrages(Analyze(sampleQuotes()))
	require.Len(t, arbs, 2)
	assert.Equal(t, "g4:h2h", arbs[0].MarketID)
	assert.InDelta(t, 20.0, *arbs[0].ArbitrageMargin, 1e-9)
	assert.Equal(t, "g1:h2h", arbs[1].MarketID)

	assert.Empty(t, Arbitrages(nil))
}

func TestStakes(t *testing.T) {
	comparisons := Analyze(sampleQuotes())
	stakes := comparisons[0].Stakes(decimal.NewFromInt(100))

	assert.Equal(t, "48.78", stakes["Lakers"].StringFixed(2))
	assert.Equal(t, "51.22", stakes["Celtics"].StringFixed(2))
}
