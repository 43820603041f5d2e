package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/odds-edge/internal/comparator"
	"github.com/yourusername/odds-edge/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	convertAmerican, convertDecimal = "", 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	out, err := execute(t, "convert", "--american=+150")
	require.NoError(t, err)
	assert.Equal(t, "decimal: 2.5000\namerican: +150\nimplied: 0.4000\n", out)

	out, err = execute(t, "convert", "--decimal=1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "american: -200")

	_, err = execute(t, "convert", "--american=50")
	assert.Error(t, err)
}

func TestDevigCommand(t *testing.T) {
	out, err := execute(t, "devig", "1.91", "1.91")
	require.NoError(t, err)
	assert.Contains(t, out, "overround: 0.0471")
	assert.Contains(t, out, "1.91 -> 0.5000 (fair 2.00)")

	_, err = execute(t, "devig", "1.91")
	assert.Error(t, err)

	_, err = execute(t, "devig", "1.91", "abc")
	assert.Error(t, err)
}

func TestWriteRecords(t *testing.T) {
	point := -3.5
	records := []models.EVRecord{
		{
			MarketID: "evt1:spreads", OutcomeID: "Lakers", Bookmaker: "BookA", Point: &point,
			Price: 2.2, AmericanOdds: 120, FairProb: 0.5, EV: 0.1, EVAdj: -0.505,
			KellyFraction: 0.05, RecommendedStake: decimal.NewFromInt(50), Decision: models.DecisionBet,
		},
	}

	var buf bytes.Buffer
	writeRecords(&buf, records)
	out := buf.String()
	assert.Contains(t, out, "EV_ADJ")
	assert.Contains(t, out, "Lakers -3.5")
	assert.Contains(t, out, "50.00")
	assert.Contains(t, out, "BET")

	buf.Reset()
	writeRecords(&buf, nil)
	assert.Equal(t, "No priced outcomes.\n", buf.String())
}

func TestWriteArbitrages(t *testing.T) {
	margin := 4.5
	arbs := []comparator.MarketComparison{{
		MarketID: "evt1:h2h",
		Outcomes: []comparator.OutcomeComparison{
			{OutcomeID: "Lakers", BestBookmaker: "BookA", BestPrice: 2.2, StakeShare: 0.5},
			{OutcomeID: "Celtics", BestBookmaker: "BookA", BestPrice: 2.2, StakeShare: 0.5},
		},
		ArbitrageMargin: &margin,
	}}

	var buf bytes.Buffer
	writeArbitrages(&buf, arbs)
	out := buf.String()
	assert.Contains(t, out, "Arbitrage (1)")
	assert.Contains(t, out, "4.50%")
	assert.Contains(t, out, "Celtics")
}
