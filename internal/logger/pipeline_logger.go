// Package logger provides pipeline-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for pricing runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogRun logs a completed pricing run.
func (pl *PipelineLogger) LogRun(runID, sportKey string, quotesIn, records, bets, skips int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"run_id":      runID,
		"sport_key":   sportKey,
		"quotes_in":   quotesIn,
		"records":     records,
		"bets":        bets,
		"skips":       skips,
		"duration_ms": float64(duration.Microseconds()) / 1000.0,
	}).Info("Pricing run completed")
}

// LogSkip logs a quote or market the pipeline dropped.
func (pl *PipelineLogger) LogSkip(runID, marketID, outcomeID, bookmaker, reason string) {
	pl.WithFields(logrus.Fields{
		"run_id":     runID,
		"market_id":  marketID,
		"outcome_id": outcomeID,
		"bookmaker":  bookmaker,
		"reason":     reason,
	}).Warn("Skipped quote")
}

// LogDecision logs a bet decision.
func (pl *PipelineLogger) LogDecision(runID, marketID, outcomeID, bookmaker string, price, devigProb, ev, evAdj, kellyFraction float64, stake string) {
	pl.WithFields(logrus.Fields{
		"run_id":         runID,
		"market_id":      marketID,
		"outcome_id":     outcomeID,
		"bookmaker":      bookmaker,
		"price":          price,
		"devig_prob":     devigProb,
		"ev":             ev,
		"ev_adj":         evAdj,
		"kelly_fraction": kellyFraction,
		"stake":          stake,
	}).Info("Bet flagged")
}

// LogArbitrage logs a detected arbitrage opportunity.
func (pl *PipelineLogger) LogArbitrage(marketID string, marginPct float64, outcomes int) {
	pl.WithFields(logrus.Fields{
		"market_id":  marketID,
		"margin_pct": marginPct,
		"outcomes":   outcomes,
	}).Info("Arbitrage detected")
}
