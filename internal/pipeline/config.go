// Package pipeline turns a batch of bookmaker quotes into ranked bet/pass decisions.
package pipeline

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/odds-edge/internal/config"
	"github.com/yourusername/odds-edge/internal/oddsmath"
)

// Config holds the pricing parameters for one pipeline run. It is passed explicitly to
// every call; nothing in this package reads process-wide state.
type Config struct {
	RiskAversion    float64       // λ applied to variance in EV_adj
	EVThreshold     float64       // minimum EV per unit stake for a bet
	KellyMultiplier float64       // fraction of full Kelly to stake
	BankrollCap     float64       // upper bound on the staked bankroll fraction
	Bankroll        float64       // bankroll the stake fraction is applied to
	FreshnessWindow time.Duration // max snapshot age before a refetch is preferred
	BetsOnly        bool          // drop pass decisions from the ranked output
	FairValue       string        // FairValueOwn or FairValueConsensus
}

// Fair value sources
const (
	FairValueOwn       = "own"
	FairValueConsensus = "consensus"
)

// DefaultConfig returns the default pricing parameters
func DefaultConfig() Config {
	return Config{
		RiskAversion:    oddsmath.DefaultRiskAversion,
		EVThreshold:     0.02,
		KellyMultiplier: 0.5,
		BankrollCap:     0.05,
		Bankroll:        1000,
		FreshnessWindow: 30 * time.Minute,
		FairValue:       FairValueOwn,
	}
}

// FromConfig builds a Config from the application configuration. The freshness window
// lives in the cache section, so callers that need it set it separately.
func FromConfig(pc *config.PipelineConfig) Config {
	cfg := DefaultConfig()
	if pc == nil {
		return cfg
	}
	cfg.RiskAversion = pc.RiskAversion
	cfg.EVThreshold = pc.EVThreshold
	cfg.KellyMultiplier = pc.KellyMultiplier
	cfg.BankrollCap = pc.BankrollCap
	cfg.Bankroll = pc.Bankroll
	cfg.BetsOnly = pc.BetsOnly
	if pc.FairValue != "" {
		cfg.FairValue = pc.FairValue
	}
	return cfg
}

// Validate checks the pricing parameters
func (c Config) Validate() error {
	if math.IsNaN(c.RiskAversion) || c.RiskAversion < 0 {
		return fmt.Errorf("risk_aversion %g: %w", c.RiskAversion, oddsmath.ErrInvalidRiskAversion)
	}
	if math.IsNaN(c.EVThreshold) || math.IsInf(c.EVThreshold, 0) {
		return fmt.Errorf("ev_threshold must be finite, got %g", c.EVThreshold)
	}
	if !(c.KellyMultiplier > 0 && c.KellyMultiplier <= 1) {
		return fmt.Errorf("kelly_multiplier must be in (0, 1], got %g", c.KellyMultiplier)
	}
	if !(c.BankrollCap > 0 && c.BankrollCap <= 1) {
		return fmt.Errorf("bankroll_cap must be in (0, 1], got %g", c.BankrollCap)
	}
	if !(c.Bankroll > 0) || math.IsInf(c.Bankroll, 0) {
		return fmt.Errorf("bankroll must be positive, got %g", c.Bankroll)
	}
	if c.FairValue != FairValueOwn && c.FairValue != FairValueConsensus {
		return fmt.Errorf("fair_value must be %q or %q, got %q", FairValueOwn, FairValueConsensus, c.FairValue)
	}
	if c.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness_window must be positive, got %s", c.FreshnessWindow)
	}
	return nil
}

func (c Config) kellyParams() oddsmath.KellyParams {
	return oddsmath.KellyParams{Multiplier: c.KellyMultiplier, Cap: c.BankrollCap}
}
