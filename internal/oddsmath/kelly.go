package oddsmath

import "math"

// KellyParams controls fractional Kelly sizing
type KellyParams struct {
	// Multiplier scales full Kelly; 0.5 is half-Kelly
	Multiplier float64
	// Cap is the largest bankroll fraction ever recommended
	Cap float64
}

// DefaultKellyParams returns half-Kelly capped at 5% of bankroll
func DefaultKellyParams() KellyParams {
	return KellyParams{
		Multiplier: 0.5,
		Cap:        0.05,
	}
}

// FullKelly returns the unscaled Kelly fraction for decimal odds d and win probability p:
// f* = (p*d - 1) / (d - 1). Negative values mean the bet has no edge.
func FullKelly(d, p float64) (float64, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 1.0 {
		return 0, invalidOdds(d, "decimal odds must be greater than 1.0")
	}
	return (p*d - 1.0) / (d - 1.0), nil
}

// KellyFraction returns the recommended bankroll fraction, clamped to [0, params.Cap].
// Negative edges size to zero rather than a short stake.
func KellyFraction(d, p float64, params KellyParams) (float64, error) {
	full, err := FullKelly(d, p)
	if err != nil {
		return 0, err
	}

	f := params.Multiplier * full
	if math.IsNaN(f) {
		return 0, nil
	}
	return math.Max(0, math.Min(f, params.Cap)), nil
}
