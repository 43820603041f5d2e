package oddsmath

import "math"

// Devig removes the bookmaker margin from one bookmaker's prices for a single market
// using multiplicative normalization: p_i = (1/d_i) / Σ(1/d_j).
// The returned probabilities keep the order of the input odds.
func Devig(decimals []float64) ([]float64, error) {
	total, err := impliedSum(decimals)
	if err != nil {
		return nil, err
	}

	fair := make([]float64, len(decimals))
	for i, d := range decimals {
		fair[i] = (1.0 / d) / total
	}
	return fair, nil
}

// Overround returns the bookmaker margin for a market: Σ(1/d_i) - 1
// A -110/-110 market has an overround of roughly 0.0476.
func Overround(decimals []float64) (float64, error) {
	total, err := impliedSum(decimals)
	if err != nil {
		return 0, err
	}
	return total - 1.0, nil
}

func impliedSum(decimals []float64) (float64, error) {
	if len(decimals) < 2 {
		return 0, &DevigError{Reason: "at least 2 outcomes required", Odds: decimals}
	}

	total := 0.0
	for _, d := range decimals {
		if math.IsNaN(d) || math.IsInf(d, 0) || d <= 1.0 {
			return 0, &DevigError{Reason: "all odds must be finite and greater than 1.0", Odds: decimals}
		}
		total += 1.0 / d
	}

	if total <= 0 {
		return 0, &DevigError{Reason: "non-positive overround", Odds: decimals}
	}
	return total, nil
}
