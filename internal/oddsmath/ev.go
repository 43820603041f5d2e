package oddsmath

import "math"

// DefaultRiskAversion is the λ applied to variance in AdjustedEV
const DefaultRiskAversion = 0.5

// RiskProfile holds the per-unit-stake risk figures for one priced outcome
type RiskProfile struct {
	EV       float64
	Variance float64
	EVAdj    float64
}

// ExpectedValue returns the expected profit per unit stake at decimal odds d when the
// outcome's true probability is p: p*(d-1) - (1-p)
func ExpectedValue(d, p float64) (float64, error) {
	if err := validateInputs(d, p); err != nil {
		return 0, err
	}
	return expectedValue(d, p), nil
}

// Variance returns the population variance of the payoff of a unit stake: the bet wins
// d-1 with probability p and loses 1 otherwise, so Var = p*(1-p)*(d-1-(-1))^2 = p*(1-p)*d^2.
func Variance(d, p float64) (float64, error) {
	if err := validateInputs(d, p); err != nil {
		return 0, err
	}
	return variance(d, p), nil
}

// AdjustedEV returns EV - lambda*Var
func AdjustedEV(d, p, lambda float64) (float64, error) {
	profile, err := Evaluate(d, p, lambda)
	if err != nil {
		return 0, err
	}
	return profile.EVAdj, nil
}

// Evaluate computes EV, variance and variance-adjusted EV in one pass
func Evaluate(d, p, lambda float64) (RiskProfile, error) {
	if err := validateInputs(d, p); err != nil {
		return RiskProfile{}, err
	}
	if math.IsNaN(lambda) || lambda < 0 {
		return RiskProfile{}, ErrInvalidRiskAversion
	}

	ev := expectedValue(d, p)
	v := variance(d, p)
	return RiskProfile{
		EV:       ev,
		Variance: v,
		EVAdj:    ev - lambda*v,
	}, nil
}

func expectedValue(d, p float64) float64 {
	return p*(d-1.0) - (1.0 - p)
}

func variance(d, p float64) float64 {
	return p * (1.0 - p) * d * d
}

func validateInputs(d, p float64) error {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return &InvalidProbabilityError{Value: p}
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 1.0 {
		return invalidOdds(d, "decimal odds must be greater than 1.0")
	}
	return nil
}
