package oddsmath

import (
	"math"
	"strconv"
	"strings"
)

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.6667
func AmericanToDecimal(american float64) (float64, error) {
	if math.IsNaN(american) || math.IsInf(american, 0) {
		return 0, invalidOdds(american, "not a finite number")
	}
	if american > -100 && american < 100 {
		return 0, invalidOdds(american, "American odds must be <= -100 or >= 100")
	}

	if american >= 100 {
		return 1.0 + american/100.0, nil
	}
	return 1.0 + 100.0/math.Abs(american), nil
}

// ParseAmerican parses an American odds string such as "+120" or "-140"
func ParseAmerican(s string) (float64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "+")
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &InvalidOddsError{Value: strconv.Quote(s), Reason: "not numeric"}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &InvalidOddsError{Value: strconv.Quote(s), Reason: "not a finite number"}
	}
	return value, nil
}

// DecimalToAmerican converts decimal odds to American odds, rounded to cents
// Decimal 2.50 → American +150
// Decimal 1.50 → American -200
func DecimalToAmerican(decimal float64) (float64, error) {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return 0, invalidOdds(decimal, "not a finite number")
	}
	if decimal <= 1.0 {
		return 0, invalidOdds(decimal, "decimal odds must be greater than 1.0")
	}

	if decimal >= 2.0 {
		return roundCents((decimal - 1.0) * 100.0), nil
	}
	return roundCents(-100.0 / (decimal - 1.0)), nil
}

// ImpliedProbability converts decimal odds to the bookmaker's implied probability
// Decimal 2.00 → 0.50
func ImpliedProbability(decimal float64) (float64, error) {
	if math.IsNaN(decimal) || decimal <= 1.0 {
		return 0, invalidOdds(decimal, "decimal odds must be greater than 1.0")
	}
	return 1.0 / decimal, nil
}

// NormalizePrice returns decimal odds for a feed price that may be either format.
// Values <= 0 or with magnitude >= 100 are treated as American; everything else is
// taken as decimal and must exceed 1.0.
func NormalizePrice(raw float64) (float64, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, invalidOdds(raw, "not a finite number")
	}
	if raw <= 0 || math.Abs(raw) >= 100 {
		return AmericanToDecimal(raw)
	}
	if raw <= 1.0 {
		return 0, invalidOdds(raw, "decimal odds must be greater than 1.0")
	}
	return raw, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Price is one price expressed in both formats
type Price struct {
	Decimal     float64 `json:"decimal"`
	American    float64 `json:"american"`
	ImpliedProb float64 `json:"implied_prob"`
}

// PriceFromAmerican fills a Price from American odds
func PriceFromAmerican(american float64) (Price, error) {
	d, err := AmericanToDecimal(american)
	if err != nil {
		return Price{}, err
	}
	p, err := ImpliedProbability(d)
	if err != nil {
		return Price{}, err
	}
	return Price{Decimal: d, American: american, ImpliedProb: p}, nil
}

// PriceFromDecimal fills a Price from decimal odds
func PriceFromDecimal(decimal float64) (Price, error) {
	a, err := DecimalToAmerican(decimal)
	if err != nil {
		return Price{}, err
	}
	p, err := ImpliedProbability(decimal)
	if err != nil {
		return Price{}, err
	}
	return Price{Decimal: decimal, American: a, ImpliedProb: p}, nil
}
