// Package oddsmath implements odds conversion, vig removal, expected value and Kelly sizing.
package oddsmath

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOdds matches any *InvalidOddsError via errors.Is
	ErrInvalidOdds = errors.New("invalid odds")

	// ErrInvalidProbability matches any *InvalidProbabilityError via errors.Is
	ErrInvalidProbability = errors.New("invalid probability")

	// ErrDevig matches any *DevigError via errors.Is
	ErrDevig = errors.New("devig failed")

	// ErrInvalidRiskAversion indicates a negative or NaN risk-aversion coefficient
	ErrInvalidRiskAversion = errors.New("risk aversion must be a non-negative number")
)

// InvalidOddsError represents a malformed or out-of-range price
type InvalidOddsError struct {
	Value  string
	Reason string
}

func (e *InvalidOddsError) Error() string {
	return fmt.Sprintf("invalid odds %s: %s", e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidOdds
func (e *InvalidOddsError) Is(target error) bool {
	return target == ErrInvalidOdds
}

// InvalidProbabilityError represents a probability outside the open interval (0, 1)
type InvalidProbabilityError struct {
	Value float64
}

func (e *InvalidProbabilityError) Error() string {
	return fmt.Sprintf("invalid probability %g: must be in (0, 1)", e.Value)
}

// Is reports whether target is ErrInvalidProbability
func (e *InvalidProbabilityError) Is(target error) bool {
	return target == ErrInvalidProbability
}

// DevigError represents a degenerate market that cannot be devigged
type DevigError struct {
	Reason string
	Odds   []float64
}

func (e *DevigError) Error() string {
	return fmt.Sprintf("devig failed: %s (odds: %v)", e.Reason, e.Odds)
}

// Is reports whether target is ErrDevig
func (e *DevigError) Is(target error) bool {
	return target == ErrDevig
}

func invalidOdds(value float64, reason string) error {
	return &InvalidOddsError{Value: fmt.Sprintf("%g", value), Reason: reason}
}
