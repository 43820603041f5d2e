package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Fetcher defines the interface for fetching raw odds from an external provider
type Fetcher interface {
	// FetchOdds retrieves events with bookmaker odds for one sport
	FetchOdds(ctx context.Context, req Request) ([]Event, error)

	// Name returns the name of the data source
	Name() string
}

// Request describes one odds query
type Request struct {
	SportKey   string
	Markets    []string
	Regions    string
	OddsFormat string // "decimal" or "american"
	DateFormat string // "iso" or "unix"
}

// Event is one game as returned by The Odds API
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker holds one bookmaker's markets for an event
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market holds the outcomes of one market at one bookmaker
type Market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update,omitempty"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Outcome is one priced outcome. Feeds disagree on field names, so every known
// variant is kept and resolved during flattening.
type Outcome struct {
	Name         string          `json:"name,omitempty"`
	Description  string          `json:"description,omitempty"` // player name for props
	Team         string          `json:"team,omitempty"`
	Price        json.RawMessage `json:"price,omitempty"`
	Odds         json.RawMessage `json:"odds,omitempty"`
	PriceDecimal json.RawMessage `json:"price_decimal,omitempty"`
	Point        *float64        `json:"point,omitempty"`
}

// EncodeEvents converts events to raw JSON for caching
func EncodeEvents(events []Event) ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(events))
	for i := range events {
		b, err := json.Marshal(&events[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode event %s: %w", events[i].ID, err)
		}
		raw = append(raw, b)
	}
	return raw, nil
}

// DecodeEvents parses cached raw JSON events
func DecodeEvents(raw []json.RawMessage) ([]Event, error) {
	events := make([]Event, 0, len(raw))
	for i, r := range raw {
		var ev Event
		if err := json.Unmarshal(r, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error code
func (e DataSourceError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && target == sentinel
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

var codeSentinels = map[string]error{
	ErrCodeRateLimitExceeded:    ErrRateLimitExceeded,
	ErrCodeAuthenticationFailed: ErrAuthenticationFailed,
	ErrCodeNotFound:             ErrNotFound,
	ErrCodeInvalidData:          ErrInvalidData,
	ErrCodeNetworkError:         ErrNetworkError,
	ErrCodeServerError:          ErrServerError,
}

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
