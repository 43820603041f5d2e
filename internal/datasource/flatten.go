package datasource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/odds-edge/internal/models"
	"github.com/yourusername/odds-edge/internal/oddsmath"
)

// Flatten issue reasons
const (
	IssueMissingMarket  = "missing_market"
	IssueMissingOutcome = "missing_outcome_name"
	IssueMissingPrice   = "missing_price"
	IssueInvalidPrice   = "invalid_price"
)

// FlattenIssue describes a feed row that could not become a quote
type FlattenIssue struct {
	EventID   string `json:"event_id"`
	Bookmaker string `json:"bookmaker,omitempty"`
	MarketKey string `json:"market_key"`
	OutcomeID string `json:"outcome_id,omitempty"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

// Flatten turns events into one quote per bookmaker outcome for the requested market
// keys; an empty marketKeys accepts every market. Prices may be decimal or American,
// numeric or string. Rows that cannot be read are returned as issues.
func Flatten(events []Event, marketKeys []string, observedAt time.Time) ([]models.Quote, []FlattenIssue) {
	wanted := make(map[string]bool, len(marketKeys))
	for _, k := range marketKeys {
		wanted[k] = true
	}

	var quotes []models.Quote
	var issues []FlattenIssue

	for _, ev := range events {
		seen := make(map[string]bool)

		for _, bm := range ev.Bookmakers {
			book := bm.Title
			if book == "" {
				book = bm.Key
			}

			for _, mk := range bm.Markets {
				if len(wanted) > 0 && !wanted[mk.Key] {
					continue
				}
				seen[mk.Key] = true

				ts := observedAt
				switch {
				case !mk.LastUpdate.IsZero():
					ts = mk.LastUpdate
				case !bm.LastUpdate.IsZero():
					ts = bm.LastUpdate
				}

				line := spreadLine(ev, mk)
				for _, oc := range mk.Outcomes {
					q, issue := flattenOutcome(ev, book, mk.Key, oc, line, ts)
					if issue != nil {
						issues = append(issues, *issue)
						continue
					}
					quotes = append(quotes, q)
				}
			}
		}

		for _, k := range marketKeys {
			if !seen[k] {
				issues = append(issues, FlattenIssue{EventID: ev.ID, MarketKey: k, Reason: IssueMissingMarket})
			}
		}
	}

	return quotes, issues
}

// spreadLine returns the signed line that identifies a spread market at one bookmaker:
// the home team's point, or the point of the lexically first outcome when the home team is
// not quoted. Outcomes of other markets use their own point.
func spreadLine(ev Event, mk Market) *float64 {
	if !strings.Contains(mk.Key, "spreads") {
		return nil
	}

	var anchor *float64
	anchorName := ""
	for _, oc := range mk.Outcomes {
		name := firstNonEmpty(oc.Name, oc.Description, oc.Team)
		if name == "" || oc.Point == nil {
			continue
		}
		if ev.HomeTeam != "" && name == ev.HomeTeam {
			return oc.Point
		}
		if anchor == nil || name < anchorName {
			anchor, anchorName = oc.Point, name
		}
	}
	return anchor
}

func flattenOutcome(ev Event, book, marketKey string, oc Outcome, line *float64, ts time.Time) (models.Quote, *FlattenIssue) {
	name := firstNonEmpty(oc.Name, oc.Description, oc.Team)
	issue := &FlattenIssue{EventID: ev.ID, Bookmaker: book, MarketKey: marketKey, OutcomeID: name}
	if name == "" {
		issue.Reason = IssueMissingOutcome
		return models.Quote{}, issue
	}

	// player props carry the player in description and Over/Under in name
	description := ""
	if oc.Name != "" {
		description = oc.Description
	}

	raw, ok, err := parseRawPrice(oc)
	if !ok {
		issue.Reason = IssueMissingPrice
		return models.Quote{}, issue
	}
	if err != nil {
		issue.Reason = IssueInvalidPrice
		issue.Err = err
		return models.Quote{}, issue
	}
	price, err := oddsmath.NormalizePrice(raw)
	if err != nil {
		issue.Reason = IssueInvalidPrice
		issue.Err = err
		return models.Quote{}, issue
	}

	marketPoint := oc.Point
	if line != nil {
		marketPoint = line
	}

	return models.Quote{
		MarketID:     models.BuildMarketID(ev.ID, marketKey, description, marketPoint),
		OutcomeID:    name,
		Bookmaker:    book,
		Price:        price,
		ObservedAt:   ts,
		EventID:      ev.ID,
		SportKey:     ev.SportKey,
		MarketKey:    marketKey,
		HomeTeam:     ev.HomeTeam,
		AwayTeam:     ev.AwayTeam,
		CommenceTime: ev.CommenceTime,
		Description:  description,
		Point:        oc.Point,
	}, nil
}

// parseRawPrice reads the first present price field as a number. String prices such as
// "+120" are accepted. ok is false when no price field is present.
func parseRawPrice(oc Outcome) (float64, bool, error) {
	for _, field := range []json.RawMessage{oc.Price, oc.Odds, oc.PriceDecimal} {
		field = bytes.TrimSpace(field)
		if len(field) == 0 || bytes.Equal(field, []byte("null")) {
			continue
		}

		var num float64
		if err := json.Unmarshal(field, &num); err == nil {
			return num, true, nil
		}

		var s string
		if err := json.Unmarshal(field, &s); err != nil {
			return 0, true, fmt.Errorf("price %s is neither a number nor a string", field)
		}
		v, err := oddsmath.ParseAmerican(s)
		if err != nil {
			return 0, true, err
		}
		return v, true, nil
	}
	return 0, false, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
