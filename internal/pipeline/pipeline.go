package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/odds-edge/internal/models"
	"github.com/yourusername/odds-edge/internal/oddsmath"
)

// Skip reasons
const (
	ReasonMissingField       = "missing_field"
	ReasonInvalidPrice       = "invalid_price"
	ReasonDegenerateMarket   = "degenerate_market"
	ReasonIncompleteCoverage = "incomplete_coverage"
	ReasonDevigFailed        = "devig_failed"
	ReasonEvaluationFailed   = "evaluation_failed"
)

// Result is the output of one pipeline run
type Result struct {
	RunID    uuid.UUID         `json:"run_id"`
	Records  []models.EVRecord `json:"records"` // ranked
	Skips    []models.Skip     `json:"skips"`
	Markets  int               `json:"markets"`
	QuotesIn int               `json:"quotes_in"`
}

// Bets returns the ranked records flagged as bets
func (r *Result) Bets() []models.EVRecord {
	bets := make([]models.EVRecord, 0)
	for _, rec := range r.Records {
		if rec.IsBet() {
			bets = append(bets, rec)
		}
	}
	return bets
}

// Table returns the ranked records as flat column mappings
func (r *Result) Table() []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(r.Records))
	for i := range r.Records {
		rows = append(rows, r.Records[i].Fields())
	}
	return rows
}

// Compute prices a batch of quotes. Bad rows and degenerate markets are recorded as skips
// and never abort the batch. An error is returned only for an invalid Config.
func Compute(quotes []models.Quote, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	result := &Result{
		RunID:    uuid.New(),
		QuotesIn: len(quotes),
		Records:  make([]models.EVRecord, 0),
		Skips:    make([]models.Skip, 0),
	}

	valid, skips := screen(quotes)
	result.Skips = append(result.Skips, skips...)

	markets := groupByMarket(models.LatestQuotes(valid))
	result.Markets = len(markets)

	marketIDs := make([]string, 0, len(markets))
	for id := range markets {
		marketIDs = append(marketIDs, id)
	}
	sort.Strings(marketIDs)

	records := make([]models.EVRecord, 0, len(valid))
	for _, id := range marketIDs {
		recs, skips := priceMarket(markets[id], cfg)
		records = append(records, recs...)
		result.Skips = append(result.Skips, skips...)
	}

	result.Records = Rank(records, cfg.BetsOnly)
	return result, nil
}

// screen drops rows that cannot be priced at all
func screen(quotes []models.Quote) ([]models.Quote, []models.Skip) {
	valid := make([]models.Quote, 0, len(quotes))
	var skips []models.Skip

	for _, q := range quotes {
		switch {
		case q.MarketID == "" || q.OutcomeID == "" || q.Bookmaker == "":
			skips = append(skips, newSkip(q, ReasonMissingField,
				fmt.Errorf("quote requires market_id, outcome_id and bookmaker")))
		case math.IsNaN(q.Price) || math.IsInf(q.Price, 0) || q.Price <= 1.0:
			skips = append(skips, newSkip(q, ReasonInvalidPrice,
				&oddsmath.InvalidOddsError{Value: fmt.Sprintf("%g", q.Price), Reason: "decimal odds must be greater than 1.0"}))
		default:
			valid = append(valid, q)
		}
	}
	return valid, skips
}

func groupByMarket(quotes []models.Quote) map[string][]models.Quote {
	markets := make(map[string][]models.Quote)
	for _, q := range quotes {
		markets[q.MarketID] = append(markets[q.MarketID], q)
	}
	return markets
}

// priceMarket devigs and evaluates one market. It depends only on the market's own quotes.
func priceMarket(quotes []models.Quote, cfg Config) ([]models.EVRecord, []models.Skip) {
	outcomes := make(map[string]struct{})
	byBook := make(map[string][]models.Quote)
	for _, q := range quotes {
		outcomes[q.OutcomeID] = struct{}{}
		byBook[q.Bookmaker] = append(byBook[q.Bookmaker], q)
	}

	var skips []models.Skip
	if len(outcomes) < 2 {
		err := &oddsmath.DevigError{Reason: fmt.Sprintf("market has %d outcome(s), need at least 2", len(outcomes))}
		for _, q := range quotes {
			skips = append(skips, newSkip(q, ReasonDegenerateMarket, err))
		}
		return nil, skips
	}

	books := make([]string, 0, len(byBook))
	for b := range byBook {
		books = append(books, b)
	}
	sort.Strings(books)

	// devig each bookmaker with full coverage
	devigged := make([]bookPrices, 0, len(books))
	for _, book := range books {
		bookQuotes := byBook[book]
		sort.Slice(bookQuotes, func(i, j int) bool {
			return bookQuotes[i].OutcomeID < bookQuotes[j].OutcomeID
		})

		if len(bookQuotes) != len(outcomes) {
			err := &oddsmath.DevigError{Reason: fmt.Sprintf("bookmaker quotes %d of %d outcomes", len(bookQuotes), len(outcomes))}
			for _, q := range bookQuotes {
				skips = append(skips, newSkip(q, ReasonIncompleteCoverage, err))
			}
			continue
		}

		prices := make([]float64, len(bookQuotes))
		for i, q := range bookQuotes {
			prices[i] = q.Price
		}
		probs, err := oddsmath.Devig(prices)
		if err != nil {
			for _, q := range bookQuotes {
				skips = append(skips, newSkip(q, ReasonDevigFailed, err))
			}
			continue
		}
		devigged = append(devigged, bookPrices{quotes: bookQuotes, probs: probs})
	}

	var consensus []float64
	if cfg.FairValue == FairValueConsensus {
		consensus = consensusProbs(devigged)
	}

	var records []models.EVRecord
	for _, bp := range devigged {
		for i, q := range bp.quotes {
			fair := bp.probs[i]
			if consensus != nil {
				fair = consensus[i]
			}
			rec, err := evaluate(q, bp.probs[i], fair, cfg)
			if err != nil {
				skips = append(skips, newSkip(q, ReasonEvaluationFailed, err))
				continue
			}
			records = append(records, rec)
		}
	}
	return records, skips
}

// bookPrices holds one bookmaker's quotes for a market, ordered by outcome, and their
// devigged probabilities in the same order.
type bookPrices struct {
	quotes []models.Quote
	probs  []float64
}

// consensusProbs averages devigged probabilities across bookmakers. Every entry covers the
// same outcomes in the same order, so the mean still sums to one.
func consensusProbs(books []bookPrices) []float64 {
	if len(books) == 0 {
		return nil
	}
	mean := make([]float64, len(books[0].probs))
	for _, bp := range books {
		for i, p := range bp.probs {
			mean[i] += p
		}
	}
	for i := range mean {
		mean[i] /= float64(len(books))
	}
	return mean
}

// evaluate builds the EV record for one quote. devig is the bookmaker's own devigged
// probability and p is the fair probability EV and Kelly are computed against.
func evaluate(q models.Quote, devig, p float64, cfg Config) (models.EVRecord, error) {
	profile, err := oddsmath.Evaluate(q.Price, p, cfg.RiskAversion)
	if err != nil {
		return models.EVRecord{}, err
	}
	kelly, err := oddsmath.KellyFraction(q.Price, p, cfg.kellyParams())
	if err != nil {
		return models.EVRecord{}, err
	}
	american, err := oddsmath.DecimalToAmerican(q.Price)
	if err != nil {
		return models.EVRecord{}, err
	}

	stake := decimal.NewFromFloat(kelly).
		Mul(decimal.NewFromFloat(cfg.Bankroll)).
		Round(2)

	return models.EVRecord{
		MarketID:         q.MarketID,
		OutcomeID:        q.OutcomeID,
		Bookmaker:        q.Bookmaker,
		EventID:          q.EventID,
		SportKey:         q.SportKey,
		MarketKey:        q.MarketKey,
		HomeTeam:         q.HomeTeam,
		AwayTeam:         q.AwayTeam,
		Description:      q.Description,
		Point:            q.Point,
		Price:            q.Price,
		AmericanOdds:     american,
		ImpliedProb:      1 / q.Price,
		DevigProb:        devig,
		FairProb:         p,
		EV:               profile.EV,
		Variance:         profile.Variance,
		EVAdj:            profile.EVAdj,
		KellyFraction:    kelly,
		RecommendedStake: stake,
		Decision:         Decide(profile.EV, cfg.EVThreshold),
		ObservedAt:       q.ObservedAt,
	}, nil
}

func newSkip(q models.Quote, reason string, err error) models.Skip {
	skip := models.Skip{
		MarketID:  q.MarketID,
		OutcomeID: q.OutcomeID,
		Bookmaker: q.Bookmaker,
		Reason:    reason,
		Err:       err,
	}
	if err != nil {
		skip.Detail = err.Error()
	}
	return skip
}
