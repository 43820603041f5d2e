package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/odds-edge/internal/database"
	"github.com/yourusername/odds-edge/internal/models"
)

var quoteColumns = []string{
	"id", "run_id", "event_id", "sport_key", "market_id", "market_key", "outcome_id",
	"bookmaker", "price", "description", "point", "home_team", "away_team",
	"commence_time", "observed_at",
}

const quoteSelect = `
	SELECT event_id, COALESCE(sport_key, ''), market_id, market_key, outcome_id, bookmaker, price,
	       COALESCE(description, ''), point, COALESCE(home_team, ''), COALESCE(away_team, ''),
	       commence_time, observed_at
	FROM odds_quotes
`

// PostgresQuoteRepository implements QuoteRepository for PostgreSQL
type PostgresQuoteRepository struct {
	db *database.DB
}

// NewPostgresQuoteRepository creates a new quote repository
func NewPostgresQuoteRepository(db *database.DB) QuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// InsertBatch appends quotes using COPY
func (r *PostgresQuoteRepository) InsertBatch(ctx context.Context, runID uuid.UUID, quotes []models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	rows := quoteRows(runID, quotes)
	count, err := r.db.Pool().CopyFrom(ctx, pgx.Identifier{"odds_quotes"}, quoteColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert quotes: %w", err)
	}

	if count != int64(len(quotes)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(quotes))
	}
	return nil
}

// LatestForMarket returns the latest quote per outcome and bookmaker for a market
func (r *PostgresQuoteRepository) LatestForMarket(ctx context.Context, marketID string) ([]models.Quote, error) {
	query := `
		SELECT DISTINCT ON (outcome_id, bookmaker) event_id, COALESCE(sport_key, ''), market_id, market_key,
		       outcome_id, bookmaker, price, COALESCE(description, ''), point, COALESCE(home_team, ''),
		       COALESCE(away_team, ''), commence_time, observed_at
		FROM odds_quotes
		WHERE market_id = $1
		ORDER BY outcome_id, bookmaker, observed_at DESC, inserted_at DESC
	`

	rows, err := r.db.Pool().Query(ctx, query, marketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest quotes: %w", err)
	}
	defer rows.Close()

	quotes, err := scanQuotes(rows)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, models.ErrNotFound
	}
	return quotes, nil
}

// History returns the price series for one outcome at one bookmaker within a time range
func (r *PostgresQuoteRepository) History(ctx context.Context, marketID, outcomeID, bookmaker string, start, end time.Time) ([]models.Quote, error) {
	query := quoteSelect + `
		WHERE market_id = $1 AND outcome_id = $2 AND bookmaker = $3
		  AND observed_at >= $4 AND observed_at <= $5
		ORDER BY observed_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, marketID, outcomeID, bookmaker, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote history: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

func scanQuotes(rows pgx.Rows) ([]models.Quote, error) {
	var quotes []models.Quote
	for rows.Next() {
		var (
			q        models.Quote
			commence *time.Time
		)
		err := rows.Scan(
			&q.EventID, &q.SportKey, &q.MarketID, &q.MarketKey, &q.OutcomeID, &q.Bookmaker, &q.Price,
			&q.Description, &q.Point, &q.HomeTeam, &q.AwayTeam, &commence, &q.ObservedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		if commence != nil {
			q.CommenceTime = *commence
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// quoteRows converts quotes into COPY rows in quoteColumns order
func quoteRows(runID uuid.UUID, quotes []models.Quote) [][]interface{} {
	rows := make([][]interface{}, len(quotes))
	for i, q := range quotes {
		var commence interface{}
		if !q.CommenceTime.IsZero() {
			commence = q.CommenceTime
		}
		rows[i] = []interface{}{
			uuid.New(), runID, q.EventID, q.SportKey, q.MarketID, q.MarketKey, q.OutcomeID,
			q.Bookmaker, q.Price, q.Description, q.Point, q.HomeTeam, q.AwayTeam,
			commence, q.ObservedAt,
		}
	}
	return rows
}
