package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/odds-edge/internal/config"
)

// Schema creates the quote history table. Rows are append-only; supersession happens at read time.
const Schema = `
CREATE TABLE IF NOT EXISTS odds_quotes (
	id          UUID PRIMARY KEY,
	run_id      UUID,
	event_id    TEXT NOT NULL,
	sport_key   TEXT,
	market_id   TEXT NOT NULL,
	market_key  TEXT NOT NULL,
	outcome_id  TEXT NOT NULL,
	bookmaker   TEXT NOT NULL,
	price       DOUBLE PRECISION NOT NULL,
	description TEXT,
	point       DOUBLE PRECISION,
	home_team   TEXT,
	away_team   TEXT,
	commence_time TIMESTAMPTZ,
	observed_at TIMESTAMPTZ NOT NULL,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_odds_quotes_market
	ON odds_quotes (market_id, outcome_id, bookmaker, observed_at DESC);
`

// Open connects to the line-history database. It returns nil without error when the
// database is disabled in configuration.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema applies Schema inside a transaction
func (db *DB) EnsureSchema(ctx context.Context) error {
	return db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, Schema); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		return nil
	})
}
