package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/yourusername/odds-edge/internal/config"
)

// SetupTestDB connects to the database named by the ODDS_EDGE_TEST_DB_* environment
// variables and applies the schema. The test is skipped when ODDS_EDGE_TEST_DB_HOST is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv("ODDS_EDGE_TEST_DB_HOST")
	if host == "" {
		t.Skip("ODDS_EDGE_TEST_DB_HOST not set")
	}

	port := 5432
	if p := os.Getenv("ODDS_EDGE_TEST_DB_PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	cfg := &config.DatabaseConfig{
		Enabled:        true,
		Host:           host,
		Port:           port,
		Name:           envOr("ODDS_EDGE_TEST_DB_NAME", "odds_edge_test"),
		User:           envOr("ODDS_EDGE_TEST_DB_USER", "postgres"),
		Password:       os.Getenv("ODDS_EDGE_TEST_DB_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	return db
}

// TeardownTestDB removes test rows and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.pool.Exec(ctx, "TRUNCATE odds_quotes"); err != nil {
		t.Logf("warning: failed to truncate test table: %v", err)
	}
	db.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
