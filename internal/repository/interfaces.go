package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/odds-edge/internal/models"
)

// QuoteRepository defines the interface for quote line-history access
type QuoteRepository interface {
	InsertBatch(ctx context.Context, runID uuid.UUID, quotes []models.Quote) error
	LatestForMarket(ctx context.Context, marketID string) ([]models.Quote, error)
	History(ctx context.Context, marketID, outcomeID, bookmaker string, start, end time.Time) ([]models.Quote, error)
}
