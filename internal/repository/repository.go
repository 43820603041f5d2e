package repository

import (
	"fmt"

	"github.com/yourusername/odds-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Quote QuoteRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Quote: NewPostgresQuoteRepository(db),
	}, nil
}
