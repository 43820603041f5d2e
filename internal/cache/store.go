// Package cache stores raw odds feed snapshots so repeated requests within the
// freshness window do not spend API quota.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-edge/internal/config"
	"github.com/yourusername/odds-edge/internal/models"
)

// Store returns the most recent snapshot for a key together with its age
type Store interface {
	// Get returns the snapshot, its age and whether one was found
	Get(ctx context.Context, key string) (*models.Snapshot, time.Duration, bool, error)

	// Put stores snapshot under snapshot.Key
	Put(ctx context.Context, snapshot *models.Snapshot) error
}

// Key builds the cache key for an odds query: the md5 of the query parameters
// serialised as JSON with sorted keys.
func Key(sport string, markets []string, regions string) string {
	serial := fmt.Sprintf(`{"markets": %s, "regions": %s, "sport": %s}`,
		jsonString(strings.Join(markets, ",")), jsonString(regions), jsonString(sport))
	sum := md5.Sum([]byte(serial))
	return hex.EncodeToString(sum[:])
}

// IsFresh reports whether a snapshot of the given age is inside the freshness window
func IsFresh(age, window time.Duration) bool {
	return age < window
}

// New creates the store selected by cfg.Backend
func New(ctx context.Context, cfg *config.CacheConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.Dir, cfg.RawDir, logger)
	case "memory":
		return NewMemoryStore(cfg.Retention), nil
	case "redis":
		return NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.Retention)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Backend)
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
