package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/odds-edge/internal/models"
)

const redisKeyPrefix = "odds-edge:snapshot:"

// RedisStore keeps snapshots in Redis so several processes share one API quota
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention, now: time.Now}
}

// NewRedisStoreFromURL connects to redisURL and checks the connection
func NewRedisStoreFromURL(ctx context.Context, redisURL string, retention time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(client, retention), nil
}

// Get retrieves a cached snapshot
func (s *RedisStore) Get(ctx context.Context, key string) (*models.Snapshot, time.Duration, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, 0, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, snap.Age(s.now()), true, nil
}

// Put stores a snapshot for the retention period
func (s *RedisStore) Put(ctx context.Context, snapshot *models.Snapshot) error {
	cp := *snapshot
	if cp.FetchedAt.IsZero() {
		cp.FetchedAt = s.now()
	}
	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+cp.Key, data, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
