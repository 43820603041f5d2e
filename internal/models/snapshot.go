package models

import (
	"encoding/json"
	"time"
)

// Snapshot is a raw odds feed payload as stored in the cache
type Snapshot struct {
	Key       string            `json:"key"`
	SportKey  string            `json:"sport_key"`
	Markets   []string          `json:"markets"`
	Regions   string            `json:"regions"`
	FetchedAt time.Time         `json:"fetched_at"`
	Events    []json.RawMessage `json:"events"`
}

// Age returns how long ago the snapshot was fetched relative to now
func (s *Snapshot) Age(now time.Time) time.Duration {
	if s.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(s.FetchedAt)
}

// IsEmpty reports whether the snapshot carries no events
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Events) == 0
}
