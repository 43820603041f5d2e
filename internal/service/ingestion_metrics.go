package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks cumulative statistics about odds loading and pricing runs
type IngestionMetrics struct {
	mu            sync.RWMutex
	StartTime     time.Time
	LastDuration  time.Duration
	Runs          int
	EventsFetched int
	Quotes        int
	FeedIssues    int
	Skipped       int
	CacheHits     int
	CacheStale    int
	CacheMisses   int
	FetchErrors   int
}

// IngestionStats is a point-in-time copy of IngestionMetrics
type IngestionStats struct {
	StartTime     time.Time     `json:"start_time"`
	LastDuration  time.Duration `json:"last_duration"`
	Runs          int           `json:"runs"`
	EventsFetched int           `json:"events_fetched"`
	Quotes        int           `json:"quotes"`
	FeedIssues    int           `json:"feed_issues"`
	Skipped       int           `json:"skipped"`
	CacheHits     int           `json:"cache_hits"`
	CacheStale    int           `json:"cache_stale"`
	CacheMisses   int           `json:"cache_misses"`
	FetchErrors   int           `json:"fetch_errors"`
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.LastDuration = 0
	m.Runs = 0
	m.EventsFetched = 0
	m.Quotes = 0
	m.FeedIssues = 0
	m.Skipped = 0
	m.CacheHits = 0
	m.CacheStale = 0
	m.CacheMisses = 0
	m.FetchErrors = 0
}

// RecordCacheHit increments the fresh cache hit count
func (m *IngestionMetrics) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

// RecordCacheStale increments the count of lookups that found only stale data
func (m *IngestionMetrics) RecordCacheStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheStale++
}

// RecordCacheMiss increments the cache miss count
func (m *IngestionMetrics) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

// RecordFetch records a feed request; err marks it failed
func (m *IngestionMetrics) RecordFetch(events int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.FetchErrors++
		return
	}
	m.EventsFetched += events
}

// RecordRun records a completed pricing run
func (m *IngestionMetrics) RecordRun(quotes, feedIssues, skipped int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs++
	m.Quotes += quotes
	m.FeedIssues += feedIssues
	m.Skipped += skipped
	m.LastDuration = duration
}

// Stats returns a copy of the current counters
func (m *IngestionMetrics) Stats() IngestionStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return IngestionStats{
		StartTime:     m.StartTime,
		LastDuration:  m.LastDuration,
		Runs:          m.Runs,
		EventsFetched: m.EventsFetched,
		Quotes:        m.Quotes,
		FeedIssues:    m.FeedIssues,
		Skipped:       m.Skipped,
		CacheHits:     m.CacheHits,
		CacheStale:    m.CacheStale,
		CacheMisses:   m.CacheMisses,
		FetchErrors:   m.FetchErrors,
	}
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	s := m.Stats()

	lookups := s.CacheHits + s.CacheStale + s.CacheMisses
	hitRate := float64(0)
	if lookups > 0 {
		hitRate = float64(s.CacheHits) / float64(lookups) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Runs=%d, Events=%d, Quotes=%d, FeedIssues=%d, Skipped=%d, CacheHitRate=%.1f%%, FetchErrors=%d, LastDuration=%v}",
		s.Runs,
		s.EventsFetched,
		s.Quotes,
		s.FeedIssues,
		s.Skipped,
		hitRate,
		s.FetchErrors,
		s.LastDuration,
	)
}
