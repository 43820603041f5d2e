// Package service loads odds snapshots through the cache, runs the pricing pipeline and
// keeps the latest report per sport for readers.
package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-edge/internal/cache"
	"github.com/yourusername/odds-edge/internal/comparator"
	"github.com/yourusername/odds-edge/internal/datasource"
	"github.com/yourusername/odds-edge/internal/logger"
	"github.com/yourusername/odds-edge/internal/metrics"
	"github.com/yourusername/odds-edge/internal/models"
	"github.com/yourusername/odds-edge/internal/pipeline"
	"github.com/yourusername/odds-edge/internal/repository"
)

// RequestBuilder builds the feed request for a sport key
type RequestBuilder interface {
	RequestFor(sportKey string) datasource.Request
}

// OddsService handles the load, price and compare workflow
type OddsService struct {
	fetcher  datasource.Fetcher
	store    cache.Store
	repo     repository.QuoteRepository
	requests RequestBuilder
	cfg      pipeline.Config
	logger   *logrus.Entry
	plog     *logger.PipelineLogger
	metrics  *IngestionMetrics
	now      func() time.Time

	mu     sync.RWMutex
	latest map[string]*Report
}

// NewOddsService creates a new odds service. repo may be nil when line history is disabled.
func NewOddsService(
	fetcher datasource.Fetcher,
	store cache.Store,
	repo repository.QuoteRepository,
	requests RequestBuilder,
	cfg pipeline.Config,
	log *logrus.Logger,
) *OddsService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &OddsService{
		fetcher:  fetcher,
		store:    store,
		repo:     repo,
		requests: requests,
		cfg:      cfg,
		logger:   log.WithField("component", "odds_service"),
		plog:     logger.NewPipelineLogger(log),
		metrics:  NewIngestionMetrics(),
		now:      time.Now,
		latest:   make(map[string]*Report),
	}
}

// Load returns the snapshot for req: a fresh cache entry if there is one, otherwise a
// new fetch. When the fetch fails it falls back to stale cached data and then to an empty
// snapshot, flagging the result degraded. Only context cancellation is returned as an error.
func (s *OddsService) Load(ctx context.Context, req datasource.Request) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.Key(req.SportKey, req.Markets, req.Regions)
	entry := s.logger.WithFields(logrus.Fields{"sport_key": req.SportKey, "cache_key": key})

	cached, age, found, err := s.store.Get(ctx, key)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		entry.WithError(err).Warn("Cache lookup failed")
		found = false
	}

	var cachedEvents []datasource.Event
	if found {
		cachedEvents, err = datasource.DecodeEvents(cached.Events)
		if err != nil {
			entry.WithError(err).Warn("Discarding unreadable cached snapshot")
			found = false
		}
	}

	switch {
	case found && cache.IsFresh(age, s.cfg.FreshnessWindow):
		s.metrics.RecordCacheHit()
		metrics.RecordCacheLookup(metrics.CacheHit)
		entry.WithField("age", age.String()).Debug("Using cached odds")
		return &LoadResult{Snapshot: cached, Events: cachedEvents, Source: SourceCache, Age: age}, nil
	case found:
		s.metrics.RecordCacheStale()
		metrics.RecordCacheLookup(metrics.CacheStale)
	default:
		s.metrics.RecordCacheMiss()
		metrics.RecordCacheLookup(metrics.CacheMiss)
	}

	start := s.now()
	events, fetchErr := s.fetcher.FetchOdds(ctx, req)
	metrics.RecordFetch(s.fetcher.Name(), fetchErr, s.now().Sub(start).Seconds())
	s.metrics.RecordFetch(len(events), fetchErr)

	if fetchErr == nil {
		snap := &models.Snapshot{
			Key:       key,
			SportKey:  req.SportKey,
			Markets:   req.Markets,
			Regions:   req.Regions,
			FetchedAt: s.now(),
		}
		if raw, err := datasource.EncodeEvents(events); err != nil {
			entry.WithError(err).Warn("Failed to encode events for cache")
		} else {
			snap.Events = raw
			if err := s.store.Put(ctx, snap); err != nil {
				entry.WithError(err).Warn("Failed to cache odds snapshot")
			}
		}
		return &LoadResult{Snapshot: snap, Events: events, Source: SourceFetch}, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if found {
		entry.WithError(fetchErr).WithField("age", age.String()).Warn("Odds fetch failed, using stale cache")
		return &LoadResult{
			Snapshot: cached,
			Events:   cachedEvents,
			Source:   SourceStaleCache,
			Age:      age,
			Degraded: true,
			FetchErr: fetchErr,
		}, nil
	}

	entry.WithError(fetchErr).Error("Odds fetch failed and nothing is cached")
	return &LoadResult{
		Snapshot: &models.Snapshot{Key: key, SportKey: req.SportKey, Markets: req.Markets, Regions: req.Regions},
		Source:   SourceNone,
		Degraded: true,
		FetchErr: fetchErr,
	}, nil
}

// Run loads odds for req, prices them, compares bookmakers and stores the report as the
// latest for the sport. Errors are returned for context cancellation and invalid
// pipeline configuration only.
func (s *OddsService) Run(ctx context.Context, req datasource.Request) (*Report, error) {
	start := s.now()

	loaded, err := s.Load(ctx, req)
	if err != nil {
		return nil, err
	}

	observedAt := loaded.Snapshot.FetchedAt
	if observedAt.IsZero() {
		observedAt = start
	}

	quotes, issues := datasource.Flatten(loaded.Events, req.Markets, observedAt)
	for _, issue := range issues {
		s.logger.WithFields(logrus.Fields{
			"event_id":   issue.EventID,
			"bookmaker":  issue.Bookmaker,
			"market_key": issue.MarketKey,
			"outcome_id": issue.OutcomeID,
			"reason":     issue.Reason,
		}).Warn("Skipped feed row")
	}

	result, err := pipeline.Compute(quotes, s.cfg)
	if err != nil {
		return nil, err
	}

	// Only fetched snapshots are new observations. Cached ones were stored when fetched.
	if s.repo != nil && loaded.Source == SourceFetch && len(quotes) > 0 {
		if err := s.repo.InsertBatch(ctx, result.RunID, quotes); err != nil {
			s.logger.WithError(err).WithField("quotes", len(quotes)).Warn("Failed to store line history")
		}
	}

	comparisons := comparator.Analyze(quotes)

	report := &Report{
		RunID:       result.RunID,
		SportKey:    req.SportKey,
		GeneratedAt: start,
		Source:      loaded.Source,
		Degraded:    loaded.Degraded,
		SnapshotAge: loaded.Age,
		Events:      len(loaded.Events),
		Issues:      issues,
		Result:      result,
		Comparisons: comparisons,
	}
	if report.Issues == nil {
		report.Issues = []datasource.FlattenIssue{}
	}
	if loaded.FetchErr != nil {
		report.FetchError = loaded.FetchErr.Error()
	}

	duration := s.now().Sub(start)
	s.logRun(report, duration)
	s.metrics.RecordRun(len(quotes), len(issues), len(result.Skips), duration)

	s.mu.Lock()
	s.latest[req.SportKey] = report
	s.mu.Unlock()

	return report, nil
}

// RunSport runs the configured request for sportKey
func (s *OddsService) RunSport(ctx context.Context, sportKey string) (*Report, error) {
	if s.requests == nil {
		return nil, fmt.Errorf("no request builder configured")
	}
	return s.Run(ctx, s.requests.RequestFor(sportKey))
}

func (s *OddsService) logRun(report *Report, duration time.Duration) {
	result := report.Result
	runID := result.RunID.String()
	bets := result.Bets()
	arbs := report.Arbitrages()

	skipReasons := make([]string, 0, len(result.Skips))
	for _, sk := range result.Skips {
		s.plog.LogSkip(runID, sk.MarketID, sk.OutcomeID, sk.Bookmaker, sk.Reason)
		skipReasons = append(skipReasons, sk.Reason)
	}
	for _, rec := range bets {
		s.plog.LogDecision(runID, rec.MarketID, rec.OutcomeID, rec.Bookmaker,
			rec.Price, rec.DevigProb, rec.EV, rec.EVAdj, rec.KellyFraction, rec.RecommendedStake.StringFixed(2))
	}
	for _, arb := range arbs {
		s.plog.LogArbitrage(arb.MarketID, *arb.ArbitrageMargin, len(arb.Outcomes))
	}
	s.plog.LogRun(runID, report.SportKey, result.QuotesIn, len(result.Records), len(bets), len(result.Skips), duration)

	metrics.RecordRun(report.SportKey, result.QuotesIn, len(bets), len(arbs), skipReasons, duration.Seconds())
	metrics.UpdateSnapshotAge(report.SportKey, report.SnapshotAge.Seconds())
}

// Latest returns the most recent report for a sport
func (s *OddsService) Latest(sportKey string) (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.latest[sportKey]
	return r, ok
}

// Sports returns the sport keys that have a report, sorted
func (s *OddsService) Sports() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sports := make([]string, 0, len(s.latest))
	for k := range s.latest {
		sports = append(sports, k)
	}
	sort.Strings(sports)
	return sports
}

// Metrics returns the service's cumulative ingestion statistics
func (s *OddsService) Metrics() IngestionStats {
	return s.metrics.Stats()
}

// Config returns the pipeline configuration used for runs
func (s *OddsService) Config() pipeline.Config {
	return s.cfg
}
