package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/odds-edge/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// OddsAPISourceType fetches live odds from The Odds API
	OddsAPISourceType SourceType = "the_odds_api"
	// SampleSourceType serves a bundled JSON file
	SampleSourceType SourceType = "sample"
)

// Factory creates Fetcher implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.OddsAPIConfig
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.OddsAPIConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// SourceType returns the source the configuration selects
func (f *Factory) SourceType() SourceType {
	if f.config.UseSample {
		return SampleSourceType
	}
	return OddsAPISourceType
}

// NewFetcher creates the configured Fetcher
func (f *Factory) NewFetcher() (Fetcher, error) {
	return f.Create(f.SourceType())
}

// Create creates a new fetcher of the given type
func (f *Factory) Create(sourceType SourceType) (Fetcher, error) {
	switch sourceType {
	case OddsAPISourceType:
		if f.config.APIKey == "" {
			return nil, fmt.Errorf("odds API key is required")
		}
		httpCfg := DefaultHTTPClientConfig()
		httpCfg.Timeout = f.config.RequestTimeout()
		httpCfg.MaxRetries = f.config.MaxRetries
		httpCfg.RateLimit = f.config.RateLimit
		return NewOddsAPIClient(NewRateLimitedHTTPClient(httpCfg, f.logger), f.config.BaseURL, f.config.APIKey, f.logger), nil

	case SampleSourceType:
		if f.config.SampleDataPath == "" {
			return nil, fmt.Errorf("sample data path is required")
		}
		return NewSampleFetcher(f.config.SampleDataPath), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// RequestFor builds the odds request for one configured sport
func (f *Factory) RequestFor(sportKey string) Request {
	return Request{
		SportKey:   sportKey,
		Markets:    f.config.Markets,
		Regions:    f.config.Regions,
		OddsFormat: f.config.OddsFormat,
		DateFormat: "iso",
	}
}
