package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const oddsAPISourceName = "the_odds_api"

// Quota is the request allowance reported by The Odds API response headers
type Quota struct {
	Remaining int
	Used      int
	Known     bool
}

// OddsAPIClient implements Fetcher for The Odds API v4
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Entry

	mu    sync.RWMutex
	quota Quota
}

// NewOddsAPIClient creates a new Odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *OddsAPIClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &OddsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		logger:     logger.WithField("component", "odds_api"),
	}
}

// Name returns the data source name
func (c *OddsAPIClient) Name() string {
	return oddsAPISourceName
}

// Quota returns the allowance reported by the most recent response
func (c *OddsAPIClient) Quota() Quota {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quota
}

// FetchOdds retrieves current odds for one sport
func (c *OddsAPIClient) FetchOdds(ctx context.Context, req Request) ([]Event, error) {
	if req.SportKey == "" {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeInvalidData, "sport key is required", nil)
	}

	endpoint := c.buildURL(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	c.recordQuota(resp.Header)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusTooManyRequests:
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case http.StatusNotFound:
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeNotFound, fmt.Sprintf("unknown sport %q", req.SportKey), nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, NewDataSourceError(oddsAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	c.logger.WithFields(logrus.Fields{
		"sport_key": req.SportKey,
		"markets":   strings.Join(req.Markets, ","),
		"events":    len(events),
	}).Debug("Fetched odds")

	return events, nil
}

func (c *OddsAPIClient) buildURL(req Request) string {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", valueOr(req.Regions, "us"))
	params.Set("markets", valueOr(strings.Join(req.Markets, ","), "h2h"))
	params.Set("oddsFormat", valueOr(req.OddsFormat, "decimal"))
	params.Set("dateFormat", valueOr(req.DateFormat, "iso"))

	return fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, url.PathEscape(req.SportKey), params.Encode())
}

func (c *OddsAPIClient) recordQuota(h http.Header) {
	remaining, errR := strconv.Atoi(h.Get("x-requests-remaining"))
	used, errU := strconv.Atoi(h.Get("x-requests-used"))
	if errR != nil || errU != nil {
		return
	}

	c.mu.Lock()
	c.quota = Quota{Remaining: remaining, Used: used, Known: true}
	c.mu.Unlock()

	if remaining < 50 {
		c.logger.WithField("remaining", remaining).Warn("Odds API quota running low")
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
