package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

const sampleSourceName = "sample"

// SampleFetcher serves events from a bundled JSON file, for demos and offline runs
type SampleFetcher struct {
	path string
}

// NewSampleFetcher creates a fetcher reading the Odds API shaped JSON file at path
func NewSampleFetcher(path string) *SampleFetcher {
	return &SampleFetcher{path: path}
}

// Name returns the data source name
func (f *SampleFetcher) Name() string {
	return sampleSourceName
}

// FetchOdds returns the sample events for the requested sport
func (f *SampleFetcher) FetchOdds(ctx context.Context, req Request) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, NewDataSourceError(sampleSourceName, ErrCodeNotFound, fmt.Sprintf("cannot read %s", f.path), err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, NewDataSourceError(sampleSourceName, ErrCodeInvalidData, "failed to parse sample file", err)
	}

	if req.SportKey == "" {
		return events, nil
	}
	filtered := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.SportKey == "" || ev.SportKey == req.SportKey {
			filtered = append(filtered, ev)
		}
	}
	return filtered, nil
}
