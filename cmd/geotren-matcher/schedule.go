package main

import (
	"context"
	"fmt"

	"github.com/theoremus-urban-solutions/geotren-matcher/schedule"
)

// loadStore reads the itinerary at location through the configured gob
// cache. An empty location yields a nil store.
func loadStore(ctx context.Context, location string) (*schedule.Store, error) {
	if location == "" {
		return nil, nil
	}

	src := schedule.NewSource(nil, schedule.S3Options{
		Region:       cfg.S3.Region,
		Endpoint:     cfg.S3.Endpoint,
		UsePathStyle: cfg.S3.UsePathStyle,
	})
	cachePath := cfg.Schedule.CachePath
	store, status, err := schedule.LoadCached(ctx, src, location, cachePath)
	if status.CacheErr != nil {
		logger.Warn().Err(status.CacheErr).Str("cache", cachePath).Msg("schedule cache unusable")
	}
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if status.FetchErr != nil {
		logger.Warn().Err(status.FetchErr).Str("source", location).Msg("schedule source unreachable, using cached copy")
	}
	logger.Info().
		Str("source", location).
		Stringer("cache", status.Outcome).
		Int("runs", store.Len()).
		Msg("schedule loaded")
	return store, nil
}
