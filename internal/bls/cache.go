package bls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
)

// CachedFetcher serves observations from storage and only goes upstream for
// series whose cached copy is missing or older than the TTL.
type CachedFetcher struct {
	upstream  service.SeriesFetcher
	store     service.Storage
	logger    *slog.Logger
	now       func() time.Time
	ttl       time.Duration
	startYear int
	endYear   int
}

// NewCachedFetcher wraps upstream with a storage-backed cache. Queries are
// limited to the configured year range.
func NewCachedFetcher(upstream service.SeriesFetcher, store service.Storage, cfg Config, logger *slog.Logger) *CachedFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedFetcher{
		upstream:  upstream,
		store:     store,
		logger:    logger,
		now:       time.Now,
		ttl:       cfg.CacheTTL,
		startYear: cfg.StartYear,
		endYear:   cfg.EndYear,
	}
}

// Fetch returns cached observations for seriesIDs, refreshing stale series first.
func (f *CachedFetcher) Fetch(ctx context.Context, seriesIDs []string) ([]model.Observation, error) {
	if _, err := f.Refresh(ctx, seriesIDs, false); err != nil {
		// Partial refreshes still leave usable cached data.
		f.logger.Warn("Refresh incomplete, serving cached observations", "error", err)
	}
	return f.Cached(ctx, seriesIDs)
}

// Cached returns whatever the cache holds for seriesIDs without going upstream.
func (f *CachedFetcher) Cached(ctx context.Context, seriesIDs []string) ([]model.Observation, error) {
	obs, err := f.store.GetObservations(ctx, service.ObservationFilter{
		SeriesIDs:   dedupe(seriesIDs),
		StartYear:   f.startYear,
		EndYear:     f.endYear,
		MonthlyOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cached observations: %w", err)
	}
	return obs, nil
}

// Refresh fetches stale or missing series (every series when force is set),
// stores what arrives and records the run. The returned run is saved even when
// the upstream fetch fails.
func (f *CachedFetcher) Refresh(ctx context.Context, seriesIDs []string, force bool) (*model.FetchRun, error) {
	ids := dedupe(seriesIDs)
	run := &model.FetchRun{StartedAt: f.now().UTC(), Series: len(ids)}

	stale := ids
	if !force {
		var err error
		stale, err = f.stale(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	run.FromCache = len(ids) - len(stale)

	var fetchErr error
	if len(stale) > 0 {
		f.logger.Info("Fetching series from BLS", "stale", len(stale), "cached", run.FromCache)
		var obs []model.Observation
		obs, fetchErr = f.upstream.Fetch(ctx, stale)
		if len(obs) > 0 {
			if err := f.store.SaveObservations(ctx, obs); err != nil {
				return nil, fmt.Errorf("failed to cache observations: %w", err)
			}
		}
		run.Observations = len(obs)
		if fetchErr == nil && len(obs) == 0 {
			fetchErr = fmt.Errorf("%w: upstream returned nothing for %d series", common.ErrNoObservations, len(stale))
		}
	}

	run.FinishedAt = f.now().UTC()
	if fetchErr != nil {
		run.Error = fetchErr.Error()
	}
	if err := f.store.SaveFetchRun(ctx, run); err != nil {
		f.logger.Warn("Failed to record fetch run", "error", err)
	}

	return run, fetchErr
}

func (f *CachedFetcher) stale(ctx context.Context, ids []string) ([]string, error) {
	now := f.now()
	var out []string
	for _, id := range ids {
		last, err := f.store.LastFetched(ctx, id)
		switch {
		case errors.Is(err, common.ErrNotFound):
			out = append(out, id)
		case err != nil:
			return nil, fmt.Errorf("failed to check cache for %s: %w", id, err)
		case now.Sub(last) > f.ttl:
			out = append(out, id)
		}
	}
	return out, nil
}
