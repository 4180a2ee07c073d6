package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/bls"
	"github.com/Veraticus/ai-cpi-outlook/internal/catalog"
	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/config"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/projection"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
	"github.com/Veraticus/ai-cpi-outlook/internal/storage"
)

const (
	defaultScenario = model.ScenarioModerate
	defaultHorizon  = model.Horizon10Y
)

// session is everything a projection command needs.
type session struct {
	cfg      config.Config
	dataset  *catalog.Dataset
	engine   *projection.Engine
	scenario model.Scenario
	horizon  model.Horizon
}

// loadSession reads configuration, loads the datasets and builds the engine
// for the scenario and horizon selected on the command line.
func loadSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	scenario, horizon, err := selection(cmd)
	if err != nil {
		return nil, err
	}

	ds, err := catalog.Load(cfg.Data, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}

	if live, _ := cmd.Flags().GetBool("live-rate"); live {
		rate, err := cachedAllItemsRate(cmd.Context(), cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("Using live all-items rate", "rate", rate, "configured", cfg.Projection.CurrentRate)
		cfg.Projection.CurrentRate = rate
	}

	cfg.Projection.History = ds.History
	engine, err := projection.New(ds.Tree, ds.Modifiers, cfg.Projection)
	if err != nil {
		return nil, common.NewUserError("invalid projection settings", err)
	}

	return &session{
		cfg:      cfg,
		dataset:  ds,
		engine:   engine,
		scenario: scenario,
		horizon:  horizon,
	}, nil
}

// selection parses the global --scenario and --horizon flags.
func selection(cmd *cobra.Command) (model.Scenario, model.Horizon, error) {
	s, _ := cmd.Flags().GetString("scenario")
	h, _ := cmd.Flags().GetString("horizon")
	if s == "" {
		s = string(defaultScenario)
	}
	if h == "" {
		h = string(defaultHorizon)
	}

	scenario, err := model.ParseScenario(s)
	if err != nil {
		return "", "", common.NewUserError("invalid --scenario", err)
	}
	horizon, err := model.ParseHorizon(h)
	if err != nil {
		return "", "", common.NewUserError("invalid --horizon", err)
	}
	return scenario, horizon, nil
}

// name returns the display name of a category, falling back to its id.
func (s *session) name(id string) string {
	if n, ok := s.dataset.Tree.Get(id); ok {
		return n.Name
	}
	return id
}

// scenarioName returns the display name of a scenario.
func (s *session) scenarioName(id model.Scenario) string {
	if info, ok := s.dataset.Scenario(id); ok && info.Name != "" {
		return info.Name
	}
	return string(id)
}

// headline describes the current selection, e.g. "Moderate · 10 Years".
func (s *session) headline() string {
	return fmt.Sprintf("%s · %s", s.scenarioName(s.scenario), s.horizon.Label())
}

// initStorage opens the observation cache and runs migrations.
func initStorage(ctx context.Context, path string) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// cachedAllItemsRate computes the all-items 12-month rate from the cache
// without going upstream.
func cachedAllItemsRate(ctx context.Context, cfg config.Config) (float64, error) {
	store, err := initStorage(ctx, cfg.Storage.Path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()

	fetcher := bls.NewCachedFetcher(nil, store, cfg.BLS, slog.Default())
	obs, err := fetcher.Cached(ctx, []string{bls.AllItemsSeries})
	if err != nil {
		return 0, err
	}
	rate, ok := bls.CalculateInflationRate(obs)
	if !ok {
		return 0, common.NewUserError("no cached all-items data, run 'outlook fetch' first", common.ErrNoObservations)
	}
	return rate, nil
}
