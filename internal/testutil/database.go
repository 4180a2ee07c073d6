// Package testutil provides shared test helpers: an in-memory observation
// cache and, under categories, synthetic category fixtures.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
	"github.com/Veraticus/ai-cpi-outlook/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, service.Storage) error
	Observations   []model.Observation
	SkipMigrations bool
}

// SetupTestDB creates a new migrated in-memory database seeded with observations.
// Cleanup is registered with t.
func SetupTestDB(t *testing.T, observations ...model.Observation) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Observations: observations})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	ctx := context.Background()

	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Observations) > 0 {
		if err := store.SaveObservations(ctx, opts.Observations); err != nil {
			t.Fatalf("failed to seed observations: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}

// MonthlySeries builds consecutive monthly observations starting at January of
// startYear, one per value.
func MonthlySeries(seriesID string, startYear int, fetchedAt time.Time, values ...float64) []model.Observation {
	out := make([]model.Observation, len(values))
	for i, v := range values {
		out[i] = model.Observation{
			FetchedAt: fetchedAt,
			SeriesID:  seriesID,
			Period:    fmt.Sprintf("M%02d", i%12+1),
			Year:      startYear + i/12,
			Value:     v,
		}
	}
	return out
}

// MustObservations reads back every observation of a series or fails the test.
func (db *TestDB) MustObservations(seriesID string) []model.Observation {
	db.t.Helper()
	obs, err := db.Storage.GetObservations(context.Background(), service.ObservationFilter{SeriesIDs: []string{seriesID}})
	if err != nil {
		db.t.Fatalf("failed to read observations for %s: %v", seriesID, err)
	}
	return obs
}
