package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// SaveFetchRun records a fetch run and sets its ID.
func (s *SQLiteStorage) SaveFetchRun(ctx context.Context, run *model.FetchRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFetchRun(run); err != nil {
		return err
	}
	return s.saveFetchRunTx(ctx, s.db, run)
}

func (s *SQLiteStorage) saveFetchRunTx(ctx context.Context, q queryable, run *model.FetchRun) error {
	var finished sql.NullTime
	if !run.FinishedAt.IsZero() {
		finished = sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO fetch_runs (started_at, finished_at, series_count, observation_count, cached_count, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.StartedAt.UTC(), finished, run.Series, run.Observations, run.FromCache, run.Error)
	if err != nil {
		return fmt.Errorf("failed to save fetch run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get fetch run id: %w", err)
	}
	run.ID = id
	return nil
}

// GetFetchRuns returns the most recent fetch runs, newest first. A limit of
// zero or less returns every run.
func (s *SQLiteStorage) GetFetchRuns(ctx context.Context, limit int) ([]model.FetchRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getFetchRunsTx(ctx, s.db, limit)
}

func (s *SQLiteStorage) getFetchRunsTx(ctx context.Context, q queryable, limit int) ([]model.FetchRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, started_at, finished_at, series_count, observation_count, cached_count, error
		FROM fetch_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.FetchRun
	for rows.Next() {
		var (
			run      model.FetchRun
			finished sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.StartedAt, &finished, &run.Series, &run.Observations, &run.FromCache, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan fetch run: %w", err)
		}
		if finished.Valid {
			run.FinishedAt = finished.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
