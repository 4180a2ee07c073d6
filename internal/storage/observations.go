package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
)

// SaveObservations upserts observations keyed by series, year and period.
func (s *SQLiteStorage) SaveObservations(ctx context.Context, observations []model.Observation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateObservations(observations); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveObservationsTx(ctx, tx, observations); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveObservationsTx(ctx context.Context, tx *sql.Tx, observations []model.Observation) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (series_id, year, period, value, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(series_id, year, period) DO UPDATE SET
			value = excluded.value,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, o := range observations {
		fetchedAt := o.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = now
		}
		if _, err := stmt.ExecContext(ctx, o.SeriesID, o.Year, o.Period, o.Value, fetchedAt.UTC()); err != nil {
			return fmt.Errorf("failed to save observation %s %d %s: %w", o.SeriesID, o.Year, o.Period, err)
		}
	}
	return nil
}

// GetObservations returns observations matching the filter ordered by series,
// then chronologically.
func (s *SQLiteStorage) GetObservations(ctx context.Context, filter service.ObservationFilter) ([]model.Observation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.getObservationsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getObservationsTx(ctx context.Context, q queryable, filter service.ObservationFilter) ([]model.Observation, error) {
	var (
		where []string
		args  []any
	)
	if len(filter.SeriesIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.SeriesIDs)), ",")
		where = append(where, "series_id IN ("+placeholders+")")
		for _, id := range filter.SeriesIDs {
			args = append(args, id)
		}
	}
	if filter.StartYear > 0 {
		where = append(where, "year >= ?")
		args = append(args, filter.StartYear)
	}
	if filter.EndYear > 0 {
		where = append(where, "year <= ?")
		args = append(args, filter.EndYear)
	}
	if filter.MonthlyOnly {
		where = append(where, "period != 'M13'")
	}

	query := `SELECT series_id, year, period, value, fetched_at FROM observations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY series_id, year, period"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Observation
	for rows.Next() {
		var o model.Observation
		if err := rows.Scan(&o.SeriesID, &o.Year, &o.Period, &o.Value, &o.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetLatestObservation returns the most recent monthly observation of a series.
func (s *SQLiteStorage) GetLatestObservation(ctx context.Context, seriesID string) (*model.Observation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(seriesID, "seriesID"); err != nil {
		return nil, err
	}
	return s.getLatestObservationTx(ctx, s.db, seriesID)
}

func (s *SQLiteStorage) getLatestObservationTx(ctx context.Context, q queryable, seriesID string) (*model.Observation, error) {
	var o model.Observation
	err := q.QueryRowContext(ctx, `
		SELECT series_id, year, period, value, fetched_at
		FROM observations
		WHERE series_id = ? AND period != 'M13'
		ORDER BY year DESC, period DESC
		LIMIT 1
	`, seriesID).Scan(&o.SeriesID, &o.Year, &o.Period, &o.Value, &o.FetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: observations for %s", common.ErrNotFound, seriesID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest observation: %w", err)
	}
	return &o, nil
}

// LastFetched reports when a series was last refreshed, or common.ErrNotFound
// if it has never been cached.
func (s *SQLiteStorage) LastFetched(ctx context.Context, seriesID string) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}
	if err := validateString(seriesID, "seriesID"); err != nil {
		return time.Time{}, err
	}
	return s.lastFetchedTx(ctx, s.db, seriesID)
}

func (s *SQLiteStorage) lastFetchedTx(ctx context.Context, q queryable, seriesID string) (time.Time, error) {
	// MAX() loses the column type, so order and take the first row instead.
	var fetchedAt time.Time
	err := q.QueryRowContext(ctx, `
		SELECT fetched_at FROM observations
		WHERE series_id = ?
		ORDER BY fetched_at DESC
		LIMIT 1
	`, seriesID).Scan(&fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: %s has not been fetched", common.ErrNotFound, seriesID)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get fetch time: %w", err)
	}
	return fetchedAt, nil
}

// DeleteObservations drops every cached observation of a series.
func (s *SQLiteStorage) DeleteObservations(ctx context.Context, seriesID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(seriesID, "seriesID"); err != nil {
		return err
	}
	return s.deleteObservationsTx(ctx, s.db, seriesID)
}

func (s *SQLiteStorage) deleteObservationsTx(ctx context.Context, q queryable, seriesID string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM observations WHERE series_id = ?`, seriesID); err != nil {
		return fmt.Errorf("failed to delete observations: %w", err)
	}
	return nil
}
