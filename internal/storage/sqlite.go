// Package storage provides the data persistence layer: a SQLite cache of
// fetched CPI observations and a log of fetch runs.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance. ":memory:" opens a
// private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) SaveObservations(ctx context.Context, observations []model.Observation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateObservations(observations); err != nil {
		return err
	}
	return t.storage.saveObservationsTx(ctx, t.tx, observations)
}

func (t *sqliteTransaction) GetObservations(ctx context.Context, filter service.ObservationFilter) ([]model.Observation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return t.storage.getObservationsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetLatestObservation(ctx context.Context, seriesID string) (*model.Observation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(seriesID, "seriesID"); err != nil {
		return nil, err
	}
	return t.storage.getLatestObservationTx(ctx, t.tx, seriesID)
}

func (t *sqliteTransaction) LastFetched(ctx context.Context, seriesID string) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}
	if err := validateString(seriesID, "seriesID"); err != nil {
		return time.Time{}, err
	}
	return t.storage.lastFetchedTx(ctx, t.tx, seriesID)
}

func (t *sqliteTransaction) DeleteObservations(ctx context.Context, seriesID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(seriesID, "seriesID"); err != nil {
		return err
	}
	return t.storage.deleteObservationsTx(ctx, t.tx, seriesID)
}

func (t *sqliteTransaction) SaveFetchRun(ctx context.Context, run *model.FetchRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFetchRun(run); err != nil {
		return err
	}
	return t.storage.saveFetchRunTx(ctx, t.tx, run)
}

func (t *sqliteTransaction) GetFetchRuns(ctx context.Context, limit int) ([]model.FetchRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getFetchRunsTx(ctx, t.tx, limit)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
