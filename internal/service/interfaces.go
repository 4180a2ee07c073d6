// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// ObservationFilter narrows observation queries.
type ObservationFilter struct {
	SeriesIDs []string
	StartYear int
	EndYear   int
	// MonthlyOnly drops annual average (M13) periods.
	MonthlyOnly bool
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Observation operations
	SaveObservations(ctx context.Context, observations []model.Observation) error
	GetObservations(ctx context.Context, filter ObservationFilter) ([]model.Observation, error)
	GetLatestObservation(ctx context.Context, seriesID string) (*model.Observation, error)
	LastFetched(ctx context.Context, seriesID string) (time.Time, error)
	DeleteObservations(ctx context.Context, seriesID string) error

	// Fetch run history
	SaveFetchRun(ctx context.Context, run *model.FetchRun) error
	GetFetchRuns(ctx context.Context, limit int) ([]model.FetchRun, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// SeriesFetcher retrieves observations for CPI series from an upstream source.
type SeriesFetcher interface {
	Fetch(ctx context.Context, seriesIDs []string) ([]model.Observation, error)
}

// ReportWriter publishes a projection report.
type ReportWriter interface {
	Write(ctx context.Context, report *ReportSummary) error
}

// ReportSummary is everything an exported projection report contains.
type ReportSummary struct {
	GeneratedAt time.Time
	Scenario    model.Scenario
	Horizon     model.Horizon
	Calibration string
	Scenarios   []ScenarioTotal
	Components  []ComponentLine
	Groups      []model.Contribution
	// HeatmapColumns labels each HeatmapRow cell, e.g. "moderate/10yr".
	HeatmapColumns []string
	Heatmap        []HeatmapRow
}

// ScenarioTotal is the headline aggregate for one scenario.
type ScenarioTotal struct {
	Scenario        model.Scenario
	Name            string
	BaselineCPI     float64
	ProjectedCPI    float64
	TotalAIImpactPp float64
}

// ComponentLine is one category row of the report.
type ComponentLine struct {
	Node   model.CategoryNode
	Result model.ProjectionResult
	Impact model.ComponentImpact
}

// HeatmapRow holds one major group's impacts across the heatmap columns.
type HeatmapRow struct {
	ID      string
	Name    string
	Impacts []float64
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
