package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidYearRange   = errors.New("start year must not be after end year")
	ErrInvalidObservation = errors.New("invalid observation")
	ErrInvalidFetchRun    = errors.New("invalid fetch run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateObservations validates a slice of observations.
func validateObservations(observations []model.Observation) error {
	if observations == nil {
		return fmt.Errorf("%w: observations", ErrNilParameter)
	}
	if len(observations) == 0 {
		return fmt.Errorf("%w: observations", ErrEmptySlice)
	}

	for i := range observations {
		if err := validateObservation(&observations[i]); err != nil {
			return fmt.Errorf("observation at index %d: %w", i, err)
		}
	}
	return nil
}

// validateObservation validates a single observation.
func validateObservation(o *model.Observation) error {
	if o == nil {
		return fmt.Errorf("%w: observation", ErrNilParameter)
	}
	if strings.TrimSpace(o.SeriesID) == "" {
		return fmt.Errorf("%w: missing series ID", ErrInvalidObservation)
	}
	if o.Year <= 0 {
		return fmt.Errorf("%w: missing year", ErrInvalidObservation)
	}
	if strings.TrimSpace(o.Period) == "" {
		return fmt.Errorf("%w: missing period", ErrInvalidObservation)
	}
	return nil
}

// validateFilter validates an observation query.
func validateFilter(f service.ObservationFilter) error {
	if f.StartYear > 0 && f.EndYear > 0 && f.StartYear > f.EndYear {
		return fmt.Errorf("%w: %d > %d", ErrInvalidYearRange, f.StartYear, f.EndYear)
	}
	return nil
}

// validateFetchRun validates a fetch run record.
func validateFetchRun(run *model.FetchRun) error {
	if run == nil {
		return fmt.Errorf("%w: fetch run", ErrNilParameter)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidFetchRun)
	}
	if !run.FinishedAt.IsZero() && run.FinishedAt.Before(run.StartedAt) {
		return fmt.Errorf("%w: finished before it started", ErrInvalidFetchRun)
	}
	return nil
}
