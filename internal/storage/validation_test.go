package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{
			name:      "valid string",
			str:       "test",
			paramName: "param",
			wantErr:   false,
		},
		{
			name:      "empty string",
			str:       "",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			str:       "   ",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "string with spaces",
			str:       "  test  ",
			paramName: "param",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}

func TestValidateObservations(t *testing.T) {
	valid := model.Observation{SeriesID: "CUUR0000SA0", Year: 2024, Period: "M01", Value: 310.3}

	tests := []struct {
		wantErr error
		name    string
		obs     []model.Observation
	}{
		{name: "valid", obs: []model.Observation{valid}},
		{name: "nil", obs: nil, wantErr: ErrNilParameter},
		{name: "empty", obs: []model.Observation{}, wantErr: ErrEmptySlice},
		{
			name:    "blank series",
			obs:     []model.Observation{valid, {SeriesID: "  ", Year: 2024, Period: "M02"}},
			wantErr: ErrInvalidObservation,
		},
		{
			name:    "missing year",
			obs:     []model.Observation{{SeriesID: "CUUR0000SA0", Period: "M02"}},
			wantErr: ErrInvalidObservation,
		},
		{
			name:    "missing period",
			obs:     []model.Observation{{SeriesID: "CUUR0000SA0", Year: 2024}},
			wantErr: ErrInvalidObservation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateObservations(tt.obs)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validateObservations() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateObservations() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  service.ObservationFilter
		wantErr bool
	}{
		{name: "empty", filter: service.ObservationFilter{}},
		{name: "open start", filter: service.ObservationFilter{EndYear: 2020}},
		{name: "open end", filter: service.ObservationFilter{StartYear: 2020}},
		{name: "single year", filter: service.ObservationFilter{StartYear: 2020, EndYear: 2020}},
		{name: "inverted", filter: service.ObservationFilter{StartYear: 2021, EndYear: 2020}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFilter(tt.filter)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFetchRun(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		run     *model.FetchRun
		name    string
		wantErr bool
	}{
		{name: "finished", run: &model.FetchRun{StartedAt: start, FinishedAt: start.Add(time.Minute)}},
		{name: "unfinished", run: &model.FetchRun{StartedAt: start}},
		{name: "nil", run: nil, wantErr: true},
		{name: "no start", run: &model.FetchRun{}, wantErr: true},
		{name: "backwards", run: &model.FetchRun{StartedAt: start, FinishedAt: start.Add(-time.Minute)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFetchRun(tt.run)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFetchRun() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
