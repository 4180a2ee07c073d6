package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				RefreshToken:  "test-token",
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
		},
		{
			name: "oauth with token file",
			config: Config{
				ClientID:     "test-client",
				ClientSecret: "test-secret",
				TokenFile:    "/tmp/token.json",
				BatchSize:    100,
			},
		},
		{
			name: "valid service account config",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      3,
				RetryDelay:         time.Second,
			},
		},
		{
			name: "missing auth",
			config: Config{
				BatchSize:     100,
				RetryAttempts: 3,
				RetryDelay:    time.Second,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "partial oauth credentials",
			config: Config{
				ClientID:     "test-client",
				RefreshToken: "test-token",
				BatchSize:    100,
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: Config{
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name: "invalid batch size",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          0,
			},
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
		{
			name: "negative retry attempts",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryAttempts:      -1,
			},
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
		{
			name: "negative retry delay",
			config: Config{
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
				RetryDelay:         -time.Second,
			},
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.True(t, config.EnableFormatting)
	assert.Equal(t, DefaultSpreadsheetName, config.SpreadsheetName)
	assert.Equal(t, "America/New_York", config.TimeZone)
	assert.Equal(t, 1000, config.BatchSize)
	assert.Equal(t, 3, config.RetryAttempts)
	assert.Equal(t, time.Second, config.RetryDelay)
}

func testReport() *service.ReportSummary {
	return &service.ReportSummary{
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Scenario:    model.ScenarioModerate,
		Horizon:     model.Horizon10Y,
		Calibration: "impact scale 5.0",
		Scenarios: []service.ScenarioTotal{
			{Scenario: model.ScenarioBaseline, Name: "Baseline", BaselineCPI: 2.05, ProjectedCPI: 2.05},
			{Scenario: model.ScenarioModerate, Name: "Moderate", BaselineCPI: 2.05, ProjectedCPI: 1.55, TotalAIImpactPp: -0.5},
		},
		Components: []service.ComponentLine{
			{
				Node:   model.CategoryNode{ID: "bread", Name: "Bread", SeriesID: "CUUR0000SEFA", Level: model.LevelItemStratum, Weight: 60},
				Result: model.ProjectionResult{ComponentID: "bread", BaselineRate: 2.05, ProjectedRate: 1.05, AIImpactPp: -1, OriginalWeight: 60, AdjustedWeight: 59, WeightShiftPp: -1},
				Impact: model.ComponentImpact{ComponentID: "bread", AIImpactPp: -1, Confidence: model.ConfidenceHigh, Explanation: "Automated bakeries", Citations: []string{"c1", "c2"}},
			},
		},
		Groups: []model.Contribution{
			{ComponentID: "food", Name: "Food", RateEffect: -0.6, WeightEffect: -0.1, Total: -0.7, Weight: 60, WeightShiftPp: -1},
			{ComponentID: "energy", Name: "Energy", RateEffect: 0.2, WeightEffect: 0, Total: 0.2, Weight: 40},
		},
		HeatmapColumns: []string{"moderate/1yr", "moderate/10yr"},
		Heatmap: []service.HeatmapRow{
			{ID: "food", Name: "Food", Impacts: []float64{-0.1, -1}},
		},
	}
}

func TestPrepareTabData(t *testing.T) {
	data := PrepareTabData(testReport())

	t.Run("summary", func(t *testing.T) {
		require.Len(t, data.Summary, 9)
		assert.Equal(t, []any{"AI-Adjusted CPI Outlook", "Jun 1, 2025"}, data.Summary[0])
		assert.Equal(t, []any{"Horizon", "10 Years"}, data.Summary[3])
		assert.Equal(t, []any{"Calibration", "impact scale 5.0"}, data.Summary[4])
		assert.Equal(t, []any{"moderate", "Moderate", 2.05, 1.55, -0.5}, data.Summary[8])
	})

	t.Run("components", func(t *testing.T) {
		require.Len(t, data.Components, 2)
		assert.Len(t, data.Components[0], 13)
		row := data.Components[1]
		assert.Equal(t, "bread", row[0])
		assert.Equal(t, "item stratum", row[2])
		assert.Equal(t, 59.0, row[5])
		assert.Equal(t, "high", row[10])
		assert.Equal(t, "c1, c2", row[11])
	})

	t.Run("groups with total row", func(t *testing.T) {
		require.Len(t, data.Groups, 4)
		total := data.Groups[3]
		assert.Equal(t, "Total", total[0])
		assert.InDelta(t, 100.0, total[1], 1e-9)
		assert.InDelta(t, -0.4, total[3], 1e-9)
		assert.InDelta(t, -0.5, total[5], 1e-9)
	})

	t.Run("heatmap", func(t *testing.T) {
		require.Len(t, data.Heatmap, 2)
		assert.Equal(t, []any{"Category", "moderate/1yr", "moderate/10yr"}, data.Heatmap[0])
		assert.Equal(t, []any{"Food", -0.1, -1.0}, data.Heatmap[1])
	})

	t.Run("empty report", func(t *testing.T) {
		empty := PrepareTabData(&service.ReportSummary{})
		assert.Len(t, empty.Groups, 1)
		assert.Len(t, empty.Heatmap, 1)
		assert.Len(t, empty.Components, 1)
	})
}

func TestTabData_Values(t *testing.T) {
	data := PrepareTabData(testReport())
	for _, tab := range Tabs() {
		assert.NotEmpty(t, data.Values(tab), tab)
	}
	assert.Nil(t, data.Values("Nope"))
}

func TestA1(t *testing.T) {
	assert.Equal(t, "'Major Groups'!A1", a1(TabGroups, "A1"))
	assert.Equal(t, "'Bob''s'!A:Z", a1("Bob's", "A:Z"))
}

// fakeSheets is a minimal Sheets API server recording what the writer sends.
type fakeSheets struct {
	updates      map[string][][]any
	failUpdates  int
	calls        []string
	batchUpdates []sheets.BatchUpdateSpreadsheetRequest
	mu           sync.Mutex
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && path == "/v4/spreadsheets":
		var req sheets.Spreadsheet
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := sheets.Spreadsheet{SpreadsheetId: "new-sheet"}
		for i, s := range req.Sheets {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: s.Properties.Title, SheetId: int64(100 + i)}})
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodGet && path == "/v4/spreadsheets/existing":
		_ = json.NewEncoder(w).Encode(sheets.Spreadsheet{
			SpreadsheetId: "existing",
			Sheets: []*sheets.Sheet{
				{Properties: &sheets.SheetProperties{Title: TabSummary, SheetId: 0}},
				{Properties: &sheets.SheetProperties{Title: "Notes", SheetId: 5}},
			},
		})

	case r.Method == http.MethodGet:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))

	case strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.batchUpdates = append(f.batchUpdates, req)
		resp := sheets.BatchUpdateSpreadsheetResponse{}
		for i, q := range req.Requests {
			if q.AddSheet != nil {
				resp.Replies = append(resp.Replies, &sheets.Response{AddSheet: &sheets.AddSheetResponse{
					Properties: &sheets.SheetProperties{Title: q.AddSheet.Properties.Title, SheetId: int64(200 + i)},
				}})
			}
		}
		_ = json.NewEncoder(w).Encode(resp)

	case strings.HasSuffix(path, ":clear"):
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPut:
		if f.failUpdates > 0 {
			f.failUpdates--
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"try again"}}`))
			return
		}
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		f.updates[rng] = vr.Values
		_, _ = w.Write([]byte(`{}`))

	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newFakeWriter(t *testing.T, fake *fakeSheets, mutate func(*Config)) *Writer {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.ServiceAccountPath = "unused.json"
	cfg.RetryDelay = time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}
	return newWriterWithService(cfg, svc, nil)
}

func TestWriter_Write_NewSpreadsheet(t *testing.T) {
	fake := &fakeSheets{updates: make(map[string][][]any)}
	writer := newFakeWriter(t, fake, nil)

	require.NoError(t, writer.Write(context.Background(), testReport()))

	fake.mu.Lock()
	defer fake.mu.Unlock()

	assert.Equal(t, "POST /v4/spreadsheets", fake.calls[0])
	require.Len(t, fake.updates, 4)
	assert.Equal(t, "AI-Adjusted CPI Outlook", fake.updates["'Summary'!A1"][0][0])
	assert.Equal(t, "bread", fake.updates["'Components'!A1"][1][0])
	assert.Len(t, fake.updates["'Major Groups'!A1"], 4)

	// One formatting batch covering all four tabs.
	require.Len(t, fake.batchUpdates, 1)
	assert.Len(t, fake.batchUpdates[0].Requests, 12)
	assert.Equal(t, int64(100), fake.batchUpdates[0].Requests[0].RepeatCell.Range.SheetId)
}

func TestWriter_Write_ExistingSpreadsheetAddsTabs(t *testing.T) {
	fake := &fakeSheets{updates: make(map[string][][]any)}
	writer := newFakeWriter(t, fake, func(c *Config) {
		c.SpreadsheetID = "existing"
		c.EnableFormatting = false
	})

	require.NoError(t, writer.Write(context.Background(), testReport()))

	fake.mu.Lock()
	defer fake.mu.Unlock()

	assert.Equal(t, "GET /v4/spreadsheets/existing", fake.calls[0])
	require.Len(t, fake.batchUpdates, 1)
	var added []string
	for _, req := range fake.batchUpdates[0].Requests {
		require.NotNil(t, req.AddSheet)
		added = append(added, req.AddSheet.Properties.Title)
	}
	assert.Equal(t, []string{TabComponents, TabGroups, TabHeatmap}, added)
	assert.Len(t, fake.updates, 4)
}

func TestWriter_Write_Batches(t *testing.T) {
	fake := &fakeSheets{updates: make(map[string][][]any)}
	writer := newFakeWriter(t, fake, func(c *Config) {
		c.BatchSize = 4
		c.EnableFormatting = false
	})

	require.NoError(t, writer.Write(context.Background(), testReport()))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	// Summary has 9 rows: A1, A5 and A9.
	assert.Len(t, fake.updates["'Summary'!A1"], 4)
	assert.Len(t, fake.updates["'Summary'!A5"], 4)
	assert.Len(t, fake.updates["'Summary'!A9"], 1)
}

func TestWriter_Write_RetriesTransientFailures(t *testing.T) {
	fake := &fakeSheets{updates: make(map[string][][]any), failUpdates: 1}
	writer := newFakeWriter(t, fake, func(c *Config) { c.EnableFormatting = false })

	require.NoError(t, writer.Write(context.Background(), testReport()))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Len(t, fake.updates, 4)
}

func TestWriter_Write_Errors(t *testing.T) {
	t.Run("nil report", func(t *testing.T) {
		writer := newFakeWriter(t, &fakeSheets{updates: make(map[string][][]any)}, nil)
		assert.Error(t, writer.Write(context.Background(), nil))
	})

	t.Run("inaccessible spreadsheet", func(t *testing.T) {
		writer := newFakeWriter(t, &fakeSheets{updates: make(map[string][][]any)}, func(c *Config) {
			c.SpreadsheetID = "missing"
		})
		err := writer.Write(context.Background(), testReport())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to access spreadsheet missing")
	})

	t.Run("persistent write failure", func(t *testing.T) {
		fake := &fakeSheets{updates: make(map[string][][]any), failUpdates: 100}
		writer := newFakeWriter(t, fake, func(c *Config) { c.RetryAttempts = 2 })
		err := writer.Write(context.Background(), testReport())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write Summary")
	})
}

func TestNewWriter_InvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
