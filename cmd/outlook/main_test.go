package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ai-cpi-outlook/internal/common"
)

// execute runs the root command with args against an isolated home directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OUTLOOK_STORAGE_PATH", filepath.Join(home, "outlook.db"))
	t.Setenv("BLS_API_KEY", "")
	return home
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "outlook dev\n", out)
}

func TestSelectionErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "scenario", args: []string{"aggregate", "--scenario", "utopia"}, want: "invalid --scenario"},
		{name: "horizon", args: []string{"aggregate", "--horizon", "5yr"}, want: "invalid --horizon"},
		{name: "impact scale", args: []string{"aggregate", "--impact-scale=-1"}, want: "invalid projection settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			var userErr *common.UserError
			require.True(t, errors.As(err, &userErr))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProjectionCommands(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "aggregate",
			args: []string{"aggregate"},
			want: []string{"All items CPI", "Moderate · 10 Years", "Baseline", "Projected", "AI impact"},
		},
		{
			name: "aggregate components",
			args: []string{"aggregate", "-c", "--scenario", "transformative", "--horizon", "3yr"},
			want: []string{"Transformative · 3 Years", "Cereals & bakery products", "Adjusted"},
		},
		{
			name: "project leaf",
			args: []string{"project", "cereals"},
			want: []string{"Cereals & bakery products", "item stratum", "Baseline rate", "Weight shift"},
		},
		{
			name: "project group",
			args: []string{"project", "food_bev"},
			want: []string{"Food & Beverages", "major group"},
		},
		{
			name: "groups",
			args: []string{"groups"},
			want: []string{"Major groups", "Housing", "Contribution to all-items change", "Rate effect", "Total"},
		},
		{
			name: "top",
			args: []string{"top", "-n", "3"},
			want: []string{"Top 3 impacted categories", "Weighted"},
		},
		{
			name: "impact",
			args: []string{"impact", "it_hardware_software"},
			want: []string{
				"Information technology, hardware & services",
				"Education & communication ›",
				"high",
				"Brynjolfsson et al. 2023",
				"conservative", "transformative", "10 Years",
			},
		},
		{
			name: "trajectory",
			args: []string{"trajectory", "--horizon", "1yr"},
			want: []string{"All items trajectory", "2019", "Actual", "2025", "2026"},
		},
		{
			name: "trajectory all scenarios",
			args: []string{"trajectory", "--all", "--no-history", "--component", "it_hardware_software"},
			want: []string{"Information technology, hardware & services trajectory", "Conservative", "Moderate", "Transformative"},
		},
		{
			name: "heatmap",
			args: []string{"heatmap"},
			want: []string{"major group", "moderate 10yr", "Apparel"},
		},
		{
			name: "tree",
			args: []string{"tree", "--depth", "0"},
			want: []string{"Food & Beverages", "Other goods & services"},
		},
		{
			name: "scenarios",
			args: []string{"scenarios"},
			want: []string{"Baseline (baseline)", "Transformative (transformative)", "All items at 10 Years"},
		},
		{
			name: "citations",
			args: []string{"citations"},
			want: []string{"brynjolfsson_2023", "Brynjolfsson et al. 2023"},
		},
		{
			name: "citation detail",
			args: []string{"citations", "brynjolfsson_2023"},
			want: []string{"Erik Brynjolfsson"},
		},
		{
			name: "export dry run",
			args: []string{"export", "--dry-run"},
			want: []string{"Dry run", "Summary", "Components", "Major Groups", "Heatmap"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestTrajectory_Baseline(t *testing.T) {
	isolate(t)
	out, err := execute(t, "trajectory", "--scenario", "baseline", "--no-history", "--horizon", "1yr")
	require.NoError(t, err)
	assert.Contains(t, out, "0.00pp")
	assert.NotContains(t, out, "+0.")
	assert.NotContains(t, out, "-0.0")

	// Every row reports the baseline rate as the projected rate.
	for _, line := range strings.Split(out, "\n") {
		var cells []string
		for _, c := range strings.Split(line, "│") {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) < 3 || !strings.HasSuffix(cells[1], "%") {
			continue
		}
		assert.Equal(t, cells[1], cells[2], line)
	}

	_, err = execute(t, "trajectory", "--baseline-shape", "conservative")
	require.Error(t, err)
}

func TestNotFound(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{
		{"project", "nope"},
		{"impact", "nope"},
		{"trajectory", "--component", "nope"},
		{"citations", "nope"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrNotFound)
		})
	}
}

func TestHeatmap_InvalidLevel(t *testing.T) {
	isolate(t)
	_, err := execute(t, "heatmap", "--level", "5")
	require.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestConfigFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "outlook.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projection:\n  impact_scale: 0\n"), 0o600))

	// With no impact scale the projection matches the baseline.
	out, err := execute(t, "--config", path, "aggregate", "--scenario", "transformative")
	require.NoError(t, err)
	assert.Contains(t, out, "AI impact  0.00pp")
}

// fakeBLS answers every request with two years of monthly data growing 3% a year.
func fakeBLS(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var req struct {
			SeriesID  []string `json:"seriesid"`
			StartYear string   `json:"startyear"`
			EndYear   string   `json:"endyear"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type point struct {
			Year   string `json:"year"`
			Period string `json:"period"`
			Value  string `json:"value"`
		}
		type series struct {
			SeriesID string  `json:"seriesID"`
			Data     []point `json:"data"`
		}
		var out []series
		for _, id := range req.SeriesID {
			s := series{SeriesID: id}
			for m := 12; m >= 1; m-- {
				s.Data = append(s.Data,
					point{Year: req.EndYear, Period: fmt.Sprintf("M%02d", m), Value: "103.0"},
					point{Year: req.StartYear, Period: fmt.Sprintf("M%02d", m), Value: "100.0"},
				)
			}
			out = append(out, s)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "REQUEST_SUCCEEDED",
			"Results": map[string]any{"series": out},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestFetch(t *testing.T) {
	isolate(t)
	srv, requests := fakeBLS(t)
	t.Setenv("OUTLOOK_BLS_API_URL", srv.URL)

	out, err := execute(t, "fetch", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "All items 12-month rate  3.00%")
	assert.Contains(t, out, "from cache")
	assert.Contains(t, out, "Food & Beverages")
	first := requests.Load()
	assert.Positive(t, first)

	// Fresh series are served from the cache.
	out, err = execute(t, "fetch", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, ": 0 fetched (0 observations)")
	assert.Equal(t, first, requests.Load())

	out, err = execute(t, "fetch", "--runs")
	require.NoError(t, err)
	assert.Contains(t, out, "Observations")
	assert.Contains(t, out, "ok")

	_, err = execute(t, "aggregate", "--live-rate")
	require.NoError(t, err)
}

func TestLiveRate_EmptyCache(t *testing.T) {
	isolate(t)
	_, err := execute(t, "aggregate", "--live-rate")
	require.ErrorIs(t, err, common.ErrNoObservations)
}

func TestFetch_NoRuns(t *testing.T) {
	isolate(t)
	out, err := execute(t, "fetch", "--runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No fetch runs recorded yet")
}

func TestExport_NotConfigured(t *testing.T) {
	isolate(t)
	for _, key := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"} {
		t.Setenv(key, "")
	}
	_, err := execute(t, "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outlook auth sheets")

	_, err = execute(t, "auth", "sheets")
	require.ErrorIs(t, err, common.ErrMissingConfig)
}
