// Package bls fetches CPI index observations from the Bureau of Labor
// Statistics public API and derives 12-month inflation rates from them.
package bls

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
)

// DefaultAPIURL is the BLS v2 timeseries endpoint.
const DefaultAPIURL = "https://api.bls.gov/publicAPI/v2/timeseries/data/"

// MaxBatchSize is the most series one unregistered request may name.
const MaxBatchSize = 25

const statusSucceeded = "REQUEST_SUCCEEDED"

// Config controls how the client talks to the API.
type Config struct {
	APIURL      string               `mapstructure:"api_url"`
	APIKey      string               `mapstructure:"api_key"`
	BatchSize   int                  `mapstructure:"batch_size"`
	Concurrency int                  `mapstructure:"concurrency"`
	StartYear   int                  `mapstructure:"start_year"`
	EndYear     int                  `mapstructure:"end_year"`
	Timeout     time.Duration        `mapstructure:"timeout"`
	CacheTTL    time.Duration        `mapstructure:"cache_ttl"`
	Retry       service.RetryOptions `mapstructure:"-"`
}

// DefaultConfig requests the last two calendar years, enough for a 12-month change.
func DefaultConfig() Config {
	year := time.Now().Year()
	return Config{
		APIURL:      DefaultAPIURL,
		BatchSize:   MaxBatchSize,
		Concurrency: 4,
		StartYear:   year - 1,
		EndYear:     year,
		Timeout:     30 * time.Second,
		CacheTTL:    24 * time.Hour,
		Retry: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2,
		},
	}
}

// Validate checks the request parameters.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%w: bls api_url is required", common.ErrMissingConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: bls batch_size must be positive", common.ErrInvalidConfig)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: bls concurrency must be positive", common.ErrInvalidConfig)
	}
	if c.StartYear <= 0 || c.EndYear < c.StartYear {
		return fmt.Errorf("%w: bls year range %d-%d", common.ErrInvalidConfig, c.StartYear, c.EndYear)
	}
	return nil
}

// Client implements the SeriesFetcher interface for the BLS API.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	onBatch    func(done, total int)
	cfg        Config
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithProgress registers a callback invoked after each batch completes,
// successfully or not. Calls are serialised.
func WithProgress(fn func(done, total int)) Option {
	return func(c *Client) { c.onBatch = fn }
}

// NewClient creates a BLS client.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BatchCount is the number of requests Fetch makes for n series.
func (c *Client) BatchCount(n int) int {
	return (n + c.cfg.BatchSize - 1) / c.cfg.BatchSize
}

// Fetch retrieves observations for every series in batches, running up to
// Concurrency requests at once. A failed batch does not stop the others: the
// observations that did arrive are returned together with the joined batch errors.
func (c *Client) Fetch(ctx context.Context, seriesIDs []string) ([]model.Observation, error) {
	ids := dedupe(seriesIDs)
	if len(ids) == 0 {
		return nil, nil
	}

	batches := make([][]string, 0, c.BatchCount(len(ids)))
	for i := 0; i < len(ids); i += c.cfg.BatchSize {
		end := min(i+c.cfg.BatchSize, len(ids))
		batches = append(batches, ids[i:end])
	}

	var (
		mu   sync.Mutex
		out  []model.Observation
		errs []error
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for n, batch := range batches {
		g.Go(func() error {
			var obs []model.Observation
			err := common.WithRetry(gctx, func() error {
				var fetchErr error
				obs, fetchErr = c.fetchBatch(gctx, batch)
				return fetchErr
			}, c.cfg.Retry)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				c.logger.Warn("BLS batch failed", "batch", n+1, "series", len(batch), "error", err)
				errs = append(errs, fmt.Errorf("batch %d: %w", n+1, err))
			} else {
				out = append(out, obs...)
			}
			if c.onBatch != nil {
				c.onBatch(done, len(batches))
			}
			// Cancellation of the parent is the only reason to stop the group.
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, errors.Join(errs...)
}

type apiRequest struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey,omitempty"`
}

type apiResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []apiSeries `json:"series"`
	} `json:"Results"`
}

type apiSeries struct {
	SeriesID string    `json:"seriesID"`
	Data     []apiData `json:"data"`
}

type apiData struct {
	Year   string `json:"year"`
	Period string `json:"period"`
	Value  string `json:"value"`
}

func (c *Client) fetchBatch(ctx context.Context, seriesIDs []string) ([]model.Observation, error) {
	body, err := json.Marshal(apiRequest{
		SeriesID:        seriesIDs,
		StartYear:       strconv.Itoa(c.cfg.StartYear),
		EndYear:         strconv.Itoa(c.cfg.EndYear),
		RegistrationKey: c.cfg.APIKey,
	})
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, common.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Requesting BLS series", "series", len(seriesIDs), "start_year", c.cfg.StartYear, "end_year", c.cfg.EndYear)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: %w", common.ErrUpstream, err), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", common.ErrRateLimit, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, &common.RetryableError{Err: fmt.Errorf("%w: HTTP %d", common.ErrUpstream, resp.StatusCode), Retryable: true}
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, common.Permanent(fmt.Errorf("%w: HTTP %d: %s", common.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, common.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}

	if decoded.Status != statusSucceeded {
		msg := strings.Join(decoded.Message, "; ")
		if strings.Contains(strings.ToLower(msg), "threshold") {
			// Daily quota exhaustion does not recover within a retry window.
			return nil, common.Permanent(fmt.Errorf("%w: %s", common.ErrRateLimit, msg))
		}
		return nil, common.Permanent(fmt.Errorf("%w: %s: %s", common.ErrUpstreamRefused, decoded.Status, msg))
	}

	fetchedAt := time.Now().UTC()
	var out []model.Observation
	for _, s := range decoded.Results.Series {
		for _, d := range s.Data {
			obs, ok := parseData(s.SeriesID, d, fetchedAt)
			if !ok {
				c.logger.Debug("Skipping unparseable BLS datum", "series", s.SeriesID, "year", d.Year, "period", d.Period, "value", d.Value)
				continue
			}
			out = append(out, obs)
		}
	}
	return out, nil
}

// parseData converts one API datum. BLS marks unavailable values with "-".
func parseData(seriesID string, d apiData, fetchedAt time.Time) (model.Observation, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(d.Year))
	if err != nil {
		return model.Observation{}, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(d.Value), 64)
	if err != nil {
		return model.Observation{}, false
	}
	return model.Observation{
		FetchedAt: fetchedAt,
		SeriesID:  seriesID,
		Period:    d.Period,
		Year:      year,
		Value:     value,
	}, true
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
