package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/bls"
	"github.com/Veraticus/ai-cpi-outlook/internal/catalog"
	"github.com/Veraticus/ai-cpi-outlook/internal/cli"
	"github.com/Veraticus/ai-cpi-outlook/internal/config"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
)

func fetchCmd() *cobra.Command {
	var (
		force    bool
		quiet    bool
		showRuns bool
		level    int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download CPI series from the BLS into the local cache",
		Long: `Download the index series of every category from the BLS public API and
cache them locally. Series fetched within bls.cache_ttl are served from the cache
unless --force is given.

The all-items 12-month rate computed from the cache can replace
projection.current_rate in any command with --live-rate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := initStorage(cmd.Context(), cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if showRuns {
				return writeFetchRuns(cmd.Context(), out, store)
			}

			ds, err := catalog.Load(cfg.Data, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to load datasets: %w", err)
			}
			ids := seriesIDs(ds.Tree.All())

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx, cancel := handler.HandleInterrupts(cmd.Context(), "Fetched series are cached; run 'outlook fetch' again to resume.")
			defer cancel()

			var opts []bls.Option
			if !quiet {
				bar := newFetchBar(cmd.ErrOrStderr())
				opts = append(opts, bls.WithProgress(func(done, total int) {
					bar.ChangeMax(total)
					_ = bar.Set(done)
				}))
			}
			client, err := bls.NewClient(cfg.BLS, slog.Default(), opts...)
			if err != nil {
				return err
			}
			fetcher := bls.NewCachedFetcher(client, store, cfg.BLS, slog.Default())

			run, err := fetcher.Refresh(ctx, ids, force)
			if err != nil {
				if run == nil || handler.WasInterrupted() || errors.Is(err, context.Canceled) {
					return fmt.Errorf("fetch failed: %w", err)
				}
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("Some series could not be fetched: %v", err)))
			}

			obs, err := fetcher.Cached(ctx, ids)
			if err != nil {
				return err
			}
			rates := bls.Rates(obs)

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d series: %d fetched (%d observations), %d from cache",
				run.Series, run.Series-run.FromCache, run.Observations, run.FromCache)))

			if rate, ok := rates[bls.AllItemsSeries]; ok {
				fmt.Fprintf(out, "All items 12-month rate  %s (configured %s)\n",
					cli.FormatPercent(rate, 2), cli.FormatPercent(cfg.Projection.CurrentRate, 2))
				fmt.Fprintln(out, cli.SubtleStyle.Render("Use --live-rate to project from this rate."))
			}

			writeSeriesRates(out, ds.Tree.ByLevel(model.Level(level)), rates)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "refetch every series, ignoring the cache TTL")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	cmd.Flags().BoolVar(&showRuns, "runs", false, "list recent fetch runs instead of fetching")
	cmd.Flags().IntVar(&level, "level", 0, "hierarchy level whose rates are listed")
	return cmd
}

// seriesIDs returns the distinct series of nodes, with all items first.
func seriesIDs(nodes []model.CategoryNode) []string {
	ids := []string{bls.AllItemsSeries}
	for _, n := range nodes {
		if n.SeriesID != "" && !slices.Contains(ids, n.SeriesID) {
			ids = append(ids, n.SeriesID)
		}
	}
	return ids
}

func newFetchBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Fetching BLS series...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}

func writeSeriesRates(out io.Writer, nodes []model.CategoryNode, rates map[string]float64) {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rate := cli.SubtleStyle.Render("n/a")
		if r, ok := rates[n.SeriesID]; ok {
			rate = cli.FormatPercent(r, 2)
		}
		rows = append(rows, []string{n.Name, n.SeriesID, rate})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, cli.RenderTable([]string{"Category", "Series", "12-month"}, rows, 2))
	}
}

func writeFetchRuns(ctx context.Context, out io.Writer, store service.Storage) error {
	runs, err := store.GetFetchRuns(ctx, 10)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No fetch runs recorded yet"))
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := cli.SuccessStyle.Render("ok")
		if r.Error != "" {
			status = cli.ErrorStyle.Render(r.Error)
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.Series),
			fmt.Sprintf("%d", r.FromCache),
			fmt.Sprintf("%d", r.Observations),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			status,
		})
	}
	fmt.Fprintln(out, cli.RenderTable([]string{"Started", "Series", "Cached", "Observations", "Took", "Status"}, rows, 1, 2, 3, 4))
	return nil
}
