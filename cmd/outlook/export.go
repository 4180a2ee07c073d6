package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/cli"
	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/service"
	"github.com/Veraticus/ai-cpi-outlook/internal/sheets"
)

func exportCmd() *cobra.Command {
	var (
		spreadsheetID string
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the projection report to Google Sheets",
		Long: `Write a projection report for the selected scenario and horizon to Google Sheets.

The spreadsheet gets Summary, Components, Major Groups and Heatmap tabs. An
existing spreadsheet (sheets.spreadsheet_id or --spreadsheet) is updated in place
and missing tabs are added. Authenticate first with 'outlook auth sheets' or
configure a service account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			report := buildReport(s, time.Now())
			out := cmd.OutOrStdout()

			if dryRun {
				data := sheets.PrepareTabData(report)
				rows := make([][]string, 0, len(sheets.Tabs()))
				for _, tab := range sheets.Tabs() {
					rows = append(rows, []string{tab, fmt.Sprintf("%d", len(data.Values(tab)))})
				}
				fmt.Fprintln(out, cli.FormatInfo("Dry run, nothing written"))
				fmt.Fprintln(out, cli.RenderTable([]string{"Tab", "Rows"}, rows, 1))
				return nil
			}

			sheetsCfg := s.cfg.Sheets
			if spreadsheetID != "" {
				sheetsCfg.SpreadsheetID = spreadsheetID
			}
			if err := sheetsCfg.Validate(); err != nil {
				return common.NewUserError("Google Sheets is not configured, run 'outlook auth sheets'", err)
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx, cancel := handler.HandleInterrupts(cmd.Context(), "The spreadsheet may be partially updated; run 'outlook export' again.")
			defer cancel()

			writer, err := sheets.NewWriter(ctx, sheetsCfg, slog.Default())
			if err != nil {
				return err
			}
			if err := exportReport(ctx, writer, report); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %s report with %d categories", s.headline(), len(report.Components))))
			return nil
		},
	}

	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "spreadsheet id to update (default: sheets.spreadsheet_id, or a new spreadsheet)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the report and show its size without writing")
	return cmd
}

func exportReport(ctx context.Context, w service.ReportWriter, report *service.ReportSummary) error {
	if err := w.Write(ctx, report); err != nil {
		return fmt.Errorf("failed to export report: %w", err)
	}
	return nil
}

// buildReport collects everything the exported report shows for the
// session's scenario and horizon.
func buildReport(s *session, now time.Time) *service.ReportSummary {
	cfg := s.engine.Config()
	report := &service.ReportSummary{
		GeneratedAt: now,
		Scenario:    s.scenario,
		Horizon:     s.horizon,
		Calibration: fmt.Sprintf("current %.2f%%, target %.2f%%, reversion %.2f/yr, impact scale %.1f",
			cfg.CurrentRate, cfg.TargetRate, cfg.MeanReversionSpeed, cfg.ImpactScale),
		Groups: s.engine.MajorGroupContributions(s.scenario, s.horizon),
	}

	for _, sum := range s.engine.CompareScenarios(s.horizon, model.Scenarios()) {
		report.Scenarios = append(report.Scenarios, service.ScenarioTotal{
			Scenario:        sum.Scenario,
			Name:            s.scenarioName(sum.Scenario),
			BaselineCPI:     sum.BaselineCPI,
			ProjectedCPI:    sum.ProjectedCPI,
			TotalAIImpactPp: sum.TotalAIImpactPp,
		})
	}

	for _, node := range s.dataset.Tree.All() {
		result := s.engine.ProjectComponent(node.ID, s.scenario, s.horizon)
		if !node.IsLeaf() {
			result = s.engine.ProjectMajorGroup(node.ID, s.scenario, s.horizon)
		}
		report.Components = append(report.Components, service.ComponentLine{
			Node:   node,
			Result: result,
			Impact: s.engine.AggregateComponentImpact(node.ID, s.scenario, s.horizon),
		})
	}

	roots := s.dataset.Tree.Roots()
	ids := make([]string, len(roots))
	for i, r := range roots {
		ids[i] = r.ID
	}
	for _, sc := range model.AIScenarios() {
		for _, h := range model.Horizons() {
			report.HeatmapColumns = append(report.HeatmapColumns, fmt.Sprintf("%s/%s", sc, h))
		}
	}
	for _, row := range s.engine.ImpactGrid(ids, model.AIScenarios(), model.Horizons()) {
		impacts := make([]float64, len(row.Cells))
		for i, c := range row.Cells {
			impacts[i] = c.Impact.AIImpactPp
		}
		report.Heatmap = append(report.Heatmap, service.HeatmapRow{
			ID:      row.Category.ID,
			Name:    row.Category.Name,
			Impacts: impacts,
		})
	}

	return report
}
