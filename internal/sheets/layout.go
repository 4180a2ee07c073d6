package sheets

import (
	"strings"

	"github.com/Veraticus/ai-cpi-outlook/internal/service"
)

// PrepareTabData lays a report out as sheet rows.
func PrepareTabData(report *service.ReportSummary) TabData {
	return TabData{
		Summary:    summaryValues(report),
		Components: componentValues(report),
		Groups:     groupValues(report),
		Heatmap:    heatmapValues(report),
	}
}

func summaryValues(report *service.ReportSummary) [][]any {
	values := make([][]any, 0, 8+len(report.Scenarios))
	values = append(values,
		[]any{"AI-Adjusted CPI Outlook", report.GeneratedAt.Format("Jan 2, 2006")},
		[]any{},
		[]any{"Scenario", string(report.Scenario)},
		[]any{"Horizon", report.Horizon.Label()},
		[]any{"Calibration", report.Calibration},
		[]any{},
		[]any{"Scenario", "Name", "Baseline CPI", "Projected CPI", "AI Impact (pp)"},
	)

	for _, s := range report.Scenarios {
		values = append(values, []any{
			string(s.Scenario),
			s.Name,
			s.BaselineCPI,
			s.ProjectedCPI,
			s.TotalAIImpactPp,
		})
	}

	return values
}

func componentValues(report *service.ReportSummary) [][]any {
	values := make([][]any, 0, 1+len(report.Components))
	values = append(values, []any{
		"ID",
		"Category",
		"Level",
		"Series",
		"Original Weight",
		"Adjusted Weight",
		"Weight Shift (pp)",
		"Baseline Rate",
		"Projected Rate",
		"AI Impact (pp)",
		"Confidence",
		"Citations",
		"Explanation",
	})

	for _, c := range report.Components {
		values = append(values, []any{
			c.Node.ID,
			c.Node.Name,
			c.Node.Level.String(),
			c.Node.SeriesID,
			c.Result.OriginalWeight,
			c.Result.AdjustedWeight,
			c.Result.WeightShiftPp,
			c.Result.BaselineRate,
			c.Result.ProjectedRate,
			c.Impact.AIImpactPp,
			string(c.Impact.Confidence),
			strings.Join(c.Impact.Citations, ", "),
			c.Impact.Explanation,
		})
	}

	return values
}

func groupValues(report *service.ReportSummary) [][]any {
	values := make([][]any, 0, 2+len(report.Groups))
	values = append(values, []any{
		"Group",
		"Weight",
		"Weight Shift (pp)",
		"Rate Effect (pp)",
		"Weight Effect (pp)",
		"Total (pp)",
	})

	var weight, rate, shift, total float64
	for _, g := range report.Groups {
		values = append(values, []any{
			g.Name,
			g.Weight,
			g.WeightShiftPp,
			g.RateEffect,
			g.WeightEffect,
			g.Total,
		})
		weight += g.Weight
		rate += g.RateEffect
		shift += g.WeightEffect
		total += g.Total
	}

	if len(report.Groups) > 0 {
		values = append(values, []any{"Total", weight, "", rate, shift, total})
	}

	return values
}

func heatmapValues(report *service.ReportSummary) [][]any {
	header := make([]any, 0, 1+len(report.HeatmapColumns))
	header = append(header, "Category")
	for _, col := range report.HeatmapColumns {
		header = append(header, col)
	}

	values := make([][]any, 0, 1+len(report.Heatmap))
	values = append(values, header)
	for _, row := range report.Heatmap {
		r := make([]any, 0, 1+len(row.Impacts))
		r = append(r, row.Name)
		for _, v := range row.Impacts {
			r = append(r, v)
		}
		values = append(values, r)
	}

	return values
}
