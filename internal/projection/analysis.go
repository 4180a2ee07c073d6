package projection

import (
	"sort"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// MajorGroupContributions splits each major group's effect on the all-items
// rate into the part from its own rate change and the part from its weight
// shift. Rows are sorted by total contribution, most deflationary first.
func (e *Engine) MajorGroupContributions(scenario model.Scenario, horizon model.Horizon) []model.Contribution {
	roots := e.tree.Roots()
	out := make([]model.Contribution, 0, len(roots))

	for _, g := range roots {
		p := e.ProjectMajorGroup(g.ID, scenario, horizon)
		rateEffect := p.AIImpactPp * (p.OriginalWeight / 100)
		total := (p.ProjectedRate*p.AdjustedWeight - p.BaselineRate*p.OriginalWeight) / 100
		out = append(out, model.Contribution{
			ComponentID:   g.ID,
			Name:          g.Name,
			RateEffect:    rateEffect,
			WeightEffect:  total - rateEffect,
			Total:         total,
			Weight:        p.OriginalWeight,
			WeightShiftPp: p.WeightShiftPp,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Total < out[j].Total })
	return out
}

// ImpactCell is one scenario/horizon entry of an impact grid row.
type ImpactCell struct {
	Scenario model.Scenario
	Horizon  model.Horizon
	Impact   model.ComponentImpact
}

// ImpactRow is one category of an impact grid.
type ImpactRow struct {
	Category model.CategoryNode
	Cells    []ImpactCell
}

// ImpactGrid evaluates AggregateComponentImpact for every category, scenario and
// horizon combination, scenarios outermost. Unknown ids are skipped.
func (e *Engine) ImpactGrid(ids []string, scenarios []model.Scenario, horizons []model.Horizon) []ImpactRow {
	rows := make([]ImpactRow, 0, len(ids))
	for _, id := range ids {
		node, ok := e.tree.Get(id)
		if !ok {
			continue
		}
		row := ImpactRow{Category: node, Cells: make([]ImpactCell, 0, len(scenarios)*len(horizons))}
		for _, s := range scenarios {
			for _, h := range horizons {
				row.Cells = append(row.Cells, ImpactCell{Scenario: s, Horizon: h, Impact: e.AggregateComponentImpact(id, s, h)})
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ScenarioSummary is the headline aggregate of one scenario.
type ScenarioSummary struct {
	Scenario        model.Scenario
	BaselineCPI     float64
	ProjectedCPI    float64
	TotalAIImpactPp float64
}

// CompareScenarios computes the aggregate projection of each scenario at one horizon.
func (e *Engine) CompareScenarios(horizon model.Horizon, scenarios []model.Scenario) []ScenarioSummary {
	out := make([]ScenarioSummary, 0, len(scenarios))
	for _, s := range scenarios {
		agg := e.CalculateAggregateProjection(s, horizon)
		out = append(out, ScenarioSummary{
			Scenario:        s,
			BaselineCPI:     agg.BaselineCPI,
			ProjectedCPI:    agg.ProjectedCPI,
			TotalAIImpactPp: agg.TotalAIImpactPp,
		})
	}
	return out
}
