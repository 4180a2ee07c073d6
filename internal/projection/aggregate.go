package projection

import (
	"fmt"
	"math"
	"sort"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// rebalanceTolerance is how far adjusted weights may drift from 100 before rescaling.
const rebalanceTolerance = 0.01

// AggregateComponentImpact returns the scaled impact and narrative of any node.
// Leaves report their own modifier. Internal nodes report the original-weight
// mean of leaf impacts and the plain sum of leaf weight shifts; their narrative
// comes from a direct modifier on the node when one exists, and is otherwise
// generated with the union of leaf citations.
func (e *Engine) AggregateComponentImpact(id string, scenario model.Scenario, horizon model.Horizon) model.ComponentImpact {
	node, ok := e.tree.Get(id)
	if !ok {
		return model.ComponentImpact{ComponentID: id, Confidence: model.ConfidenceMedium, Citations: []string{}}
	}

	if node.IsLeaf() {
		impact, shift, mod, found := e.scaled(id, scenario, horizon)
		out := model.ComponentImpact{
			ComponentID:   id,
			Confidence:    model.ConfidenceMedium,
			Citations:     []string{},
			AIImpactPp:    impact,
			WeightShiftPp: shift,
			LeafCount:     1,
			Direct:        found,
		}
		if found {
			out.Confidence = mod.Confidence
			out.Explanation = mod.Explanation
			out.Citations = append(out.Citations, mod.Citations...)
		}
		return out
	}

	leaves := e.tree.LeafDescendants(id)
	var totalWeight, weightedImpact, totalShift float64
	citations := []string{}
	seen := make(map[string]bool)

	for _, leaf := range leaves {
		impact, shift, mod, found := e.scaled(leaf.ID, scenario, horizon)
		weightedImpact += impact * leaf.Weight
		totalWeight += leaf.Weight
		totalShift += shift
		if !found {
			continue
		}
		for _, c := range mod.Citations {
			if !seen[c] {
				seen[c] = true
				citations = append(citations, c)
			}
		}
	}

	out := model.ComponentImpact{
		ComponentID:   id,
		Confidence:    model.ConfidenceMedium,
		Explanation:   fmt.Sprintf("Aggregate of %d sub-components weighted by CPI share.", len(leaves)),
		Citations:     citations,
		WeightShiftPp: totalShift,
		LeafCount:     len(leaves),
	}
	if totalWeight > 0 {
		out.AIImpactPp = weightedImpact / totalWeight
	}

	if direct, ok := e.lookup(id, scenario, horizon); ok {
		out.Confidence = direct.Confidence
		out.Explanation = direct.Explanation
		out.Citations = append([]string{}, direct.Citations...)
		out.Direct = true
	}
	return out
}

// CalculateAggregateProjection projects every leaf of the forest and combines
// them into the all-items rate. Original weights are rescaled to sum to 100,
// then adjusted weights are rescaled to 100 if they drift by more than 0.01.
func (e *Engine) CalculateAggregateProjection(scenario model.Scenario, horizon model.Horizon) model.AggregateProjection {
	leaves := e.tree.Leaves()
	results := make([]model.ProjectionResult, len(leaves))
	for i, leaf := range leaves {
		results[i] = e.ProjectComponent(leaf.ID, scenario, horizon)
	}

	var totalOrig float64
	for _, r := range results {
		totalOrig += r.OriginalWeight
	}
	origScale := 1.0
	if totalOrig > 0 {
		origScale = 100 / totalOrig
	}
	for i := range results {
		r := &results[i]
		r.AdjustedWeight = (r.OriginalWeight + r.WeightShiftPp) * origScale
		r.OriginalWeight *= origScale
	}

	var totalAdj float64
	for _, r := range results {
		totalAdj += r.AdjustedWeight
	}
	if totalAdj > 0 && math.Abs(totalAdj-100) > rebalanceTolerance {
		adjScale := 100 / totalAdj
		for i := range results {
			results[i].AdjustedWeight *= adjScale
		}
	}

	var baselineCPI, projectedCPI float64
	for _, r := range results {
		baselineCPI += r.BaselineRate * (r.OriginalWeight / 100)
		projectedCPI += r.ProjectedRate * (r.AdjustedWeight / 100)
	}

	return model.AggregateProjection{
		ComponentResults: results,
		BaselineCPI:      baselineCPI,
		ProjectedCPI:     projectedCPI,
		TotalAIImpactPp:  projectedCPI - baselineCPI,
	}
}

// ProjectMajorGroup rolls up one subtree's leaves using their own weights, with
// no basket-wide rebalancing. Unknown ids and zero-weight subtrees are neutral.
func (e *Engine) ProjectMajorGroup(id string, scenario model.Scenario, horizon model.Horizon) model.ProjectionResult {
	if _, ok := e.tree.Get(id); !ok {
		return e.neutral(id)
	}

	leaves := e.tree.LeafDescendants(id)
	results := make([]model.ProjectionResult, len(leaves))
	var totalOrig, totalAdj float64
	for i, leaf := range leaves {
		results[i] = e.ProjectComponent(leaf.ID, scenario, horizon)
		totalOrig += results[i].OriginalWeight
		totalAdj += results[i].AdjustedWeight
	}

	if totalOrig == 0 {
		return e.neutral(id)
	}

	var baselineRate, projectedRate float64
	for _, r := range results {
		baselineRate += r.BaselineRate * (r.OriginalWeight / totalOrig)
		if totalAdj != 0 {
			projectedRate += r.ProjectedRate * (r.AdjustedWeight / totalAdj)
		} else {
			projectedRate += r.ProjectedRate * (r.OriginalWeight / totalOrig)
		}
	}

	return model.ProjectionResult{
		ComponentID:    id,
		BaselineRate:   baselineRate,
		ProjectedRate:  projectedRate,
		AIImpactPp:     projectedRate - baselineRate,
		OriginalWeight: totalOrig,
		AdjustedWeight: totalAdj,
		WeightShiftPp:  totalAdj - totalOrig,
	}
}

// TopImpactedComponents returns the n leaves with the largest |impact| x weight
// from the whole-basket projection. Ties keep dataset order.
func (e *Engine) TopImpactedComponents(scenario model.Scenario, horizon model.Horizon, n int) []model.ProjectionResult {
	if n <= 0 {
		return []model.ProjectionResult{}
	}
	results := e.CalculateAggregateProjection(scenario, horizon).ComponentResults
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].WeightedImpact() > results[j].WeightedImpact()
	})
	if n > len(results) {
		n = len(results)
	}
	return results[:n]
}
