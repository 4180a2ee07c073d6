package categories

import (
	"testing"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// Fixture ids used across tests.
const (
	Goods    = "goods"
	Services = "services"
	Bread    = "bread"
	Fuel     = "fuel"
	Care     = "care"
	Advice   = "advice"
	Tax      = "tax"
	Legal    = "legal"
)

// TwoLeafParent is a single parent with 60/40 leaves carrying +1.0pp and -1.0pp
// scaled impacts under moderate/10yr with a scale of 1.
func TwoLeafParent(t *testing.T) Fixture {
	t.Helper()
	return NewBuilder(t).
		WithRoot(Goods, 100).
		WithLeaf(Goods, Bread, 60).
		WithLeaf(Goods, Fuel, 40).
		WithModifier(Bread, model.ScenarioModerate, model.Horizon10Y, 1.0, 0).
		WithModifier(Fuel, model.ScenarioModerate, model.Horizon10Y, -1.0, 0).
		Build()
}

// SmallBasket is a two-root basket whose leaf weights sum to 98:
//
//	goods (50)       services (48)
//	├─ bread (30)    ├─ care (20)
//	└─ fuel (20)     └─ advice (28)
//	                    ├─ tax (8)
//	                    └─ legal (20)
//
// Leaves: bread, fuel, care, tax, legal.
func SmallBasket(t *testing.T) Fixture {
	t.Helper()
	return NewBuilder(t).
		WithRoot(Goods, 50).
		WithLeaf(Goods, Bread, 30).
		WithLeaf(Goods, Fuel, 20).
		WithRoot(Services, 48).
		WithLeaf(Services, Care, 20).
		WithNode(Services, Advice, 28).
		WithLeaf(Advice, Tax, 8).
		WithLeaf(Advice, Legal, 20).
		WithNarrative(model.ImpactModifier{
			ComponentID:       Bread,
			Scenario:          model.ScenarioModerate,
			Horizon:           model.Horizon10Y,
			Confidence:        model.ConfidenceHigh,
			Explanation:       "bread gets cheaper",
			Citations:         []string{"c1", "c2"},
			InflationImpactPp: -0.2,
			WeightShiftPp:     -0.4,
		}).
		WithNarrative(model.ImpactModifier{
			ComponentID:       Fuel,
			Scenario:          model.ScenarioModerate,
			Horizon:           model.Horizon10Y,
			Confidence:        model.ConfidenceLow,
			Explanation:       "fuel gets dearer",
			Citations:         []string{"c2", "c3"},
			InflationImpactPp: 0.1,
			WeightShiftPp:     0.2,
		}).
		WithNarrative(model.ImpactModifier{
			ComponentID:       Tax,
			Scenario:          model.ScenarioModerate,
			Horizon:           model.Horizon10Y,
			Confidence:        model.ConfidenceHigh,
			Citations:         []string{"c4"},
			InflationImpactPp: -0.5,
			WeightShiftPp:     -0.2,
		}).
		WithNarrative(model.ImpactModifier{
			ComponentID: Advice,
			Scenario:    model.ScenarioModerate,
			Horizon:     model.Horizon10Y,
			Confidence:  model.ConfidenceLow,
			Explanation: "advice narrative",
			Citations:   []string{"c9"},
		}).
		WithModifier(Tax, model.ScenarioConservative, model.Horizon1Y, -0.1, 0).
		Build()
}
