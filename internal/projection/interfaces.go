package projection

import "github.com/Veraticus/ai-cpi-outlook/internal/model"

// Categories is the read-only view of the category tree the engine needs.
type Categories interface {
	Get(id string) (model.CategoryNode, bool)
	Roots() []model.CategoryNode
	Leaves() []model.CategoryNode
	LeafDescendants(id string) []model.CategoryNode
}

// Modifiers is the read-only composite-key modifier lookup.
type Modifiers interface {
	Lookup(componentID string, scenario model.Scenario, horizon model.Horizon) (model.ImpactModifier, bool)
}
