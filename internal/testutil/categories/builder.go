// Package categories provides test infrastructure for building synthetic
// category trees and modifier tables. It offers a fluent API so tests can
// describe small hierarchies inline instead of depending on the shipped dataset.
//
// Example usage:
//
//	fx := categories.NewBuilder(t).
//		WithRoot("goods", 100).
//		WithLeaf("goods", "bread", 60).
//		WithLeaf("goods", "fuel", 40).
//		WithModifier("bread", model.ScenarioModerate, model.Horizon10Y, 0.2, 0).
//		Build()
package categories

import (
	"testing"

	"github.com/Veraticus/ai-cpi-outlook/internal/catalog"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// Builder provides a fluent interface for constructing test fixtures.
type Builder interface {
	// WithRoot adds a parentless category.
	WithRoot(id string, weight float64) Builder

	// WithNode adds an internal or leaf category under parent.
	WithNode(parent, id string, weight float64) Builder

	// WithLeaf is WithNode for readability when the node stays childless.
	WithLeaf(parent, id string, weight float64) Builder

	// WithModifier adds a modifier with medium confidence and no narrative.
	WithModifier(id string, scenario model.Scenario, horizon model.Horizon, impact, weightShift float64) Builder

	// WithNarrative adds a fully specified modifier.
	WithNarrative(m model.ImpactModifier) Builder

	// WithFixture adds categories and modifiers from a predefined fixture.
	WithFixture(fixture Fixture) Builder

	// Build validates the fixture and returns the tree and modifier table.
	// Validation failures fail the test.
	Build() Fixture
}

// Fixture is a built tree and modifier table.
type Fixture struct {
	Tree      *catalog.Tree
	Modifiers *catalog.ModifierTable
	nodes     []model.CategoryNode
	mods      []model.ImpactModifier
}

// Nodes returns the raw nodes, useful for feeding NewTree variations.
func (f Fixture) Nodes() []model.CategoryNode {
	return append([]model.CategoryNode(nil), f.nodes...)
}

type builder struct {
	t     *testing.T
	index map[string]int
	nodes []model.CategoryNode
	mods  []model.ImpactModifier
}

// NewBuilder creates a new fixture builder for the given test.
func NewBuilder(t *testing.T) Builder {
	t.Helper()
	return &builder{t: t, index: make(map[string]int)}
}

func (b *builder) WithRoot(id string, weight float64) Builder {
	b.add(model.CategoryNode{ID: id, Name: id, Weight: weight, Level: model.LevelMajorGroup})
	return b
}

func (b *builder) WithNode(parent, id string, weight float64) Builder {
	b.t.Helper()
	pi, ok := b.index[parent]
	if !ok {
		b.t.Fatalf("parent %q must be added before child %q", parent, id)
	}
	level := b.nodes[pi].Level + 1
	b.nodes[pi].Children = append(b.nodes[pi].Children, id)
	b.add(model.CategoryNode{ID: id, Name: id, ParentID: parent, Weight: weight, Level: level})
	return b
}

func (b *builder) WithLeaf(parent, id string, weight float64) Builder {
	return b.WithNode(parent, id, weight)
}

func (b *builder) WithModifier(id string, scenario model.Scenario, horizon model.Horizon, impact, weightShift float64) Builder {
	b.mods = append(b.mods, model.ImpactModifier{
		ComponentID:       id,
		Scenario:          scenario,
		Horizon:           horizon,
		Confidence:        model.ConfidenceMedium,
		InflationImpactPp: impact,
		WeightShiftPp:     weightShift,
	})
	return b
}

func (b *builder) WithNarrative(m model.ImpactModifier) Builder {
	b.mods = append(b.mods, m)
	return b
}

func (b *builder) WithFixture(fixture Fixture) Builder {
	for _, n := range fixture.nodes {
		b.add(n)
	}
	b.mods = append(b.mods, fixture.mods...)
	return b
}

func (b *builder) Build() Fixture {
	b.t.Helper()

	nodes := make([]model.CategoryNode, len(b.nodes))
	copy(nodes, b.nodes)

	tree, err := catalog.NewTree(nodes)
	if err != nil {
		b.t.Fatalf("failed to build test tree: %v", err)
	}
	mods, err := catalog.NewModifierTable(b.mods)
	if err != nil {
		b.t.Fatalf("failed to build test modifiers: %v", err)
	}

	return Fixture{Tree: tree, Modifiers: mods, nodes: nodes, mods: append([]model.ImpactModifier(nil), b.mods...)}
}

func (b *builder) add(n model.CategoryNode) {
	b.t.Helper()
	if _, exists := b.index[n.ID]; exists {
		b.t.Fatalf("category %q added twice", n.ID)
	}
	b.index[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}
