package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/testutil/categories"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"Category", "Impact"},
		[][]string{{"Bread", "-0.20pp"}, {"Fuel", "+0.10pp"}},
		1,
	)

	for _, s := range []string{"Category", "Impact", "Bread", "-0.20pp", "Fuel", "+0.10pp"} {
		assert.Contains(t, out, s)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Top border, header, separator, two rows, bottom border.
	assert.Len(t, lines, 6)
}

func TestRenderTree(t *testing.T) {
	tree := categories.SmallBasket(t).Tree
	label := func(n model.CategoryNode) string { return n.Name }

	full := RenderTree(tree, -1, label)
	for _, name := range []string{categories.Goods, categories.Services, categories.Bread, categories.Fuel, categories.Tax} {
		assert.Contains(t, full, name)
	}
	assert.Less(t, strings.Index(full, categories.Goods), strings.Index(full, categories.Bread))

	rootsOnly := RenderTree(tree, 0, label)
	assert.Contains(t, rootsOnly, categories.Goods)
	assert.NotContains(t, rootsOnly, categories.Bread)
}
