package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// NewTable returns a table with the shared border and header styles. Columns
// listed in numeric are right aligned.
func NewTable(headers []string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, col := range numeric {
		right[col] = true
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := TableCellStyle
			if row == table.HeaderRow {
				style = TableHeaderStyle
			}
			if right[col] {
				return style.Align(lipgloss.Right)
			}
			return style
		})
}

// RenderTable renders rows under headers.
func RenderTable(headers []string, rows [][]string, numeric ...int) string {
	return NewTable(headers, numeric...).Rows(rows...).String()
}

// Hierarchy is the part of the category tree needed to draw it.
type Hierarchy interface {
	Roots() []model.CategoryNode
	Children(id string) []model.CategoryNode
}

// RenderTree draws the hierarchy down to maxLevel (negative for every level),
// labelling each node with label.
func RenderTree(h Hierarchy, maxLevel int, label func(model.CategoryNode) string) string {
	root := tree.New().Enumerator(tree.RoundedEnumerator).EnumeratorStyle(SubtleStyle)
	for _, r := range h.Roots() {
		root.Child(subtree(h, r, maxLevel, label, map[string]bool{}))
	}
	return root.String()
}

func subtree(h Hierarchy, node model.CategoryNode, maxLevel int, label func(model.CategoryNode) string, seen map[string]bool) any {
	seen[node.ID] = true
	children := h.Children(node.ID)
	if len(children) == 0 || (maxLevel >= 0 && int(node.Level) >= maxLevel) {
		return label(node)
	}

	t := tree.Root(label(node)).Enumerator(tree.RoundedEnumerator).EnumeratorStyle(SubtleStyle)
	for _, c := range children {
		if seen[c.ID] {
			continue
		}
		t.Child(subtree(h, c, maxLevel, label, seen))
	}
	return t
}
