// Package tui is the interactive category explorer: a collapsible view of the
// expenditure hierarchy with projected AI impacts for the selected scenario and horizon.
package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/projection"
	"github.com/Veraticus/ai-cpi-outlook/internal/tui/themes"
)

// Tree is the part of the category hierarchy the explorer walks.
type Tree interface {
	Get(id string) (model.CategoryNode, bool)
	Roots() []model.CategoryNode
	Children(id string) []model.CategoryNode
}

// row is one visible line of the tree pane.
type row struct {
	node  model.CategoryNode
	depth int
}

// Model holds the explorer state.
type Model struct {
	engine    *projection.Engine
	tree      Tree
	expanded  map[string]bool
	theme     themes.Theme
	config    Config
	keymap    KeyMap
	help      help.Model
	scenario  model.Scenario
	horizon   model.Horizon
	rows      []row
	aggregate model.AggregateProjection
	cursor    int
	offset    int
	width     int
	height    int
	quitting  bool
}

// New creates an explorer over tree using engine for every figure it shows.
func New(engine *projection.Engine, tree Tree, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := help.New()
	h.ShowAll = false

	m := Model{
		engine:   engine,
		tree:     tree,
		expanded: make(map[string]bool),
		theme:    cfg.Theme,
		config:   cfg,
		keymap:   DefaultKeyMap(),
		help:     h,
		scenario: cfg.Scenario,
		horizon:  cfg.Horizon,
		width:    cfg.Width,
		height:   cfg.Height,
	}
	m.recompute()
	m.rebuild()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.Up):
		m.move(-1)
	case key.Matches(msg, m.keymap.Down):
		m.move(1)
	case key.Matches(msg, m.keymap.PageUp):
		m.move(-m.listHeight())
	case key.Matches(msg, m.keymap.PageDown):
		m.move(m.listHeight())
	case key.Matches(msg, m.keymap.Home):
		m.move(-len(m.rows))
	case key.Matches(msg, m.keymap.End):
		m.move(len(m.rows))

	case key.Matches(msg, m.keymap.Expand):
		if node, ok := m.selected(); ok && !node.IsLeaf() {
			m.expanded[node.ID] = true
			m.rebuild()
		}
	case key.Matches(msg, m.keymap.Collapse):
		m.collapse()
	case key.Matches(msg, m.keymap.Toggle):
		if node, ok := m.selected(); ok && !node.IsLeaf() {
			m.expanded[node.ID] = !m.expanded[node.ID]
			m.rebuild()
		}
	case key.Matches(msg, m.keymap.ExpandAll):
		m.expandAll()
	case key.Matches(msg, m.keymap.CollapseAll):
		m.collapseAll()

	case key.Matches(msg, m.keymap.NextScenario):
		m.scenario = cycle(model.Scenarios(), m.scenario, 1)
		m.recompute()
	case key.Matches(msg, m.keymap.PrevScenario):
		m.scenario = cycle(model.Scenarios(), m.scenario, -1)
		m.recompute()
	case key.Matches(msg, m.keymap.NextHorizon):
		m.horizon = cycle(model.Horizons(), m.horizon, 1)
		m.recompute()
	case key.Matches(msg, m.keymap.PrevHorizon):
		m.horizon = cycle(model.Horizons(), m.horizon, -1)
		m.recompute()
	}
	return m, nil
}

// Scenario returns the scenario currently shown.
func (m Model) Scenario() model.Scenario {
	return m.scenario
}

// Horizon returns the horizon currently shown.
func (m Model) Horizon() model.Horizon {
	return m.horizon
}

// Selected returns the category under the cursor.
func (m Model) Selected() (model.CategoryNode, bool) {
	return m.selected()
}

func (m Model) selected() (model.CategoryNode, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.CategoryNode{}, false
	}
	return m.rows[m.cursor].node, true
}

func (m *Model) recompute() {
	m.aggregate = m.engine.CalculateAggregateProjection(m.scenario, m.horizon)
}

// rebuild flattens the expanded part of the tree into rows, keeping the
// cursor on the same category where it is still visible.
func (m *Model) rebuild() {
	current, hasCurrent := m.selected()

	roots := m.tree.Roots()
	stack := make([]row, 0, len(roots))
	for _, r := range slices.Backward(roots) {
		stack = append(stack, row{node: r})
	}

	seen := make(map[string]bool)
	rows := make([]row, 0, len(m.rows))
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[top.node.ID] {
			continue
		}
		seen[top.node.ID] = true
		rows = append(rows, top)

		if !m.expanded[top.node.ID] {
			continue
		}
		for _, child := range slices.Backward(m.tree.Children(top.node.ID)) {
			stack = append(stack, row{node: child, depth: top.depth + 1})
		}
	}
	m.rows = rows

	if hasCurrent {
		if i := m.indexOf(current.ID); i >= 0 {
			m.cursor = i
		}
	}
	m.cursor = min(max(m.cursor, 0), max(len(m.rows)-1, 0))
	m.scroll()
}

func (m *Model) collapse() {
	node, ok := m.selected()
	if !ok {
		return
	}
	if m.expanded[node.ID] {
		m.expanded[node.ID] = false
		m.rebuild()
		return
	}
	// Collapsing a closed node jumps to its parent.
	if i := m.indexOf(node.ParentID); node.ParentID != "" && i >= 0 {
		m.cursor = i
		m.scroll()
	}
}

func (m *Model) expandAll() {
	stack := m.tree.Roots()
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsLeaf() || m.expanded[n.ID] {
			continue
		}
		m.expanded[n.ID] = true
		stack = append(stack, m.tree.Children(n.ID)...)
	}
	m.rebuild()
}

func (m *Model) collapseAll() {
	// Land on the root of the current branch.
	if node, ok := m.selected(); ok {
		for node.ParentID != "" {
			parent, found := m.tree.Get(node.ParentID)
			if !found {
				break
			}
			node = parent
		}
		m.expanded = make(map[string]bool)
		m.rebuild()
		if i := m.indexOf(node.ID); i >= 0 {
			m.cursor = i
			m.scroll()
		}
		return
	}
	m.expanded = make(map[string]bool)
	m.rebuild()
}

func (m Model) indexOf(id string) int {
	return slices.IndexFunc(m.rows, func(r row) bool { return r.node.ID == id })
}

func (m *Model) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *Model) scroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.rows)-h, 0))
}

// listHeight is the number of tree rows that fit between header and footer.
func (m Model) listHeight() int {
	return max(m.height-headerLines-footerLines, 1)
}

func cycle[T comparable](values []T, current T, step int) T {
	i := slices.Index(values, current)
	if i < 0 {
		return values[0]
	}
	n := len(values)
	return values[((i+step)%n+n)%n]
}
