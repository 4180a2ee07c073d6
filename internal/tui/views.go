package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/ai-cpi-outlook/internal/cli"
)

const (
	headerLines = 3
	footerLines = 2
	// Below this width the detail pane is dropped.
	splitWidth   = 90
	impactColumn = 10
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	body := m.renderTree(m.width)
	if m.width >= splitWidth {
		treeWidth := m.width * 3 / 5
		detailWidth := m.width - treeWidth - 1
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderTree(treeWidth),
			" ",
			m.renderDetail(detailWidth),
		)
	}

	sections := []string{m.renderHeader(), body}
	if m.config.ShowHelp {
		sections = append(sections, "", m.help.View(m.keymap))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("AI CPI Outlook")
	selection := m.theme.Subtitle.Render(fmt.Sprintf("  %s scenario · %s", titleCase(string(m.scenario)), m.horizon.Label()))

	agg := m.aggregate
	summary := fmt.Sprintf("All items: %s baseline → %s projected (%s)",
		cli.FormatPercent(agg.BaselineCPI, 2),
		cli.FormatPercent(agg.ProjectedCPI, 2),
		cli.RenderImpact(agg.TotalAIImpactPp),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title+selection, m.theme.Normal.Render(summary), "")
}

func (m Model) renderTree(width int) string {
	if len(m.rows) == 0 {
		return m.theme.Italic.Render("No categories loaded")
	}

	end := min(m.offset+m.listHeight(), len(m.rows))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, selected bool, width int) string {
	marker := "  "
	if !r.node.IsLeaf() {
		marker = "▸ "
		if m.expanded[r.node.ID] {
			marker = "▾ "
		}
	}
	cursor := "  "
	nameStyle := m.theme.Normal
	if selected {
		cursor = "› "
		nameStyle = m.theme.Selected
	}

	label := strings.Repeat("  ", r.depth) + marker + r.node.Name
	nameWidth := max(width-len(cursor)-impactColumn-1, 8)
	name := nameStyle.Width(nameWidth).MaxWidth(nameWidth).Render(label)

	impact := m.engine.AggregateComponentImpact(r.node.ID, m.scenario, m.horizon).AIImpactPp
	value := lipgloss.NewStyle().
		Width(impactColumn).
		Align(lipgloss.Right).
		Foreground(cli.ImpactColor(impact)).
		Render(cli.FormatPp(impact, 2))

	return cursor + name + " " + value
}

func (m Model) renderDetail(width int) string {
	node, ok := m.selected()
	if !ok {
		return ""
	}
	inner := max(width-4, 10)

	result := m.engine.ProjectComponent(node.ID, m.scenario, m.horizon)
	if !node.IsLeaf() {
		result = m.engine.ProjectMajorGroup(node.ID, m.scenario, m.horizon)
	}
	impact := m.engine.AggregateComponentImpact(node.ID, m.scenario, m.horizon)

	var b strings.Builder
	b.WriteString(m.theme.Bold.Render(node.Name) + "\n")
	meta := node.Level.String()
	if node.SeriesID != "" {
		meta += " · " + node.SeriesID
	}
	if !node.IsLeaf() {
		meta += fmt.Sprintf(" · %d items", impact.LeafCount)
	}
	b.WriteString(m.theme.Subtitle.Render(meta) + "\n\n")

	fmt.Fprintf(&b, "Weight     %s → %s\n", cli.FormatWeight(result.OriginalWeight), cli.FormatWeight(result.AdjustedWeight))
	fmt.Fprintf(&b, "Baseline   %s\n", cli.FormatPercent(result.BaselineRate, 2))
	fmt.Fprintf(&b, "Projected  %s\n", cli.FormatPercent(result.ProjectedRate, 2))
	fmt.Fprintf(&b, "AI impact  %s %s\n", cli.RenderImpact(impact.AIImpactPp), cli.ImpactIcon(impact.AIImpactPp))
	fmt.Fprintf(&b, "Confidence %s\n", cli.RenderConfidence(impact.Confidence))

	if impact.Explanation != "" {
		b.WriteString("\n" + m.theme.Normal.Width(inner).Render(impact.Explanation) + "\n")
	}
	if len(impact.Citations) > 0 {
		b.WriteString("\n" + m.theme.Subtitle.Render("Sources") + "\n")
		for _, id := range impact.Citations {
			b.WriteString(m.theme.Italic.Width(inner).Render("• "+m.citationLabel(id)) + "\n")
		}
	}

	return m.theme.BorderedBox.Width(width - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) citationLabel(id string) string {
	if m.config.Citation == nil {
		return id
	}
	c, ok := m.config.Citation(id)
	if !ok {
		return id
	}
	label := c.ShortName
	if label == "" {
		label = c.Title
	}
	if c.Year > 0 {
		label = fmt.Sprintf("%s (%d)", label, c.Year)
	}
	return label
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
