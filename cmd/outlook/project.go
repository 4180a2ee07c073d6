package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/cli"
	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/projection"
)

func projectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project <category-id>",
		Short: "Project one category",
		Long: `Project the inflation rate and basket weight of one category.

Leaves are projected from their own modifier. Internal categories roll up
their leaves using the leaves' own weights.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			node, ok := s.dataset.Tree.Get(args[0])
			if !ok {
				return common.NewUserError(fmt.Sprintf("unknown category %q", args[0]), common.ErrNotFound)
			}

			result := s.engine.ProjectComponent(node.ID, s.scenario, s.horizon)
			if !node.IsLeaf() {
				result = s.engine.ProjectMajorGroup(node.ID, s.scenario, s.horizon)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(node.Name))
			fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%s · %s", node.Level, s.headline())))
			fmt.Fprintln(out, cli.RenderTable([]string{"Measure", "Value"}, projectionRows(result), 1))
			return nil
		},
	}
}

func projectionRows(r model.ProjectionResult) [][]string {
	return [][]string{
		{"Baseline rate", cli.FormatPercent(r.BaselineRate, 2)},
		{"Projected rate", cli.FormatPercent(r.ProjectedRate, 2)},
		{"AI impact", cli.RenderImpact(r.AIImpactPp)},
		{"Original weight", cli.FormatWeight(r.OriginalWeight)},
		{"Adjusted weight", cli.FormatWeight(r.AdjustedWeight)},
		{"Weight shift", cli.FormatPp(r.WeightShiftPp, 2)},
	}
}

func aggregateCmd() *cobra.Command {
	var showComponents bool

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Project the all-items CPI",
		Long: `Project every leaf category and combine them into the all-items rate.

Weights are normalised to 100 and rebalanced after AI weight shifts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			agg := s.engine.CalculateAggregateProjection(s.scenario, s.horizon)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("All items CPI · "+s.headline()))
			fmt.Fprintf(out, "Baseline   %s\n", cli.FormatPercent(agg.BaselineCPI, 2))
			fmt.Fprintf(out, "Projected  %s\n", cli.FormatPercent(agg.ProjectedCPI, 2))
			fmt.Fprintf(out, "AI impact  %s %s\n", cli.RenderImpact(agg.TotalAIImpactPp), cli.ImpactIcon(agg.TotalAIImpactPp))

			if showComponents {
				rows := make([][]string, 0, len(agg.ComponentResults))
				for _, r := range agg.ComponentResults {
					rows = append(rows, []string{
						s.name(r.ComponentID),
						cli.FormatWeight(r.OriginalWeight),
						cli.FormatWeight(r.AdjustedWeight),
						cli.FormatPercent(r.BaselineRate, 2),
						cli.FormatPercent(r.ProjectedRate, 2),
						cli.RenderImpact(r.AIImpactPp),
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.RenderTable(
					[]string{"Category", "Weight", "Adjusted", "Baseline", "Projected", "Impact"},
					rows, 1, 2, 3, 4, 5))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showComponents, "components", "c", false, "list every leaf projection")
	return cmd
}

func groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "Major group projections and their contribution to the aggregate",
		Long: `Show each major group's projection and decompose its contribution to the
all-items change into a rate effect and a weight effect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Major groups · "+s.headline()))

			roots := s.dataset.Tree.Roots()
			rows := make([][]string, 0, len(roots))
			for _, g := range roots {
				r := s.engine.ProjectMajorGroup(g.ID, s.scenario, s.horizon)
				rows = append(rows, []string{
					g.Name,
					cli.FormatWeight(r.OriginalWeight),
					cli.FormatPercent(r.BaselineRate, 2),
					cli.FormatPercent(r.ProjectedRate, 2),
					cli.RenderImpact(r.AIImpactPp),
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Group", "Weight", "Baseline", "Projected", "Impact"}, rows, 1, 2, 3, 4))

			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.FormatTitle("Contribution to all-items change"))
			writeWaterfall(out, s.engine.MajorGroupContributions(s.scenario, s.horizon))
			return nil
		},
	}
}

// writeWaterfall prints the contribution table followed by a bar per group.
func writeWaterfall(out io.Writer, contributions []model.Contribution) {
	rows := make([][]string, 0, len(contributions)+1)
	var limit, rate, weight, total float64
	for _, c := range contributions {
		limit = max(limit, math.Abs(c.Total))
		rate += c.RateEffect
		weight += c.WeightEffect
		total += c.Total
	}
	for _, c := range contributions {
		bar := cli.Bar(math.Abs(c.Total), limit, 20)
		rows = append(rows, []string{
			c.Name,
			cli.FormatSigned(c.RateEffect, 3),
			cli.FormatSigned(c.WeightEffect, 3),
			cli.RenderImpact(c.Total),
			colour(bar, c.Total),
		})
	}
	rows = append(rows, []string{
		cli.BoldStyle.Render("Total"),
		cli.FormatSigned(rate, 3),
		cli.FormatSigned(weight, 3),
		cli.RenderImpact(total),
		"",
	})
	fmt.Fprintln(out, cli.RenderTable([]string{"Group", "Rate effect", "Weight effect", "Total", ""}, rows, 1, 2, 3))
}

func topCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Categories most affected by AI",
		Long:  `Rank leaf categories by the size of their AI impact times their basket weight.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			top := s.engine.TopImpactedComponents(s.scenario, s.horizon, n)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Top %d impacted categories · %s", len(top), s.headline())))
			rows := make([][]string, 0, len(top))
			for i, r := range top {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					s.name(r.ComponentID),
					cli.FormatWeight(r.OriginalWeight),
					cli.RenderImpact(r.AIImpactPp),
					cli.FormatMono(r.WeightedImpact()/100, 4, 7),
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"#", "Category", "Weight", "Impact", "Weighted"}, rows, 0, 2, 3, 4))
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "number", "n", 10, "number of categories to show")
	return cmd
}

func impactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impact <category-id>",
		Short: "Explain the AI impact on one category",
		Long: `Show the scaled AI impact of a category with its narrative, evidence and the
research behind it, plus the impact under every scenario and horizon.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			node, ok := s.dataset.Tree.Get(args[0])
			if !ok {
				return common.NewUserError(fmt.Sprintf("unknown category %q", args[0]), common.ErrNotFound)
			}
			impact := s.engine.AggregateComponentImpact(node.ID, s.scenario, s.horizon)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(node.Name))
			fmt.Fprintln(out, cli.SubtleStyle.Render(breadcrumb(s.dataset.Tree.Path(node.ID))))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s  %s %s\n", s.headline(), cli.RenderImpact(impact.AIImpactPp), cli.ImpactIcon(impact.AIImpactPp))
			fmt.Fprintf(out, "Weight shift  %s\n", cli.FormatPp(impact.WeightShiftPp, 2))
			fmt.Fprintf(out, "Confidence    %s\n", cli.RenderConfidence(impact.Confidence))
			if !node.IsLeaf() {
				fmt.Fprintf(out, "Sub-items     %d\n", impact.LeafCount)
			}
			if impact.Explanation != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, impact.Explanation)
			}

			if len(impact.Citations) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.BoldStyle.Render("Sources"))
				for _, id := range impact.Citations {
					fmt.Fprintln(out, "  "+citationLine(s, id))
				}
			}

			fmt.Fprintln(out)
			writeImpactGrid(out, s.engine, node.ID)
			return nil
		},
	}
}

// writeImpactGrid prints one category's impact for every AI scenario and horizon.
func writeImpactGrid(out io.Writer, engine *projection.Engine, id string) {
	horizons := model.Horizons()
	grid := engine.ImpactGrid([]string{id}, model.AIScenarios(), horizons)
	if len(grid) == 0 {
		return
	}

	headers := []string{"Scenario"}
	for _, h := range horizons {
		headers = append(headers, h.Label())
	}
	byScenario := make(map[model.Scenario][]string)
	for _, cell := range grid[0].Cells {
		byScenario[cell.Scenario] = append(byScenario[cell.Scenario], cli.RenderImpact(cell.Impact.AIImpactPp))
	}
	rows := make([][]string, 0, len(byScenario))
	for _, sc := range model.AIScenarios() {
		rows = append(rows, append([]string{string(sc)}, byScenario[sc]...))
	}
	fmt.Fprintln(out, cli.RenderTable(headers, rows, 1, 2, 3))
}

func citationLine(s *session, id string) string {
	c, ok := s.dataset.Citation(id)
	if !ok {
		return "• " + id
	}
	line := fmt.Sprintf("• %s", c.ShortName)
	if c.Title != "" {
		line += " " + cli.SubtleStyle.Render(fmt.Sprintf("%q", c.Title))
	}
	if c.URL != "" {
		line += " " + cli.SubtleStyle.Render(c.URL)
	}
	return line
}

func breadcrumb(path []model.CategoryNode) string {
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name
	}
	return strings.Join(names, " › ")
}

func colour(s string, pp float64) string {
	return lipgloss.NewStyle().Foreground(cli.ImpactColor(pp)).Render(s)
}
