package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/cli"
	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

func heatmapCmd() *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "AI impact of every category across scenarios and horizons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if level < 0 || level > int(model.LevelItemStratum) {
				return common.NewUserError(fmt.Sprintf("--level must be between 0 and %d", model.LevelItemStratum), common.ErrInvalidConfig)
			}
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}

			nodes := s.dataset.Tree.ByLevel(model.Level(level))
			ids := make([]string, len(nodes))
			for i, n := range nodes {
				ids[i] = n.ID
			}

			headers := []string{"Category"}
			for _, sc := range model.AIScenarios() {
				for _, h := range model.Horizons() {
					headers = append(headers, fmt.Sprintf("%s %s", sc, h))
				}
			}

			grid := s.engine.ImpactGrid(ids, model.AIScenarios(), model.Horizons())
			rows := make([][]string, 0, len(grid))
			for _, r := range grid {
				row := []string{r.Category.Name}
				for _, c := range r.Cells {
					row = append(row, cli.HeatmapStyle(c.Impact.AIImpactPp).Render(cli.FormatSigned(c.Impact.AIImpactPp, 2)))
				}
				rows = append(rows, row)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("AI impact heatmap · %s (pp)", model.Level(level))))
			numeric := make([]int, 0, len(headers)-1)
			for i := 1; i < len(headers); i++ {
				numeric = append(numeric, i)
			}
			fmt.Fprintln(out, cli.RenderTable(headers, rows, numeric...))
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 0, "hierarchy level (0 major groups, 1 expenditure classes, 2 item strata)")
	return cmd
}

func treeCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category hierarchy with weights and AI impact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}

			label := func(n model.CategoryNode) string {
				impact := s.engine.AggregateComponentImpact(n.ID, s.scenario, s.horizon)
				return fmt.Sprintf("%s %s %s",
					n.Name,
					cli.SubtleStyle.Render(cli.FormatWeight(n.Weight)),
					cli.RenderImpact(impact.AIImpactPp),
				)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("CPI categories · "+s.headline()))
			fmt.Fprintln(out, cli.RenderTree(s.dataset.Tree, depth, label))
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", -1, "deepest level to expand (-1 for all)")
	return cmd
}
