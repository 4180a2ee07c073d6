package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/cli"
	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

func trajectoryCmd() *cobra.Command {
	var (
		component string
		all       bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "trajectory",
		Short: "Month-by-month inflation path",
		Long: `Print the baseline and AI-adjusted inflation path from today to the end of the
horizon, preceded by recent annual history.

The baseline scenario has no AI impact, so its projected path equals the
baseline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			if component != "" {
				if _, ok := s.dataset.Tree.Get(component); !ok {
					return common.NewUserError(fmt.Sprintf("unknown category %q", component), common.ErrNotFound)
				}
			}

			out := cmd.OutOrStdout()
			subject := "All items"
			if component != "" {
				subject = s.name(component)
			}
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s trajectory · %s", subject, s.headline())))

			if !noHistory {
				history := s.engine.History()
				rows := make([][]string, 0, len(history))
				for _, h := range history {
					rows = append(rows, []string{h.Label, cli.FormatPercent(h.Rate, 1)})
				}
				if len(rows) > 0 {
					fmt.Fprintln(out, cli.RenderTable([]string{"Year", "Actual"}, rows, 1))
				}
			}

			if all {
				headers, rows := allScenarioTrajectories(s, component)
				fmt.Fprintln(out, cli.RenderTable(headers, rows, 1, 2, 3, 4))
				return nil
			}

			rows := [][]string{}
			for p := range s.engine.GenerateTrajectory(s.scenario, s.horizon, component) {
				rows = append(rows, []string{
					p.Label,
					cli.FormatPercent(p.Baseline, 2),
					cli.FormatPercent(p.Projected, 2),
					cli.RenderImpact(p.Projected - p.Baseline),
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Month", "Baseline", "Projected", "AI"}, rows, 1, 2, 3))
			return nil
		},
	}

	cmd.Flags().StringVar(&component, "component", "", "category id to project instead of all items")
	cmd.Flags().BoolVar(&all, "all", false, "show every AI scenario side by side")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "omit historical rates")
	return cmd
}

// allScenarioTrajectories lays the AI scenarios out as columns next to the baseline.
func allScenarioTrajectories(s *session, component string) ([]string, [][]string) {
	headers := []string{"Month", "Baseline"}
	var rows [][]string
	index := make(map[int]int)

	for _, sc := range model.AIScenarios() {
		headers = append(headers, s.scenarioName(sc))
		for p := range s.engine.GenerateTrajectory(sc, s.horizon, component) {
			i, ok := index[p.Month]
			if !ok {
				i = len(rows)
				index[p.Month] = i
				rows = append(rows, []string{p.Label, cli.FormatPercent(p.Baseline, 2)})
			}
			rows[i] = append(rows[i], cli.FormatPercent(p.Projected, 2))
		}
	}
	return headers, rows
}
