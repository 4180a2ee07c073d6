package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/cli"
	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

func scenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Describe the AI adoption scenarios and compare their outcomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			for _, info := range s.dataset.Scenarios {
				var b strings.Builder
				if info.Subtitle != "" {
					b.WriteString(cli.SubtleStyle.Render(info.Subtitle) + "\n\n")
				}
				b.WriteString(info.Description)
				if info.TenYearProductivity != "" {
					fmt.Fprintf(&b, "\n\nProductivity (10yr): %s", info.TenYearProductivity)
				}
				if info.TenYearCPIImpact != "" {
					fmt.Fprintf(&b, "\nCPI impact (10yr):   %s", info.TenYearCPIImpact)
				}
				if info.AlignedWith != "" {
					fmt.Fprintf(&b, "\nAligned with:        %s", info.AlignedWith)
				}
				for _, a := range info.KeyAssumptions {
					b.WriteString("\n  • " + a)
				}
				fmt.Fprintln(out, cli.RenderBox(fmt.Sprintf("%s (%s)", info.Name, info.ID), b.String()))
			}

			summaries := s.engine.CompareScenarios(s.horizon, model.Scenarios())
			rows := make([][]string, 0, len(summaries))
			for _, sum := range summaries {
				rows = append(rows, []string{
					s.scenarioName(sum.Scenario),
					cli.FormatPercent(sum.BaselineCPI, 2),
					cli.FormatPercent(sum.ProjectedCPI, 2),
					cli.RenderImpact(sum.TotalAIImpactPp),
				})
			}
			fmt.Fprintln(out, cli.FormatTitle("All items at "+s.horizon.Label()))
			fmt.Fprintln(out, cli.RenderTable([]string{"Scenario", "Baseline", "Projected", "AI impact"}, rows, 1, 2, 3))
			return nil
		},
	}
}

func citationsCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "citations [id]",
		Short: "List the research behind the impact estimates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			citations := s.dataset.Citations()
			if len(args) == 1 {
				c, ok := s.dataset.Citation(args[0])
				if !ok {
					return common.NewUserError(fmt.Sprintf("unknown citation %q", args[0]), common.ErrNotFound)
				}
				citations = []model.Citation{c}
				verbose = true
			}

			if !verbose {
				rows := make([][]string, 0, len(citations))
				for _, c := range citations {
					rows = append(rows, []string{c.ID, c.ShortName, fmt.Sprintf("%d", c.Year), c.Source})
				}
				fmt.Fprintln(out, cli.RenderTable([]string{"ID", "Source", "Year", "Publisher"}, rows, 2))
				return nil
			}

			for _, c := range citations {
				var b strings.Builder
				fmt.Fprintf(&b, "%s\n%s", c.Title, cli.SubtleStyle.Render(fmt.Sprintf("%s · %s %d", c.Authors, c.Source, c.Year)))
				if c.URL != "" {
					b.WriteString("\n" + cli.SubtleStyle.Render(c.URL))
				}
				if c.Summary != "" {
					b.WriteString("\n\n" + c.Summary)
				}
				for _, f := range c.KeyFindings {
					b.WriteString("\n  • " + f)
				}
				fmt.Fprintln(out, cli.RenderBox(c.ShortName, b.String()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show summaries and key findings")
	return cmd
}
