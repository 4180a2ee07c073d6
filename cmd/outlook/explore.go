package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/tui"
	"github.com/Veraticus/ai-cpi-outlook/internal/tui/themes"
)

func exploreCmd() *cobra.Command {
	var theme string

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse categories interactively",
		Long: `Open a full-screen explorer of the category hierarchy. Expand groups, switch
scenario (s/S) and horizon (t/T), and read the narrative and sources behind
each estimate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSession(cmd)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), s.engine, s.dataset.Tree,
				tui.WithTheme(themes.ByName(theme)),
				tui.WithSelection(s.scenario, s.horizon),
				tui.WithCitations(s.dataset.Citation),
			)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "default", "colour theme (default, catppuccin)")
	return cmd
}
