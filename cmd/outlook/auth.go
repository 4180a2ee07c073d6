package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ai-cpi-outlook/internal/cli"
	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/config"
	"github.com/Veraticus/ai-cpi-outlook/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with external services like Google Sheets.`,
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets export",
		Long: `Authorize outlook to write spreadsheets in your Google account.

Requires sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID and
GOOGLE_SHEETS_CLIENT_SECRET). A browser window completes the OAuth2 flow and the
resulting token is saved to sheets.token_file for later exports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Sheets.ClientID == "" || cfg.Sheets.ClientSecret == "" {
				return common.NewUserError("sheets.client_id and sheets.client_secret are required", common.ErrMissingConfig)
			}

			token, err := sheets.GetOrCreateToken(cmd.Context(), sheets.OAuth2Config{
				ClientID:     cfg.Sheets.ClientID,
				ClientSecret: cfg.Sheets.ClientSecret,
				TokenFile:    cfg.Sheets.TokenFile,
				ListenAddr:   listen,
			})
			if err != nil {
				return fmt.Errorf("failed to authorize Google Sheets: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("Google Sheets authorized"))
			if cfg.Sheets.TokenFile != "" {
				fmt.Fprintf(out, "Token saved to %s\n", cfg.Sheets.TokenFile)
			} else if token.RefreshToken != "" {
				fmt.Fprintf(out, "Set sheets.refresh_token to: %s\n", token.RefreshToken)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "callback address (default localhost:8080)")
	return cmd
}
