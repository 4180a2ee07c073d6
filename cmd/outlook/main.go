package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ai-cpi-outlook/internal/common"
	"github.com/Veraticus/ai-cpi-outlook/internal/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "outlook",
		Short: "📈 AI-adjusted CPI projections",
		Long: `outlook projects U.S. consumer price inflation under AI adoption scenarios.

Every CPI expenditure category carries an authored, research-backed estimate of how
AI changes its inflation rate and basket weight. outlook combines those estimates with
a mean-reverting baseline to project category, group and all-items inflation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(cfgFile)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/outlook/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.StringP("scenario", "s", string(defaultScenario), "AI scenario (baseline, conservative, moderate, transformative)")
	flags.StringP("horizon", "H", string(defaultHorizon), "projection horizon (1yr, 3yr, 10yr)")
	flags.Float64("impact-scale", 0, "multiplier applied to authored modifier values")
	flags.Float64("current-rate", 0, "current all-items inflation rate in percent")
	flags.Bool("live-rate", false, "use the all-items rate computed from cached BLS data")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("projection.impact_scale", flags.Lookup("impact-scale"))
	_ = viper.BindPFlag("projection.current_rate", flags.Lookup("current-rate"))

	// Add commands
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(aggregateCmd())
	rootCmd.AddCommand(groupsCmd())
	rootCmd.AddCommand(topCmd())
	rootCmd.AddCommand(impactCmd())
	rootCmd.AddCommand(trajectoryCmd())
	rootCmd.AddCommand(heatmapCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(scenariosCmd())
	rootCmd.AddCommand(citationsCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(exploreCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cfgFile string) error {
	// A local .env supplies BLS_API_KEY and Google credentials.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/outlook", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	config.BindEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	return setupLogging()
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if _, err := common.SetupLogger(os.Stderr, level, viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "outlook %s\n", version)
		},
	}
}
