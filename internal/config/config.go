package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/ai-cpi-outlook/internal/bls"
	"github.com/Veraticus/ai-cpi-outlook/internal/catalog"
	"github.com/Veraticus/ai-cpi-outlook/internal/projection"
	"github.com/Veraticus/ai-cpi-outlook/internal/sheets"
)

// DefaultStoragePath is where the observation cache lives unless configured.
const DefaultStoragePath = "~/.local/share/outlook/outlook.db"

// StorageConfig locates the observation cache.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config holds all runtime configuration. Values are populated from
// config.yaml, OUTLOOK_* env vars and CLI flags bound into viper.
type Config struct {
	Projection projection.Config `mapstructure:"projection"`
	Data       catalog.Sources   `mapstructure:"data"`
	BLS        bls.Config        `mapstructure:"bls"`
	Storage    StorageConfig     `mapstructure:"storage"`
	Sheets     sheets.Config     `mapstructure:"sheets"`
	Logging    LoggingConfig     `mapstructure:"logging"`
}

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "OUTLOOK"

// BindEnv makes OUTLOOK_SECTION_KEY variables override section.key.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// SetDefaults registers built-in defaults for every key Load understands.
func SetDefaults() {
	p := projection.DefaultConfig()
	viper.SetDefault("projection.current_rate", p.CurrentRate)
	viper.SetDefault("projection.target_rate", p.TargetRate)
	viper.SetDefault("projection.mean_reversion_speed", p.MeanReversionSpeed)
	viper.SetDefault("projection.impact_scale", p.ImpactScale)
	viper.SetDefault("projection.base_year", p.BaseYear)
	viper.SetDefault("projection.max_trajectory_points", p.MaxTrajectoryPoints)

	viper.SetDefault("data.categories", "")
	viper.SetDefault("data.modifiers", "")
	viper.SetDefault("data.scenarios", "")
	viper.SetDefault("data.citations", "")
	viper.SetDefault("data.history", "")

	b := bls.DefaultConfig()
	viper.SetDefault("bls.api_url", b.APIURL)
	viper.SetDefault("bls.api_key", "")
	viper.SetDefault("bls.batch_size", b.BatchSize)
	viper.SetDefault("bls.concurrency", b.Concurrency)
	viper.SetDefault("bls.start_year", b.StartYear)
	viper.SetDefault("bls.end_year", b.EndYear)
	viper.SetDefault("bls.timeout", b.Timeout)
	viper.SetDefault("bls.cache_ttl", b.CacheTTL)

	viper.SetDefault("storage.path", DefaultStoragePath)

	s := sheets.DefaultConfig()
	viper.SetDefault("sheets.client_id", "")
	viper.SetDefault("sheets.client_secret", "")
	viper.SetDefault("sheets.refresh_token", "")
	viper.SetDefault("sheets.token_file", "~/.config/outlook/sheets-token.json")
	viper.SetDefault("sheets.service_account_path", "")
	viper.SetDefault("sheets.spreadsheet_id", "")
	viper.SetDefault("sheets.spreadsheet_name", s.SpreadsheetName)
	viper.SetDefault("sheets.time_zone", s.TimeZone)
	viper.SetDefault("sheets.batch_size", s.BatchSize)
	viper.SetDefault("sheets.retry_attempts", s.RetryAttempts)
	viper.SetDefault("sheets.retry_delay", s.RetryDelay)
	viper.SetDefault("sheets.enable_formatting", s.EnableFormatting)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// Load reads configuration from viper, applying built-in defaults for any
// value not set by config file, environment or flags. Paths are expanded.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	cfg.Data.Categories = ExpandPath(cfg.Data.Categories)
	cfg.Data.Modifiers = ExpandPath(cfg.Data.Modifiers)
	cfg.Data.Scenarios = ExpandPath(cfg.Data.Scenarios)
	cfg.Data.Citations = ExpandPath(cfg.Data.Citations)
	cfg.Data.History = ExpandPath(cfg.Data.History)

	cfg.BLS.Retry = bls.DefaultConfig().Retry
	if cfg.BLS.APIKey == "" {
		cfg.BLS.APIKey = os.Getenv("BLS_API_KEY")
	}

	applySheetsEnv(&cfg.Sheets)

	return cfg, nil
}
