package tui

import (
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Citation func(id string) (model.Citation, bool)
	Scenario model.Scenario
	Horizon  model.Horizon
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:    themes.Default,
		Scenario: model.ScenarioModerate,
		Horizon:  model.Horizon10Y,
		Width:    100,
		Height:   30,
		ShowHelp: true,
	}
}

// WithTheme sets the colour theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSelection sets the scenario and horizon shown at start.
func WithSelection(scenario model.Scenario, horizon model.Horizon) Option {
	return func(c *Config) {
		c.Scenario = scenario
		c.Horizon = horizon
	}
}

// WithCitations resolves citation ids to records in the detail panel.
func WithCitations(lookup func(id string) (model.Citation, bool)) Option {
	return func(c *Config) {
		c.Citation = lookup
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithHelp toggles the help bar.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
