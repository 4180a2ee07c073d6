// Package projection is the pure computation core: it combines a baseline
// mean-reversion trend with scenario modifiers and rolls category projections
// up the expenditure hierarchy.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// ErrInvalidConfig indicates projection parameters that cannot produce meaningful output.
var ErrInvalidConfig = errors.New("invalid projection config")

// Config holds the process-wide projection parameters. It is passed explicitly
// to New so alternative calibrations can be evaluated side by side.
type Config struct {
	History             []model.HistoricalRate `mapstructure:"-"`
	CurrentRate         float64                `mapstructure:"current_rate"`
	TargetRate          float64                `mapstructure:"target_rate"`
	MeanReversionSpeed  float64                `mapstructure:"mean_reversion_speed"`
	ImpactScale         float64                `mapstructure:"impact_scale"`
	BaseYear            int                    `mapstructure:"base_year"`
	MaxTrajectoryPoints int                    `mapstructure:"max_trajectory_points"`
}

// DefaultConfig returns the reference calibration: CPI-U at 2.7% (Dec 2025)
// reverting toward the 2% target at 0.3/yr, with modifiers scaled 5x.
func DefaultConfig() Config {
	return Config{
		CurrentRate:         2.7,
		TargetRate:          2.0,
		MeanReversionSpeed:  0.3,
		ImpactScale:         5.0,
		BaseYear:            2025,
		MaxTrajectoryPoints: 36,
	}
}

// Validate checks that every parameter is finite and in range.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"current_rate":         c.CurrentRate,
		"target_rate":          c.TargetRate,
		"mean_reversion_speed": c.MeanReversionSpeed,
		"impact_scale":         c.ImpactScale,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidConfig, name)
		}
	}
	if c.MeanReversionSpeed < 0 {
		return fmt.Errorf("%w: mean_reversion_speed cannot be negative", ErrInvalidConfig)
	}
	if c.ImpactScale < 0 {
		return fmt.Errorf("%w: impact_scale cannot be negative", ErrInvalidConfig)
	}
	if c.MaxTrajectoryPoints <= 0 {
		return fmt.Errorf("%w: max_trajectory_points must be positive", ErrInvalidConfig)
	}
	return nil
}

// BaselineTrend is the rate after t years of exponential decay from currentRate
// toward the target rate. Defined for t >= 0.
func (c Config) BaselineTrend(currentRate, t float64) float64 {
	return c.TargetRate + (currentRate-c.TargetRate)*math.Exp(-c.MeanReversionSpeed*t)
}

// AIImpactAtTime linearly interpolates an endpoint impact back to zero at t=0.
func AIImpactAtTime(impactPp, t float64, horizonYears int) float64 {
	if horizonYears <= 0 {
		return 0
	}
	return impactPp * (t / float64(horizonYears))
}
