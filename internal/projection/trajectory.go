package projection

import (
	"fmt"
	"iter"
	"math"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// GenerateTrajectory samples baseline and projected rates from month 0 to the
// horizon end. The endpoint impact is the whole-basket total, or the
// aggregated impact of componentID when it is non-empty, interpolated linearly
// back to zero at month 0. Points are computed as the sequence is ranged over,
// so the sequence can be iterated any number of times.
func (e *Engine) GenerateTrajectory(scenario model.Scenario, horizon model.Horizon, componentID string) iter.Seq[model.TrajectoryPoint] {
	return func(yield func(model.TrajectoryPoint) bool) {
		years := horizon.Years()
		if years == 0 {
			return
		}

		var totalImpact float64
		if componentID != "" {
			totalImpact = e.AggregateComponentImpact(componentID, scenario, horizon).AIImpactPp
		} else {
			totalImpact = e.CalculateAggregateProjection(scenario, horizon).TotalAIImpactPp
		}

		months := years * 12
		step := max(1, months/e.cfg.MaxTrajectoryPoints)

		point := func(m int) model.TrajectoryPoint {
			t := float64(m) / 12
			base := e.BaselineTrend(t)
			impact := AIImpactAtTime(totalImpact, t, years)
			return model.TrajectoryPoint{
				Label:     e.monthLabel(m),
				Month:     m,
				Baseline:  round3(base),
				Projected: round3(base + impact),
			}
		}

		last := 0
		for m := 0; m <= months; m += step {
			if !yield(point(m)) {
				return
			}
			last = m
		}
		if last != months {
			yield(point(months))
		}
	}
}

// Trajectory collects GenerateTrajectory into a slice.
func (e *Engine) Trajectory(scenario model.Scenario, horizon model.Horizon, componentID string) []model.TrajectoryPoint {
	var points []model.TrajectoryPoint
	for p := range e.GenerateTrajectory(scenario, horizon, componentID) {
		points = append(points, p)
	}
	return points
}

// History positions the configured historical rates before month 0, one year apart.
func (e *Engine) History() []model.HistoricalPoint {
	n := len(e.cfg.History)
	out := make([]model.HistoricalPoint, 0, n)
	for i, h := range e.cfg.History {
		out = append(out, model.HistoricalPoint{
			Label: fmt.Sprintf("%d", h.Year),
			Month: -(n - i) * 12,
			Rate:  h.Rate,
		})
	}
	return out
}

// monthLabel renders "2027" on year boundaries and "2027-04" otherwise.
func (e *Engine) monthLabel(m int) string {
	year := e.cfg.BaseYear + m/12
	if mo := m % 12; mo > 0 {
		return fmt.Sprintf("%d-%02d", year, mo+1)
	}
	return fmt.Sprintf("%d", year)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
