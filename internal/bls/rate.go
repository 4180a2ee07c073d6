package bls

import (
	"sort"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// AllItemsSeries is the CPI-U all items, U.S. city average, not seasonally adjusted.
const AllItemsSeries = "CUUR0000SA0"

// CalculateInflationRate returns the 12-month percent change between the latest
// monthly observation and the same month a year earlier. It reports false when
// there are fewer than 13 monthly observations, no year-earlier match, or a
// zero base value.
func CalculateInflationRate(points []model.Observation) (float64, bool) {
	monthly := make([]model.Observation, 0, len(points))
	for _, p := range points {
		if p.IsMonthly() {
			monthly = append(monthly, p)
		}
	}
	if len(monthly) < 13 {
		return 0, false
	}

	sort.Slice(monthly, func(i, j int) bool {
		if monthly[i].Year != monthly[j].Year {
			return monthly[i].Year > monthly[j].Year
		}
		return monthly[i].Period > monthly[j].Period
	})

	current := monthly[0]
	for _, p := range monthly[1:] {
		if p.Year == current.Year-1 && p.Period == current.Period {
			if p.Value == 0 {
				return 0, false
			}
			return (current.Value - p.Value) / p.Value * 100, true
		}
	}
	return 0, false
}

// Rates groups observations by series and computes each series' 12-month rate.
// Series without enough history are omitted.
func Rates(points []model.Observation) map[string]float64 {
	bySeries := make(map[string][]model.Observation)
	for _, p := range points {
		bySeries[p.SeriesID] = append(bySeries[p.SeriesID], p)
	}

	out := make(map[string]float64, len(bySeries))
	for id, obs := range bySeries {
		if rate, ok := CalculateInflationRate(obs); ok {
			out[id] = rate
		}
	}
	return out
}
