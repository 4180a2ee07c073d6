package model

import "time"

// Observation is one published index value of a statistical series.
type Observation struct {
	FetchedAt time.Time
	SeriesID  string
	Period    string // M01..M12, M13 for annual averages
	Year      int
	Value     float64
}

// IsMonthly reports whether the observation is a regular monthly value.
func (o Observation) IsMonthly() bool {
	return len(o.Period) == 3 && o.Period[0] == 'M' && o.Period != "M13"
}

// Month returns the calendar month of a monthly observation, or 0.
func (o Observation) Month() int {
	if !o.IsMonthly() {
		return 0
	}
	m := int(o.Period[1]-'0')*10 + int(o.Period[2]-'0')
	if m < 1 || m > 12 {
		return 0
	}
	return m
}

// FetchRun records one refresh of the observation cache.
type FetchRun struct {
	StartedAt    time.Time
	FinishedAt   time.Time
	Error        string
	ID           int64
	Series       int
	Observations int
	FromCache    int
}
