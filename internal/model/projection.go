package model

// ProjectionResult is the projected rate and weight of one category, or of a roll-up.
type ProjectionResult struct {
	ComponentID    string
	BaselineRate   float64
	ProjectedRate  float64
	AIImpactPp     float64
	OriginalWeight float64
	AdjustedWeight float64
	WeightShiftPp  float64
}

// WeightedImpact is the ranking key for the most impacted components.
func (r ProjectionResult) WeightedImpact() float64 {
	impact := r.AIImpactPp
	if impact < 0 {
		impact = -impact
	}
	return impact * r.OriginalWeight
}

// AggregateProjection is the basket-wide projection built from every leaf.
type AggregateProjection struct {
	ComponentResults []ProjectionResult
	BaselineCPI      float64
	ProjectedCPI     float64
	TotalAIImpactPp  float64
}

// ComponentImpact is the scaled AI impact of any node, leaf or internal, with its narrative.
type ComponentImpact struct {
	ComponentID   string
	Confidence    Confidence
	Explanation   string
	Citations     []string
	AIImpactPp    float64
	WeightShiftPp float64
	LeafCount     int
	Direct        bool
}

// TrajectoryPoint is one sampled month of a projected trajectory.
type TrajectoryPoint struct {
	Label     string
	Month     int
	Baseline  float64
	Projected float64
}

// HistoricalRate is one year of observed annual inflation.
type HistoricalRate struct {
	Year int     `yaml:"year"`
	Rate float64 `yaml:"rate"`
}

// HistoricalPoint is a historical rate positioned on the trajectory month axis.
type HistoricalPoint struct {
	Label string
	Month int
	Rate  float64
}

// Contribution decomposes a group's effect on the aggregate rate into a rate effect
// and a weight effect, in percentage points of the all-items rate.
type Contribution struct {
	ComponentID   string
	Name          string
	RateEffect    float64
	WeightEffect  float64
	Total         float64
	Weight        float64
	WeightShiftPp float64
}
