package model

import "fmt"

// Scenario is an AI-adoption intensity assumption.
type Scenario string

const (
	// ScenarioBaseline assumes no AI effect. It never has modifiers.
	ScenarioBaseline Scenario = "baseline"
	// ScenarioConservative assumes slow, incremental adoption.
	ScenarioConservative Scenario = "conservative"
	// ScenarioModerate assumes broad adoption at historical general-purpose-technology pace.
	ScenarioModerate Scenario = "moderate"
	// ScenarioTransformative assumes rapid, economy-wide adoption.
	ScenarioTransformative Scenario = "transformative"
)

// Scenarios lists every scenario in display order.
func Scenarios() []Scenario {
	return []Scenario{ScenarioBaseline, ScenarioConservative, ScenarioModerate, ScenarioTransformative}
}

// AIScenarios lists the scenarios that carry modifiers.
func AIScenarios() []Scenario {
	return []Scenario{ScenarioConservative, ScenarioModerate, ScenarioTransformative}
}

// ParseScenario converts a string into a Scenario.
func ParseScenario(s string) (Scenario, error) {
	switch sc := Scenario(s); sc {
	case ScenarioBaseline, ScenarioConservative, ScenarioModerate, ScenarioTransformative:
		return sc, nil
	default:
		return "", fmt.Errorf("unknown scenario %q (want baseline, conservative, moderate or transformative)", s)
	}
}

// HasModifiers reports whether modifiers may exist for the scenario.
func (s Scenario) HasModifiers() bool {
	switch s {
	case ScenarioBaseline:
		return false
	case ScenarioConservative, ScenarioModerate, ScenarioTransformative:
		return true
	default:
		return false
	}
}

// Horizon is a projection time window.
type Horizon string

const (
	// Horizon1Y projects one year ahead.
	Horizon1Y Horizon = "1yr"
	// Horizon3Y projects three years ahead.
	Horizon3Y Horizon = "3yr"
	// Horizon10Y projects ten years ahead.
	Horizon10Y Horizon = "10yr"
)

// Horizons lists every horizon in ascending order.
func Horizons() []Horizon {
	return []Horizon{Horizon1Y, Horizon3Y, Horizon10Y}
}

// ParseHorizon converts a string into a Horizon.
func ParseHorizon(s string) (Horizon, error) {
	switch h := Horizon(s); h {
	case Horizon1Y, Horizon3Y, Horizon10Y:
		return h, nil
	default:
		return "", fmt.Errorf("unknown horizon %q (want 1yr, 3yr or 10yr)", s)
	}
}

// Years returns the length of the horizon in years. Unknown horizons map to 0.
func (h Horizon) Years() int {
	switch h {
	case Horizon1Y:
		return 1
	case Horizon3Y:
		return 3
	case Horizon10Y:
		return 10
	default:
		return 0
	}
}

// Label returns the display label for the horizon.
func (h Horizon) Label() string {
	switch h {
	case Horizon1Y:
		return "1 Year"
	case Horizon3Y:
		return "3 Years"
	case Horizon10Y:
		return "10 Years"
	default:
		return string(h)
	}
}

// Confidence is the ordinal strength of the evidence behind a modifier.
type Confidence string

const (
	// ConfidenceHigh marks well-supported estimates.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium is the default when nothing better is known.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow marks speculative estimates.
	ConfidenceLow Confidence = "low"
)

// ParseConfidence converts a string into a Confidence.
func ParseConfidence(s string) (Confidence, error) {
	switch c := Confidence(s); c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c, nil
	default:
		return "", fmt.Errorf("unknown confidence %q (want high, medium or low)", s)
	}
}

// ImpactModifier is an authored adjustment for one component under one scenario and horizon.
// InflationImpactPp and WeightShiftPp are raw values; callers apply the impact scale.
type ImpactModifier struct {
	ComponentID       string
	Scenario          Scenario
	Horizon           Horizon
	Confidence        Confidence
	Explanation       string
	Citations         []string
	InflationImpactPp float64
	WeightShiftPp     float64
}

// ModifierKey is the composite lookup key of a modifier.
type ModifierKey struct {
	ComponentID string
	Scenario    Scenario
	Horizon     Horizon
}

// Key returns the composite key of the modifier.
func (m ImpactModifier) Key() ModifierKey {
	return ModifierKey{ComponentID: m.ComponentID, Scenario: m.Scenario, Horizon: m.Horizon}
}

// String renders the key for error messages.
func (k ModifierKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ComponentID, k.Scenario, k.Horizon)
}
