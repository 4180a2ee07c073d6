package model

import (
	"testing"
)

func TestParseScenario(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Scenario
		wantErr bool
	}{
		{name: "baseline", input: "baseline", want: ScenarioBaseline},
		{name: "conservative", input: "conservative", want: ScenarioConservative},
		{name: "moderate", input: "moderate", want: ScenarioModerate},
		{name: "transformative", input: "transformative", want: ScenarioTransformative},
		{name: "wrong case", input: "Moderate", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScenario(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScenario(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseScenario(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestScenario_HasModifiers(t *testing.T) {
	for _, s := range Scenarios() {
		want := s != ScenarioBaseline
		if got := s.HasModifiers(); got != want {
			t.Errorf("%s.HasModifiers() = %v, want %v", s, got, want)
		}
	}
	if len(AIScenarios()) != len(Scenarios())-1 {
		t.Errorf("AIScenarios() should exclude only the baseline scenario")
	}
}

func TestHorizon_Years(t *testing.T) {
	tests := []struct {
		horizon Horizon
		want    int
	}{
		{Horizon1Y, 1},
		{Horizon3Y, 3},
		{Horizon10Y, 10},
		{Horizon("5yr"), 0},
	}

	for _, tt := range tests {
		if got := tt.horizon.Years(); got != tt.want {
			t.Errorf("%s.Years() = %d, want %d", tt.horizon, got, tt.want)
		}
	}
}

func TestParseHorizon(t *testing.T) {
	for _, h := range Horizons() {
		got, err := ParseHorizon(string(h))
		if err != nil {
			t.Fatalf("ParseHorizon(%q) unexpected error: %v", h, err)
		}
		if got != h {
			t.Errorf("ParseHorizon(%q) = %q", h, got)
		}
	}

	if _, err := ParseHorizon("2yr"); err == nil {
		t.Error("ParseHorizon(\"2yr\") should fail")
	}
}

func TestParseConfidence(t *testing.T) {
	for _, in := range []string{"high", "medium", "low"} {
		if _, err := ParseConfidence(in); err != nil {
			t.Errorf("ParseConfidence(%q) unexpected error: %v", in, err)
		}
	}
	if _, err := ParseConfidence("certain"); err == nil {
		t.Error("ParseConfidence(\"certain\") should fail")
	}
}

func TestImpactModifier_Key(t *testing.T) {
	m := ImpactModifier{ComponentID: "motor_fuel", Scenario: ScenarioModerate, Horizon: Horizon3Y}
	key := m.Key()

	if key.String() != "motor_fuel/moderate/3yr" {
		t.Errorf("Key().String() = %q", key.String())
	}

	other := ImpactModifier{ComponentID: "motor_fuel", Scenario: ScenarioModerate, Horizon: Horizon3Y, InflationImpactPp: 1}
	if other.Key() != key {
		t.Error("keys should ignore non-key fields")
	}
}

func TestProjectionResult_WeightedImpact(t *testing.T) {
	r := ProjectionResult{AIImpactPp: -0.5, OriginalWeight: 4}
	if got := r.WeightedImpact(); got != 2 {
		t.Errorf("WeightedImpact() = %v, want 2", got)
	}
}

func TestObservation_IsMonthly(t *testing.T) {
	tests := []struct {
		period string
		want   bool
	}{
		{"M01", true},
		{"M12", true},
		{"M13", false},
		{"S01", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (Observation{Period: tt.period}).IsMonthly(); got != tt.want {
			t.Errorf("Observation{Period: %q}.IsMonthly() = %v, want %v", tt.period, got, tt.want)
		}
	}
}

func TestObservation_Month(t *testing.T) {
	tests := []struct {
		period string
		want   int
	}{
		{"M01", 1},
		{"M09", 9},
		{"M12", 12},
		{"M13", 0},
		{"M00", 0},
		{"Mxx", 0},
		{"S01", 0},
	}
	for _, tt := range tests {
		if got := (Observation{Period: tt.period}).Month(); got != tt.want {
			t.Errorf("Observation{Period: %q}.Month() = %d, want %d", tt.period, got, tt.want)
		}
	}
}
