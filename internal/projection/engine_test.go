package projection_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ai-cpi-outlook/internal/catalog"
	"github.com/Veraticus/ai-cpi-outlook/internal/model"
	"github.com/Veraticus/ai-cpi-outlook/internal/projection"
	"github.com/Veraticus/ai-cpi-outlook/internal/testutil/categories"
)

const delta = 1e-9

// unitConfig is the default calibration without impact scaling, so fixture
// modifier values come through unchanged.
func unitConfig() projection.Config {
	cfg := projection.DefaultConfig()
	cfg.ImpactScale = 1
	return cfg
}

func newEngine(t *testing.T, fx categories.Fixture, cfg projection.Config) *projection.Engine {
	t.Helper()
	e, err := projection.New(fx.Tree, fx.Modifiers, cfg)
	require.NoError(t, err)
	return e
}

func defaultEngine(t *testing.T) (*projection.Engine, *catalog.Dataset) {
	t.Helper()
	ds, err := catalog.LoadDefault()
	require.NoError(t, err)
	cfg := projection.DefaultConfig()
	cfg.History = ds.History
	e, err := projection.New(ds.Tree, ds.Modifiers, cfg)
	require.NoError(t, err)
	return e, ds
}

// stubModifiers answers every lookup, including the baseline scenario.
type stubModifiers struct {
	impact float64
}

func (s stubModifiers) Lookup(id string, sc model.Scenario, h model.Horizon) (model.ImpactModifier, bool) {
	return model.ImpactModifier{
		ComponentID:       id,
		Scenario:          sc,
		Horizon:           h,
		Confidence:        model.ConfidenceHigh,
		InflationImpactPp: s.impact,
		WeightShiftPp:     s.impact,
	}, true
}

func TestNew(t *testing.T) {
	fx := categories.TwoLeafParent(t)

	_, err := projection.New(nil, fx.Modifiers, projection.DefaultConfig())
	require.Error(t, err)

	bad := projection.DefaultConfig()
	bad.MaxTrajectoryPoints = 0
	_, err = projection.New(fx.Tree, fx.Modifiers, bad)
	require.ErrorIs(t, err, projection.ErrInvalidConfig)

	e, err := projection.New(fx.Tree, nil, projection.DefaultConfig())
	require.NoError(t, err)
	assert.Zero(t, e.ProjectComponent(categories.Bread, model.ScenarioModerate, model.Horizon10Y).AIImpactPp)
	assert.Contains(t, e.String(), "current=2.70")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(*projection.Config)
		name    string
		wantErr bool
	}{
		{name: "defaults", mutate: func(*projection.Config) {}},
		{name: "zero speed", mutate: func(c *projection.Config) { c.MeanReversionSpeed = 0 }},
		{name: "nan rate", mutate: func(c *projection.Config) { c.CurrentRate = math.NaN() }, wantErr: true},
		{name: "infinite target", mutate: func(c *projection.Config) { c.TargetRate = math.Inf(1) }, wantErr: true},
		{name: "negative speed", mutate: func(c *projection.Config) { c.MeanReversionSpeed = -0.1 }, wantErr: true},
		{name: "negative scale", mutate: func(c *projection.Config) { c.ImpactScale = -1 }, wantErr: true},
		{name: "no trajectory points", mutate: func(c *projection.Config) { c.MaxTrajectoryPoints = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := projection.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, projection.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBaselineTrend(t *testing.T) {
	fx := categories.TwoLeafParent(t)
	e := newEngine(t, fx, projection.DefaultConfig())

	assert.InDelta(t, 2.7, e.BaselineTrend(0), delta)
	assert.InDelta(t, 2.0+0.7*math.Exp(-3), e.BaselineTrend(10), delta)
	assert.InDelta(t, 2.0, e.BaselineTrend(100), 1e-6)

	prev := e.BaselineTrend(0)
	for year := 1; year <= 30; year++ {
		cur := e.BaselineTrend(float64(year))
		assert.Less(t, cur, prev, "year %d", year)
		assert.Greater(t, cur, 2.0, "year %d", year)
		prev = cur
	}
}

func TestBaselineTrend_RisingTowardTarget(t *testing.T) {
	cfg := projection.DefaultConfig()
	cfg.CurrentRate = 1.0
	e := newEngine(t, categories.TwoLeafParent(t), cfg)

	assert.InDelta(t, 1.0, e.BaselineTrend(0), delta)
	assert.Greater(t, e.BaselineTrend(5), e.BaselineTrend(1))
	assert.Less(t, e.BaselineTrend(50), 2.0)
}

func TestAIImpactAtTime(t *testing.T) {
	assert.InDelta(t, 0, projection.AIImpactAtTime(-1.5, 0, 10), delta)
	assert.InDelta(t, -0.75, projection.AIImpactAtTime(-1.5, 5, 10), delta)
	assert.InDelta(t, -1.5, projection.AIImpactAtTime(-1.5, 10, 10), delta)
	assert.InDelta(t, 0, projection.AIImpactAtTime(-1.5, 5, 0), delta)
}

func TestProjectComponent(t *testing.T) {
	fx := categories.SmallBasket(t)
	e := newEngine(t, fx, unitConfig())
	base := e.BaselineTrend(10)

	got := e.ProjectComponent(categories.Bread, model.ScenarioModerate, model.Horizon10Y)
	assert.Equal(t, categories.Bread, got.ComponentID)
	assert.InDelta(t, base, got.BaselineRate, delta)
	assert.InDelta(t, base-0.2, got.ProjectedRate, delta)
	assert.InDelta(t, -0.2, got.AIImpactPp, delta)
	assert.InDelta(t, 30, got.OriginalWeight, delta)
	assert.InDelta(t, 29.6, got.AdjustedWeight, delta)
	assert.InDelta(t, -0.4, got.WeightShiftPp, delta)

	t.Run("no modifier", func(t *testing.T) {
		got := e.ProjectComponent(categories.Care, model.ScenarioModerate, model.Horizon10Y)
		assert.InDelta(t, got.BaselineRate, got.ProjectedRate, delta)
		assert.InDelta(t, 20, got.AdjustedWeight, delta)
	})

	t.Run("unknown id is neutral", func(t *testing.T) {
		got := e.ProjectComponent("ghost", model.ScenarioModerate, model.Horizon10Y)
		assert.Equal(t, model.ProjectionResult{ComponentID: "ghost", BaselineRate: 2.7, ProjectedRate: 2.7}, got)
	})

	t.Run("impact scale multiplies modifiers", func(t *testing.T) {
		cfg := unitConfig()
		cfg.ImpactScale = 5
		scaled := newEngine(t, fx, cfg)
		got := scaled.ProjectComponent(categories.Bread, model.ScenarioModerate, model.Horizon10Y)
		assert.InDelta(t, -1.0, got.AIImpactPp, delta)
		assert.InDelta(t, -2.0, got.WeightShiftPp, delta)
	})
}

func TestBaselineScenarioIsNeutral(t *testing.T) {
	fx := categories.SmallBasket(t)
	e, err := projection.New(fx.Tree, stubModifiers{impact: 3}, unitConfig())
	require.NoError(t, err)

	for _, h := range model.Horizons() {
		agg := e.CalculateAggregateProjection(model.ScenarioBaseline, h)
		assert.InDelta(t, agg.BaselineCPI, agg.ProjectedCPI, delta, string(h))
		assert.InDelta(t, 0, agg.TotalAIImpactPp, delta, string(h))
		for _, r := range agg.ComponentResults {
			assert.Zero(t, r.AIImpactPp, r.ComponentID)
			assert.Zero(t, r.WeightShiftPp, r.ComponentID)
		}

		imp := e.AggregateComponentImpact(categories.Goods, model.ScenarioBaseline, h)
		assert.Zero(t, imp.AIImpactPp)
		assert.False(t, imp.Direct)
	}

	// The stub still applies to AI scenarios.
	got := e.ProjectComponent(categories.Bread, model.ScenarioModerate, model.Horizon1Y)
	assert.InDelta(t, 3, got.AIImpactPp, delta)
}
