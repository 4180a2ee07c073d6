package projection

import (
	"errors"
	"fmt"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// Engine evaluates projections over immutable inputs. All methods are pure
// and safe for concurrent use.
type Engine struct {
	tree Categories
	mods Modifiers
	cfg  Config
}

// New builds an Engine. A nil mods behaves as an empty modifier table.
func New(tree Categories, mods Modifiers, cfg Config) (*Engine, error) {
	if tree == nil {
		return nil, errors.New("projection: category tree is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.History = append([]model.HistoricalRate(nil), cfg.History...)
	return &Engine{tree: tree, mods: mods, cfg: cfg}, nil
}

// Config returns the engine's parameters.
func (e *Engine) Config() Config {
	cfg := e.cfg
	cfg.History = append([]model.HistoricalRate(nil), e.cfg.History...)
	return cfg
}

// BaselineTrend is the baseline rate t years from now.
func (e *Engine) BaselineTrend(t float64) float64 {
	return e.cfg.BaselineTrend(e.cfg.CurrentRate, t)
}

// lookup returns the modifier for a key. The baseline scenario never has one,
// whatever the modifier source holds.
func (e *Engine) lookup(id string, scenario model.Scenario, horizon model.Horizon) (model.ImpactModifier, bool) {
	if e.mods == nil || !scenario.HasModifiers() {
		return model.ImpactModifier{}, false
	}
	return e.mods.Lookup(id, scenario, horizon)
}

// scaled returns the impact and weight shift of a modifier after applying the impact scale.
func (e *Engine) scaled(id string, scenario model.Scenario, horizon model.Horizon) (impact, shift float64, mod model.ImpactModifier, ok bool) {
	mod, ok = e.lookup(id, scenario, horizon)
	if !ok {
		return 0, 0, mod, false
	}
	return mod.InflationImpactPp * e.cfg.ImpactScale, mod.WeightShiftPp * e.cfg.ImpactScale, mod, true
}

func (e *Engine) neutral(id string) model.ProjectionResult {
	return model.ProjectionResult{
		ComponentID:   id,
		BaselineRate:  e.cfg.CurrentRate,
		ProjectedRate: e.cfg.CurrentRate,
	}
}

// ProjectComponent projects one category at the horizon endpoint. Unknown ids
// yield a neutral result at the current rate with zero weights.
func (e *Engine) ProjectComponent(id string, scenario model.Scenario, horizon model.Horizon) model.ProjectionResult {
	node, ok := e.tree.Get(id)
	if !ok {
		return e.neutral(id)
	}

	baseRate := e.BaselineTrend(float64(horizon.Years()))
	impact, shift, _, _ := e.scaled(id, scenario, horizon)

	return model.ProjectionResult{
		ComponentID:    id,
		BaselineRate:   baseRate,
		ProjectedRate:  baseRate + impact,
		AIImpactPp:     impact,
		OriginalWeight: node.Weight,
		AdjustedWeight: node.Weight + shift,
		WeightShiftPp:  shift,
	}
}

// String describes the engine calibration.
func (e *Engine) String() string {
	return fmt.Sprintf("projection(current=%.2f target=%.2f k=%.2f scale=%.1f)",
		e.cfg.CurrentRate, e.cfg.TargetRate, e.cfg.MeanReversionSpeed, e.cfg.ImpactScale)
}
