package catalog

import (
	"errors"
	"fmt"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// Modifier table errors.
var (
	ErrDuplicateModifier = errors.New("duplicate modifier")
	ErrInvalidModifier   = errors.New("invalid modifier")
)

// ModifierTable maps (component, scenario, horizon) to at most one modifier.
type ModifierTable struct {
	entries map[model.ModifierKey]model.ImpactModifier
}

// NewModifierTable indexes mods by composite key.
func NewModifierTable(mods []model.ImpactModifier) (*ModifierTable, error) {
	t := &ModifierTable{entries: make(map[model.ModifierKey]model.ImpactModifier, len(mods))}

	for _, m := range mods {
		if m.ComponentID == "" {
			return nil, fmt.Errorf("%w: empty component id", ErrInvalidModifier)
		}
		if _, err := model.ParseScenario(string(m.Scenario)); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidModifier, m.ComponentID, err)
		}
		if !m.Scenario.HasModifiers() {
			return nil, fmt.Errorf("%w: %s: scenario %s cannot carry modifiers", ErrInvalidModifier, m.ComponentID, m.Scenario)
		}
		if _, err := model.ParseHorizon(string(m.Horizon)); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidModifier, m.ComponentID, err)
		}
		if m.Confidence == "" {
			m.Confidence = model.ConfidenceMedium
		}
		if _, err := model.ParseConfidence(string(m.Confidence)); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidModifier, m.ComponentID, err)
		}

		key := m.Key()
		if _, exists := t.entries[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModifier, key)
		}
		m.Citations = append([]string(nil), m.Citations...)
		t.entries[key] = m
	}

	return t, nil
}

// Lookup returns the modifier for the key. A nil table has no modifiers.
func (t *ModifierTable) Lookup(componentID string, scenario model.Scenario, horizon model.Horizon) (model.ImpactModifier, bool) {
	if t == nil {
		return model.ImpactModifier{}, false
	}
	m, ok := t.entries[model.ModifierKey{ComponentID: componentID, Scenario: scenario, Horizon: horizon}]
	if ok {
		m.Citations = append([]string(nil), m.Citations...)
	}
	return m, ok
}

// Len returns the number of modifiers.
func (t *ModifierTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// ComponentIDs returns the distinct component ids that carry at least one modifier.
func (t *ModifierTable) ComponentIDs() map[string]bool {
	ids := make(map[string]bool)
	if t == nil {
		return ids
	}
	for key := range t.entries {
		ids[key.ComponentID] = true
	}
	return ids
}

// CitationIDs returns the distinct citation ids referenced by any modifier.
func (t *ModifierTable) CitationIDs() map[string]bool {
	ids := make(map[string]bool)
	if t == nil {
		return ids
	}
	for _, m := range t.entries {
		for _, c := range m.Citations {
			ids[c] = true
		}
	}
	return ids
}
