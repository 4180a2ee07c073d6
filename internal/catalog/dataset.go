package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

//go:embed data/*.yaml
var embedded embed.FS

// ErrInvalidDataset indicates a dataset file that cannot be decoded or is inconsistent.
var ErrInvalidDataset = errors.New("invalid dataset")

// Sources names override files for each dataset. Empty paths use the embedded defaults.
type Sources struct {
	Categories string `mapstructure:"categories"`
	Modifiers  string `mapstructure:"modifiers"`
	Scenarios  string `mapstructure:"scenarios"`
	Citations  string `mapstructure:"citations"`
	History    string `mapstructure:"history"`
}

// Dataset bundles every static input of the engine.
type Dataset struct {
	Tree          *Tree
	Modifiers     *ModifierTable
	citations     map[string]model.Citation
	Scenarios     []model.ScenarioInfo
	CitationOrder []string
	History       []model.HistoricalRate
}

// Citation returns the citation record with the given id.
func (d *Dataset) Citation(id string) (model.Citation, bool) {
	c, ok := d.citations[id]
	return c, ok
}

// Citations returns every citation in dataset order.
func (d *Dataset) Citations() []model.Citation {
	out := make([]model.Citation, 0, len(d.CitationOrder))
	for _, id := range d.CitationOrder {
		out = append(out, d.citations[id])
	}
	return out
}

// Scenario returns the metadata of a scenario.
func (d *Dataset) Scenario(id model.Scenario) (model.ScenarioInfo, bool) {
	for _, s := range d.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return model.ScenarioInfo{}, false
}

// LoadDefault loads the embedded datasets.
func LoadDefault() (*Dataset, error) {
	return Load(Sources{}, slog.Default())
}

// Load reads, decodes and cross-validates every dataset.
func Load(src Sources, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var nodes []model.CategoryNode
	if err := decode(src.Categories, "data/categories.yaml", &nodes); err != nil {
		return nil, err
	}
	tree, err := NewTree(nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to build category tree: %w", err)
	}

	var blocks []modifierBlock
	if err := decode(src.Modifiers, "data/modifiers.yaml", &blocks); err != nil {
		return nil, err
	}
	mods, err := expandModifiers(blocks)
	if err != nil {
		return nil, err
	}
	table, err := NewModifierTable(mods)
	if err != nil {
		return nil, fmt.Errorf("failed to build modifier table: %w", err)
	}
	for id := range table.ComponentIDs() {
		if _, ok := tree.Get(id); !ok {
			return nil, fmt.Errorf("%w: modifier for %s", ErrMissingReference, id)
		}
	}

	var scenarios []model.ScenarioInfo
	if err := decode(src.Scenarios, "data/scenarios.yaml", &scenarios); err != nil {
		return nil, err
	}
	for _, s := range scenarios {
		if _, err := model.ParseScenario(string(s.ID)); err != nil {
			return nil, fmt.Errorf("%w: scenarios: %w", ErrInvalidDataset, err)
		}
	}

	var citations []model.Citation
	if err := decode(src.Citations, "data/citations.yaml", &citations); err != nil {
		return nil, err
	}

	var history []model.HistoricalRate
	if err := decode(src.History, "data/history.yaml", &history); err != nil {
		return nil, err
	}

	ds := &Dataset{
		Tree:      tree,
		Modifiers: table,
		Scenarios: scenarios,
		History:   history,
		citations: make(map[string]model.Citation, len(citations)),
	}
	for _, c := range citations {
		if _, dup := ds.citations[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate citation %s", ErrInvalidDataset, c.ID)
		}
		ds.citations[c.ID] = c
		ds.CitationOrder = append(ds.CitationOrder, c.ID)
	}
	for id := range table.CitationIDs() {
		if _, ok := ds.citations[id]; !ok {
			logger.Warn("modifier references unknown citation", "citation", id)
		}
	}

	logger.Debug("dataset loaded",
		"categories", tree.Len(),
		"leaves", len(tree.Leaves()),
		"modifiers", table.Len(),
		"citations", len(citations))

	return ds, nil
}

func decode(path, embeddedName string, out any) error {
	var (
		raw []byte
		err error
	)
	if path != "" {
		raw, err = os.ReadFile(path)
	} else {
		raw, err = fs.ReadFile(embedded, embeddedName)
		path = embeddedName
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDataset, path, err)
	}
	return nil
}

// modifierBlock is the authoring format: one block per component with a
// scenario x horizon grid of cells sharing the block's narrative.
type modifierBlock struct {
	Cells       map[string]map[string]modifierCell `yaml:"cells"`
	Component   string                             `yaml:"component"`
	Confidence  string                             `yaml:"confidence"`
	Explanation string                             `yaml:"explanation"`
	Citations   []string                           `yaml:"citations"`
}

type modifierCell struct {
	Impact      float64  `yaml:"impact"`
	WeightShift float64  `yaml:"weight_shift"`
	Confidence  string   `yaml:"confidence"`
	Explanation string   `yaml:"explanation"`
	Citations   []string `yaml:"citations"`
}

func expandModifiers(blocks []modifierBlock) ([]model.ImpactModifier, error) {
	var mods []model.ImpactModifier

	for _, b := range blocks {
		for name := range b.Cells {
			if _, err := model.ParseScenario(name); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDataset, b.Component, err)
			}
		}

		for _, scenario := range model.Scenarios() {
			row, ok := b.Cells[string(scenario)]
			if !ok {
				continue
			}
			for name := range row {
				if _, err := model.ParseHorizon(name); err != nil {
					return nil, fmt.Errorf("%w: %s/%s: %w", ErrInvalidDataset, b.Component, scenario, err)
				}
			}

			for _, horizon := range model.Horizons() {
				cell, ok := row[string(horizon)]
				if !ok {
					continue
				}
				m := model.ImpactModifier{
					ComponentID:       b.Component,
					Scenario:          scenario,
					Horizon:           horizon,
					Confidence:        model.Confidence(firstNonEmpty(cell.Confidence, b.Confidence)),
					Explanation:       firstNonEmpty(cell.Explanation, b.Explanation),
					Citations:         b.Citations,
					InflationImpactPp: cell.Impact,
					WeightShiftPp:     cell.WeightShift,
				}
				if cell.Citations != nil {
					m.Citations = cell.Citations
				}
				mods = append(mods, m)
			}
		}
	}

	return mods, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
