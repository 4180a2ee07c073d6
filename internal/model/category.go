package model

// Level is the informational depth of a category in the expenditure hierarchy.
// Leaf-ness is decided by Children, never by Level.
type Level int

const (
	// LevelMajorGroup is a root of the hierarchy (e.g. Housing).
	LevelMajorGroup Level = 0
	// LevelExpenditureClass is an intermediate grouping (e.g. Shelter).
	LevelExpenditureClass Level = 1
	// LevelItemStratum is the finest published grouping (e.g. Rent of primary residence).
	LevelItemStratum Level = 2
)

// String returns a human readable label for the level.
func (l Level) String() string {
	switch l {
	case LevelMajorGroup:
		return "major group"
	case LevelExpenditureClass:
		return "expenditure class"
	case LevelItemStratum:
		return "item stratum"
	default:
		return "unknown"
	}
}

// CategoryNode is one node of the expenditure hierarchy.
type CategoryNode struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	SeriesID string   `yaml:"series_id"`
	ParentID string   `yaml:"parent_id"`
	Children []string `yaml:"children"`
	Weight   float64  `yaml:"weight"`
	Level    Level    `yaml:"level"`
}

// IsLeaf reports whether the node has no children.
func (c CategoryNode) IsLeaf() bool {
	return len(c.Children) == 0
}

// IsRoot reports whether the node has no parent.
func (c CategoryNode) IsRoot() bool {
	return c.ParentID == ""
}
