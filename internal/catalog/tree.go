// Package catalog holds the static reference data the projection engine consumes:
// the expenditure category tree and the AI impact modifier table.
package catalog

import (
	"errors"
	"fmt"

	"github.com/Veraticus/ai-cpi-outlook/internal/model"
)

// Structural errors reported at load time.
var (
	ErrCycle             = errors.New("category hierarchy contains a cycle")
	ErrMissingReference  = errors.New("reference to unknown category")
	ErrDuplicateCategory = errors.New("duplicate category id")
	ErrInvalidCategory   = errors.New("invalid category")
)

// Tree is an immutable forest of categories stored by id.
type Tree struct {
	nodes map[string]model.CategoryNode
	order []string
}

// NewTree validates nodes and builds a Tree. Dataset order is preserved for
// Roots, Leaves and ByLevel.
func NewTree(nodes []model.CategoryNode) (*Tree, error) {
	t := &Tree{
		nodes: make(map[string]model.CategoryNode, len(nodes)),
		order: make([]string, 0, len(nodes)),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: empty id (name %q)", ErrInvalidCategory, n.Name)
		}
		if n.Weight < 0 {
			return nil, fmt.Errorf("%w: %s has negative weight %.2f", ErrInvalidCategory, n.ID, n.Weight)
		}
		if _, exists := t.nodes[n.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, n.ID)
		}
		n.Children = append([]string(nil), n.Children...)
		t.nodes[n.ID] = n
		t.order = append(t.order, n.ID)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) validate() error {
	owner := make(map[string]string, len(t.nodes))

	for _, id := range t.order {
		n := t.nodes[id]
		if n.ParentID != "" {
			if _, ok := t.nodes[n.ParentID]; !ok {
				return fmt.Errorf("%w: %s has parent %s", ErrMissingReference, id, n.ParentID)
			}
		}
		for _, childID := range n.Children {
			child, ok := t.nodes[childID]
			if !ok {
				return fmt.Errorf("%w: %s lists child %s", ErrMissingReference, id, childID)
			}
			if prev, seen := owner[childID]; seen {
				return fmt.Errorf("%w: %s is a child of both %s and %s", ErrInvalidCategory, childID, prev, id)
			}
			owner[childID] = id
			if child.ParentID != id {
				return fmt.Errorf("%w: %s lists child %s whose parent is %q", ErrInvalidCategory, id, childID, child.ParentID)
			}
		}
	}

	for _, id := range t.order {
		n := t.nodes[id]
		if n.ParentID != "" && owner[id] != n.ParentID {
			return fmt.Errorf("%w: %s names parent %s which does not list it", ErrInvalidCategory, id, n.ParentID)
		}
	}

	return t.checkAcyclic()
}

// checkAcyclic walks the child graph with an explicit stack, three-colour marking.
func (t *Tree) checkAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(t.nodes))

	type frame struct {
		id   string
		next int
	}

	for _, start := range t.order {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = grey

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := t.nodes[top.id].Children
			if top.next >= len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			childID := children[top.next]
			top.next++

			switch color[childID] {
			case grey:
				return fmt.Errorf("%w: %s -> %s", ErrCycle, top.id, childID)
			case white:
				color[childID] = grey
				stack = append(stack, frame{id: childID})
			}
		}
	}
	return nil
}

// Len returns the number of categories.
func (t *Tree) Len() int {
	return len(t.order)
}

// Get returns the category with the given id.
func (t *Tree) Get(id string) (model.CategoryNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// All returns every category in dataset order.
func (t *Tree) All() []model.CategoryNode {
	out := make([]model.CategoryNode, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// Children returns the direct children of id. Unknown ids yield nil.
func (t *Tree) Children(id string) []model.CategoryNode {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	out := make([]model.CategoryNode, 0, len(n.Children))
	for _, childID := range n.Children {
		if child, ok := t.nodes[childID]; ok {
			out = append(out, child)
		}
	}
	return out
}

// Roots returns the parentless categories (major groups).
func (t *Tree) Roots() []model.CategoryNode {
	var out []model.CategoryNode
	for _, id := range t.order {
		if n := t.nodes[id]; n.IsRoot() {
			out = append(out, n)
		}
	}
	return out
}

// ByLevel returns the categories at the given informational level.
func (t *Tree) ByLevel(level model.Level) []model.CategoryNode {
	var out []model.CategoryNode
	for _, id := range t.order {
		if n := t.nodes[id]; n.Level == level {
			out = append(out, n)
		}
	}
	return out
}

// Leaves returns every category without children.
func (t *Tree) Leaves() []model.CategoryNode {
	var out []model.CategoryNode
	for _, id := range t.order {
		if n := t.nodes[id]; n.IsLeaf() {
			out = append(out, n)
		}
	}
	return out
}

// LeafDescendants returns the leaves under id in depth-first child order. A leaf
// yields itself; an unknown id yields nil. Unknown child ids are skipped.
func (t *Tree) LeafDescendants(id string) []model.CategoryNode {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}

	var leaves []model.CategoryNode
	visited := make(map[string]bool)
	stack := []string{id}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		n, ok := t.nodes[cur]
		if !ok {
			continue
		}
		if n.IsLeaf() {
			leaves = append(leaves, n)
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return leaves
}

// Path returns the chain of categories from the root down to id, inclusive.
// It returns nil when id is unknown or the chain does not reach a root.
func (t *Tree) Path(id string) []model.CategoryNode {
	var path []model.CategoryNode
	seen := make(map[string]bool)

	cur, ok := t.nodes[id]
	for ok && !seen[cur.ID] {
		seen[cur.ID] = true
		path = append(path, cur)
		if cur.IsRoot() {
			break
		}
		cur, ok = t.nodes[cur.ParentID]
	}

	if len(path) == 0 || !path[len(path)-1].IsRoot() {
		return nil
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
