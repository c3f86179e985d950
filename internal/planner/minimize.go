package planner

import (
	"slices"

	"github.com/nikbrunner/bmr/internal/model"
)

// layout tracks child order while operations are replayed.
type layout struct {
	children map[string][]string
	parent   map[string]string
}

func newLayout(roots []model.Node) *layout {
	l := &layout{children: make(map[string][]string), parent: make(map[string]string)}
	var add func(nodes []model.Node, parentID string)
	add = func(nodes []model.Node, parentID string) {
		for _, n := range nodes {
			l.children[parentID] = append(l.children[parentID], n.ID)
			l.parent[n.ID] = parentID
			add(n.Children, n.ID)
		}
	}
	for _, r := range roots {
		add(r.Children, r.ID)
	}
	return l
}

// Minimize drops moves that would leave a node where it already is.
// Operations are replayed in order against roots with the tree's move
// rules (take the node out, insert at the index clamped to the remaining
// siblings), so the remaining operations reach the same final layout.
// Creates always stay.
func Minimize(roots []model.Node, ops []model.Operation) []model.Operation {
	l := newLayout(roots)
	out := make([]model.Operation, 0, len(ops))

	for _, op := range ops {
		switch op := op.(type) {
		case model.CreateFolder:
			l.children[op.ParentID] = append(l.children[op.ParentID], op.TempID)
			l.parent[op.TempID] = op.ParentID
			out = append(out, op)

		case model.Move:
			from, ok := l.parent[op.ID]
			if !ok {
				out = append(out, op)
				continue
			}
			at := slices.Index(l.children[from], op.ID)
			siblings := slices.Delete(slices.Clone(l.children[from]), at, at+1)

			to := op.Destination.ParentID
			dest := siblings
			if to != from {
				dest = l.children[to]
			}
			index := min(max(op.Destination.Index, 0), len(dest))
			if to == from && index == at {
				continue
			}

			l.children[from] = siblings
			l.children[to] = slices.Insert(slices.Clone(l.children[to]), index, op.ID)
			l.parent[op.ID] = to
			out = append(out, op)

		default:
			out = append(out, op)
		}
	}
	return out
}
