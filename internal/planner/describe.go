package planner

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/bmr/internal/index"
	"github.com/nikbrunner/bmr/internal/model"
)

// Describe renders operations as numbered, human-readable lines.
// Ids are annotated with titles from idx when known.
func Describe(ops []model.Operation, idx index.Index) string {
	names := make(map[string]string, len(idx))
	for _, e := range idx {
		names[e.ID] = e.Title
	}
	label := func(id string) string {
		if title, ok := names[id]; ok && title != "" {
			return fmt.Sprintf("%q (%s)", title, id)
		}
		return id
	}

	var b strings.Builder
	for i, op := range ops {
		switch op := op.(type) {
		case model.CreateFolder:
			fmt.Fprintf(&b, "%d. create folder %q in %s\n", i+1, op.Title, label(op.ParentID))
		case model.Move:
			fmt.Fprintf(&b, "%d. move %s to %s at %d\n", i+1, label(op.ID), label(op.Destination.ParentID), op.Destination.Index)
		}
	}
	return b.String()
}
