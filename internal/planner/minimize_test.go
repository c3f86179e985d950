package planner_test

import (
	"reflect"
	"testing"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/planner"
)

func move(id, parentID string, index int) model.Move {
	return model.Move{ID: id, Destination: model.MoveDestination{ParentID: parentID, Index: index}}
}

func barTree() []model.Node {
	return []model.Node{{
		ID: "0",
		Children: []model.Node{
			{ID: "1", ParentID: "0", Title: "Bookmarks Bar", Children: []model.Node{
				{ID: "10", ParentID: "1", Title: "a", URL: "https://a.example"},
				{ID: "11", ParentID: "1", Title: "b", URL: "https://b.example", Index: 1},
				{ID: "12", ParentID: "1", Title: "c", URL: "https://c.example", Index: 2},
			}},
			{ID: "2", ParentID: "0", Title: "Other Bookmarks", Index: 1},
		},
	}}
}

func TestMinimize(t *testing.T) {
	tests := []struct {
		name string
		ops  []model.Operation
		want []model.Operation
	}{
		{
			name: "layout already matches",
			ops:  []model.Operation{move("10", "1", 0), move("11", "1", 1), move("12", "1", 2)},
			want: []model.Operation{},
		},
		{
			name: "later moves settle after an earlier one",
			ops:  []model.Operation{move("12", "1", 0), move("10", "1", 1), move("11", "1", 2)},
			want: []model.Operation{move("12", "1", 0)},
		},
		{
			name: "move to another parent stays",
			ops:  []model.Operation{move("11", "2", 0), move("10", "1", 0), move("12", "1", 1)},
			want: []model.Operation{move("11", "2", 0)},
		},
		{
			name: "index past the end is clamped",
			ops:  []model.Operation{move("12", "1", 9)},
			want: []model.Operation{},
		},
		{
			name: "new folder placed where it was created",
			ops: []model.Operation{
				model.CreateFolder{Title: "New", ParentID: "2", TempID: "temp_1"},
				move("temp_1", "2", 0),
				move("10", "temp_1", 0),
			},
			want: []model.Operation{
				model.CreateFolder{Title: "New", ParentID: "2", TempID: "temp_1"},
				move("10", "temp_1", 0),
			},
		},
		{
			name: "new folder moved ahead of siblings",
			ops: []model.Operation{
				model.CreateFolder{Title: "New", ParentID: "1", TempID: "temp_1"},
				move("temp_1", "1", 0),
			},
			want: []model.Operation{
				model.CreateFolder{Title: "New", ParentID: "1", TempID: "temp_1"},
				move("temp_1", "1", 0),
			},
		},
		{
			name: "unknown node stays",
			ops:  []model.Operation{move("99", "1", 0)},
			want: []model.Operation{move("99", "1", 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planner.Minimize(barTree(), tt.ops)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ops mismatch\n got: %v\nwant: %v", got, tt.want)
			}
		})
	}
}

func TestMinimize_ReplanAfterApplyIsEmpty(t *testing.T) {
	ops, _ := plan(t, treeWithDocs(), "Docs/\nOther Bookmarks/\n  Spec https://x.com")

	if got := planner.Minimize(treeWithDocs(), ops); len(got) != 0 {
		t.Errorf("expected nothing to do, got %v", got)
	}
}
