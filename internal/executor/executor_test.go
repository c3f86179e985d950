package executor_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nikbrunner/bmr/internal/executor"
	"github.com/nikbrunner/bmr/internal/index"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/outline"
	"github.com/nikbrunner/bmr/internal/planner"
	"github.com/nikbrunner/bmr/internal/tree"
	"github.com/nikbrunner/bmr/internal/tree/treetest"
)

func TestOrder_CreatesFirst(t *testing.T) {
	ops := []model.Operation{
		model.Move{ID: "9", Destination: model.MoveDestination{ParentID: "temp_1"}},
		model.CreateFolder{Title: "A", ParentID: "1", TempID: "temp_1"},
		model.Move{ID: "8", Destination: model.MoveDestination{ParentID: "temp_2", Index: 1}},
		model.CreateFolder{Title: "B", ParentID: "temp_1", TempID: "temp_2"},
	}
	input := append([]model.Operation(nil), ops...)

	got := executor.Order(ops)

	want := []model.Operation{ops[1], ops[3], ops[0], ops[2]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected order:\n got %v\nwant %v", got, want)
	}
	if !reflect.DeepEqual(ops, input) {
		t.Error("Order modified its input")
	}

	seenMove := false
	for _, op := range got {
		switch op.(type) {
		case model.Move:
			seenMove = true
		case model.CreateFolder:
			if seenMove {
				t.Fatalf("create after move in %v", got)
			}
		}
	}
}

func TestExecute_NewFolderAndMove(t *testing.T) {
	ctx := context.Background()
	svc := treetest.Open(t)
	ids := treetest.Seed(t, svc, model.OtherID, "Spec https://example.com/spec")

	roots, err := svc.GetTree(ctx)
	if err != nil {
		t.Fatal(err)
	}
	ops, warnings := planner.Plan(index.Build(roots), outline.Parse("Docs/\n  Spec https://example.com/spec"), planner.Options{})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	var tempID string
	for _, op := range ops {
		if c, ok := op.(model.CreateFolder); ok {
			tempID = c.TempID
		}
	}

	report, err := executor.Execute(ctx, svc, ops, executor.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if report.Applied != len(ops) {
		t.Errorf("expected %d applied, got %d", len(ops), report.Applied)
	}

	docsID, ok := report.Resolved[tempID]
	if !ok {
		t.Fatalf("temp id %s not resolved: %v", tempID, report.Resolved)
	}
	docs, err := svc.Get(ctx, docsID)
	if err != nil {
		t.Fatalf("Get(Docs) failed: %v", err)
	}
	if docs.Title != "Docs" || docs.ParentID != model.BookmarksBarID {
		t.Errorf("unexpected Docs %+v", docs)
	}

	spec, err := svc.Get(ctx, ids["Spec"])
	if err != nil {
		t.Fatalf("Get(Spec) failed: %v", err)
	}
	if spec.ParentID != docsID || spec.Index != 0 {
		t.Errorf("expected Spec at %s[0], got %s[%d]", docsID, spec.ParentID, spec.Index)
	}
}

func TestExecute_NestedTempParents(t *testing.T) {
	ctx := context.Background()
	svc := treetest.Open(t)

	ops := []model.Operation{
		model.CreateFolder{Title: "Outer", ParentID: "1", TempID: "temp_a"},
		model.CreateFolder{Title: "Inner", ParentID: "temp_a", TempID: "temp_b"},
	}

	report, err := executor.Execute(ctx, svc, ops, executor.Options{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	inner, err := svc.Get(ctx, report.Resolved["temp_b"])
	if err != nil {
		t.Fatal(err)
	}
	if inner.ParentID != report.Resolved["temp_a"] {
		t.Errorf("expected Inner under %s, got %s", report.Resolved["temp_a"], inner.ParentID)
	}
}

func TestExecute_UnresolvedTempID(t *testing.T) {
	svc := &treetest.Faulty{Service: treetest.Open(t)}

	ops := []model.Operation{
		model.Move{ID: "temp_missing", Destination: model.MoveDestination{ParentID: "1"}},
	}

	_, err := executor.Execute(context.Background(), svc, ops, executor.Options{})
	if !errors.Is(err, executor.ErrUnresolvedTempID) {
		t.Fatalf("expected ErrUnresolvedTempID, got %v", err)
	}
	if svc.Calls() != 0 {
		t.Errorf("expected no mutation calls, got %d", svc.Calls())
	}
}

func TestExecute_AbortsOnFirstError(t *testing.T) {
	ctx := context.Background()
	base := treetest.Open(t)
	ids := treetest.Seed(t, base, "1", "x https://x.com")
	svc := &treetest.Faulty{Service: base, FailOn: 2}

	ops := []model.Operation{
		model.CreateFolder{Title: "A", ParentID: "1", TempID: "temp_a"},
		model.CreateFolder{Title: "B", ParentID: "1", TempID: "temp_b"},
		model.Move{ID: ids["x"], Destination: model.MoveDestination{ParentID: "temp_a"}},
	}

	report, err := executor.Execute(ctx, svc, ops, executor.Options{})

	var opErr *executor.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %v", err)
	}
	if opErr.Index != 1 {
		t.Errorf("expected failure at operation index 1, got %d", opErr.Index)
	}
	if !errors.Is(err, treetest.ErrInjected) {
		t.Errorf("expected injected error to be wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), `"B"`) {
		t.Errorf("expected error to name the failed operation, got %q", err)
	}
	if report.Applied != 1 || svc.Calls() != 2 {
		t.Errorf("expected 1 applied and 2 calls, got %d and %d", report.Applied, svc.Calls())
	}

	x, err := base.Get(ctx, ids["x"])
	if err != nil {
		t.Fatal(err)
	}
	if x.ParentID != "1" {
		t.Errorf("move after failure was applied: x is under %s", x.ParentID)
	}
}

func TestExecute_SkipsMoveIntoBookmark(t *testing.T) {
	ctx := context.Background()
	svc := treetest.Open(t)
	ids := treetest.Seed(t, svc, "1", "Go https://go.dev\nNews https://news.ycombinator.com")

	move := model.Move{ID: ids["News"], Destination: model.MoveDestination{ParentID: ids["Go"]}}
	report, err := executor.Execute(ctx, svc, []model.Operation{move}, executor.Options{})
	if err != nil {
		t.Fatalf("expected skip, not failure: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != move {
		t.Errorf("expected move to be reported as skipped, got %v", report.Skipped)
	}
	if report.Applied != 0 {
		t.Errorf("expected nothing applied, got %d", report.Applied)
	}

	news, err := svc.Get(ctx, ids["News"])
	if err != nil {
		t.Fatal(err)
	}
	if news.ParentID != "1" || news.Index != 1 {
		t.Errorf("skipped move changed News: %+v", news)
	}
}

func TestExecute_MissingDestinationIsFatal(t *testing.T) {
	ctx := context.Background()
	svc := treetest.Open(t)
	ids := treetest.Seed(t, svc, "1", "Go https://go.dev")

	ops := []model.Operation{
		model.Move{ID: ids["Go"], Destination: model.MoveDestination{ParentID: "404"}},
	}

	_, err := executor.Execute(ctx, svc, ops, executor.Options{})
	if !errors.Is(err, tree.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
