package restructure_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/outline"
	"github.com/nikbrunner/bmr/internal/restructure"
	"github.com/nikbrunner/bmr/internal/snapshot"
	"github.com/nikbrunner/bmr/internal/storage"
	"github.com/nikbrunner/bmr/internal/tree"
	"github.com/nikbrunner/bmr/internal/tree/treetest"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	svc       *tree.SQLite
	snapshots *snapshot.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := treetest.OpenDB(t)
	svc := tree.NewSQLite(db)
	kv := storage.NewSQLiteKV(db, storage.SnapshotNamespace)
	return fixture{svc: svc, snapshots: snapshot.New(svc, kv, snapshot.WithLogger(quiet))}
}

func TestSimulate_ExistingFolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ids := treetest.Seed(t, f.svc, "1", "Docs/")
	spec := treetest.Seed(t, f.svc, model.OtherID, "Spec https://x.com")
	r := restructure.New(f.svc, f.snapshots, restructure.WithLogger(quiet))

	plan, err := r.Simulate(ctx, "Docs/\n  Spec https://x.com")
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	creates, _ := model.CountOperations(plan.Operations)
	if creates != 0 {
		t.Errorf("expected no creates, got %v", plan.Operations)
	}
	want := model.Move{ID: spec["Spec"], Destination: model.MoveDestination{ParentID: ids["Docs"], Index: 0}}
	found := false
	for _, op := range plan.Operations {
		if op == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %v in %v", want, plan.Operations)
	}
}

func TestSimulate_NoMutationAndRepeatable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	treetest.Seed(t, f.svc, "1", "Go https://go.dev\nRust https://rust-lang.org")
	r := restructure.New(f.svc, f.snapshots,
		restructure.WithLogger(quiet),
		restructure.WithTempIDGenerator(func() string { return "temp_langs" }),
	)
	before := treetest.MustDump(t, f.svc)

	text := "Langs/\n  Rust https://rust-lang.org\n  Go https://go.dev"
	first, err := r.Simulate(ctx, text)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Simulate(ctx, text)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Operations, second.Operations) {
		t.Errorf("simulations differ:\n%v\n%v", first.Operations, second.Operations)
	}
	if got := treetest.MustDump(t, f.svc); got != before {
		t.Errorf("Simulate changed the tree:\n%s", got)
	}
}

func TestExecute_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	treetest.Seed(t, f.svc, model.OtherID, "Go https://go.dev\nRust https://rust-lang.org")
	r := restructure.New(f.svc, f.snapshots, restructure.WithLogger(quiet))

	res := r.Execute(ctx, "Langs/\n  Rust https://rust-lang.org\n  Go https://go.dev")

	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.SnapshotID == "" || len(res.Operations) == 0 {
		t.Errorf("expected snapshot id and operations, got %+v", res)
	}
	if _, err := f.snapshots.Get(ctx, res.SnapshotID); err != nil {
		t.Errorf("snapshot %s not stored: %v", res.SnapshotID, err)
	}

	roots, err := f.svc.GetTree(ctx)
	if err != nil {
		t.Fatal(err)
	}
	bar := model.Find(roots, model.BookmarksBarID)
	if len(bar.Children) != 1 || bar.Children[0].Title != "Langs" {
		t.Fatalf("expected Langs in the bar, got %+v", bar.Children)
	}
	var titles []string
	for _, c := range bar.Children[0].Children {
		titles = append(titles, c.Title)
	}
	if got := strings.Join(titles, ","); got != "Rust,Go" {
		t.Errorf("expected Rust,Go, got %s", got)
	}
}

func TestExecute_NothingToDo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := restructure.New(f.svc, f.snapshots, restructure.WithLogger(quiet))

	res := r.Execute(ctx, "  \n\n")

	if !res.Success || res.SnapshotID != "" {
		t.Errorf("expected success without snapshot, got %+v", res)
	}
	if !strings.Contains(res.Message, "Nothing to do") {
		t.Errorf("unexpected message %q", res.Message)
	}
	snaps, err := f.snapshots.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected no snapshots, got %d", len(snaps))
	}
}

func TestExecute_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	treetest.Seed(t, f.svc, model.OtherID, "Spec https://example.com/spec")
	faulty := &treetest.Faulty{Service: f.svc, FailOn: 2}
	r := restructure.New(faulty, f.snapshots, restructure.WithLogger(quiet))

	res := r.Execute(ctx, "Docs/\n  Spec https://example.com/spec")

	if res.Success {
		t.Fatalf("expected failure, got %+v", res)
	}
	if !strings.HasSuffix(res.Message, "rolled back automatically") {
		t.Errorf("unexpected message %q", res.Message)
	}
	if res.SnapshotID == "" || res.Error == "" {
		t.Errorf("expected snapshot id and error, got %+v", res)
	}

	snap, err := f.snapshots.Get(ctx, res.SnapshotID)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := treetest.MustDump(t, f.svc), treetest.Dump(snap.Tree); got != want {
		t.Errorf("tree not rolled back:\n%s\nwant:\n%s", got, want)
	}
}

// rollback wraps a Manager with a fixed Restore outcome.
type rollback struct {
	*snapshot.Manager
	ok  bool
	err error
}

func (r rollback) Restore(context.Context, string) (bool, error) {
	return r.ok, r.err
}

func TestExecute_RollbackOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		ok      bool
		err     error
		message string
	}{
		{"rollback failed", false, nil, "rollback failed"},
		{"rollback error", false, errors.New("disk gone"), "rollback raised an error: disk gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			treetest.Seed(t, f.svc, model.OtherID, "Spec https://example.com/spec")
			faulty := &treetest.Faulty{Service: f.svc, FailOn: 1}
			snaps := rollback{Manager: f.snapshots, ok: tt.ok, err: tt.err}
			r := restructure.New(faulty, snaps, restructure.WithLogger(quiet))

			res := r.Execute(context.Background(), "Docs/\n  Spec https://example.com/spec")

			if res.Success {
				t.Fatal("expected failure")
			}
			if !strings.Contains(res.Message, tt.message) {
				t.Errorf("expected message containing %q, got %q", tt.message, res.Message)
			}
			if !strings.Contains(res.Message, res.SnapshotID) {
				t.Errorf("expected message to name snapshot %s, got %q", res.SnapshotID, res.Message)
			}
			if strings.Contains(res.Message, "rolled back automatically") {
				t.Errorf("failed rollback reported as success: %q", res.Message)
			}
		})
	}
}

// failingPrune wraps a Manager whose Prune always fails.
type failingPrune struct {
	*snapshot.Manager
}

func (failingPrune) Prune(context.Context, int) (int, error) {
	return 0, errors.New("prune broke")
}

func TestExecute_PruneFailureIgnored(t *testing.T) {
	f := newFixture(t)
	treetest.Seed(t, f.svc, model.OtherID, "Go https://go.dev")
	r := restructure.New(f.svc, failingPrune{f.snapshots}, restructure.WithLogger(quiet))

	res := r.Execute(context.Background(), "Go https://go.dev")

	if !res.Success {
		t.Errorf("expected prune failure not to fail the run, got %+v", res)
	}
}

func TestExecute_PrunesSnapshots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		if _, err := f.snapshots.Create(ctx, ""); err != nil {
			t.Fatal(err)
		}
	}
	treetest.Seed(t, f.svc, model.OtherID, "Go https://go.dev")
	r := restructure.New(f.svc, f.snapshots, restructure.WithLogger(quiet), restructure.WithMaxSnapshots(2))

	if res := r.Execute(ctx, "Go https://go.dev"); !res.Success {
		t.Fatalf("Execute failed: %+v", res)
	}

	snaps, err := f.snapshots.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Errorf("expected 2 snapshots after prune, got %d", len(snaps))
	}
}

func TestPlan_Describe(t *testing.T) {
	f := newFixture(t)
	ids := treetest.Seed(t, f.svc, model.OtherID, "Go https://go.dev")
	r := restructure.New(f.svc, f.snapshots,
		restructure.WithLogger(quiet),
		restructure.WithTempIDGenerator(func() string { return "temp_1" }),
	)

	plan, err := r.Simulate(context.Background(), "Langs/\n  Go https://go.dev")
	if err != nil {
		t.Fatal(err)
	}

	// Langs is created as the bar's only child, so placing it is dropped.
	want := `1. create folder "Langs" in "Bookmarks Bar" (1)
2. move "Go" (` + ids["Go"] + `) to "Langs" (temp_1) at 0
`
	if got := plan.Describe(); got != want {
		t.Errorf("unexpected description:\n%s\nwant:\n%s", got, want)
	}
}

// cancelling cancels the run's context after the first folder is created.
type cancelling struct {
	tree.Service
	cancel context.CancelFunc
}

func (c cancelling) CreateFolder(ctx context.Context, title, parentID string) (*model.Node, error) {
	n, err := c.Service.CreateFolder(ctx, title, parentID)
	c.cancel()
	return n, err
}

func TestExecute_IgnoresCancellation(t *testing.T) {
	f := newFixture(t)
	treetest.Seed(t, f.svc, model.OtherID, "Spec https://example.com/spec")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := restructure.New(cancelling{Service: f.svc, cancel: cancel}, f.snapshots, restructure.WithLogger(quiet))

	res := r.Execute(ctx, "Docs/\n  Spec https://example.com/spec")

	if !res.Success {
		t.Fatalf("expected the run to finish, got %+v", res)
	}
	roots, err := f.svc.GetTree(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	bar := model.Find(roots, model.BookmarksBarID)
	if got := outline.Render(bar.Children); got != "Docs/\n  Spec https://example.com/spec\n" {
		t.Errorf("unexpected layout %q", got)
	}
}

func TestExecute_UnchangedLayoutIsNothingToDo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	treetest.Seed(t, f.svc, "1", "Dev/\n  Go https://go.dev\nNews https://news.ycombinator.com")
	r := restructure.New(f.svc, f.snapshots, restructure.WithLogger(quiet))

	roots, err := f.svc.GetTree(ctx)
	if err != nil {
		t.Fatal(err)
	}
	res := r.Execute(ctx, outline.Render(model.Find(roots, model.BookmarksBarID).Children))

	if !res.Success || res.Message != "Nothing to do: bookmarks already match the layout" {
		t.Errorf("expected nothing to do, got %+v", res)
	}
	snaps, err := f.snapshots.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected no snapshot for an unchanged layout, got %d", len(snaps))
	}

	res = r.Execute(ctx, "Missing https://missing.example")
	if !res.Success || res.Message != "Nothing to do: 1 entries could not be placed" {
		t.Errorf("expected unplaced entries to be reported, got %+v", res)
	}
}
