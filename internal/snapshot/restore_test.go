package snapshot_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/snapshot"
	"github.com/nikbrunner/bmr/internal/storage"
	"github.com/nikbrunner/bmr/internal/tree"
	"github.com/nikbrunner/bmr/internal/tree/treetest"
)

func strPtr(s string) *string { return &s }

func TestRestore_Missing(t *testing.T) {
	_, m := setup(t)

	ok, err := m.Restore(context.Background(), "nope")
	if ok || err != nil {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestRestore_RemovesExtrasKeepsReserved(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	ids := treetest.Seed(t, svc, "1", "Dev/\n  Go https://go.dev\nNews https://news.ycombinator.com")

	snap, err := m.Create(ctx, "clean")
	if err != nil {
		t.Fatal(err)
	}
	want := treetest.MustDump(t, svc)

	treetest.Seed(t, svc, "1", "Extra https://extra.com")
	treetest.Seed(t, svc, model.OtherID, "Junk/\n  a https://a.com\n  b https://b.com")
	treetest.Seed(t, svc, model.MobileID, "Phone https://phone.com")
	if err := svc.Update(ctx, ids["Go"], model.Changes{Title: strPtr("Golang"), URL: strPtr("https://golang.org")}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Move(ctx, ids["Go"], model.Destination{ParentID: model.OtherID}); err != nil {
		t.Fatal(err)
	}

	ok, err := m.Restore(ctx, snap.ID)
	if err != nil || !ok {
		t.Fatalf("Restore failed: %v, %v", ok, err)
	}

	if got := treetest.MustDump(t, svc); got != want {
		t.Errorf("tree not restored:\n%s\nwant:\n%s", got, want)
	}
	for _, id := range model.ReservedIDs() {
		if _, err := svc.Get(ctx, id); err != nil {
			t.Errorf("reserved folder %s touched: %v", id, err)
		}
	}
}

func TestRestore_RestoresOrder(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	ids := treetest.Seed(t, svc, "1", "A/\nB/\nC/\nx https://x.com")

	snap, err := m.Create(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	want := treetest.MustDump(t, svc)

	zero := 0
	if err := svc.Move(ctx, ids["C"], model.Destination{ParentID: "1", Index: &zero}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Move(ctx, ids["x"], model.Destination{ParentID: ids["A"]}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Move(ctx, ids["A"], model.Destination{ParentID: ids["B"]}); err != nil {
		t.Fatal(err)
	}

	if ok, err := m.Restore(ctx, snap.ID); !ok || err != nil {
		t.Fatalf("Restore failed: %v, %v", ok, err)
	}
	if got := treetest.MustDump(t, svc); got != want {
		t.Errorf("order not restored:\n%s\nwant:\n%s", got, want)
	}
}

func TestRestore_RecreatesRemovedNodes(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	ids := treetest.Seed(t, svc, "1", "Dev/\n  Tools/\n    Go https://go.dev\n  Rust https://rust-lang.org\nNews https://news.ycombinator.com")
	want := barOutline(t, svc)

	snap, err := m.Create(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Move(ctx, ids["Rust"], model.Destination{ParentID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Remove(ctx, ids["Dev"]); err != nil {
		t.Fatal(err)
	}

	if ok, err := m.Restore(ctx, snap.ID); !ok || err != nil {
		t.Fatalf("Restore failed: %v, %v", ok, err)
	}

	if got := barOutline(t, svc); got != want {
		t.Errorf("layout not restored:\n%s\nwant:\n%s", got, want)
	}
	rust, err := svc.Get(ctx, ids["Rust"])
	if err != nil {
		t.Fatalf("expected Rust to keep its id: %v", err)
	}
	if rust.ParentID == model.BookmarksBarID {
		t.Error("expected Rust to be moved back into the recreated Dev folder")
	}
}

func TestRestore_TakesSafetySnapshot(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)

	snap, err := m.Create(ctx, "clean")
	if err != nil {
		t.Fatal(err)
	}
	treetest.Seed(t, svc, "1", "Extra https://extra.com")
	before := treetest.MustDump(t, svc)
	layout := barOutline(t, svc)

	if ok, err := m.Restore(ctx, snap.ID); !ok || err != nil {
		t.Fatalf("Restore failed: %v, %v", ok, err)
	}

	snaps, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snaps))
	}
	safety := snaps[0]
	if safety.Name != "Before restoring clean" {
		t.Errorf("unexpected safety snapshot name %q", safety.Name)
	}
	if treetest.Dump(safety.Tree) != before {
		t.Errorf("safety snapshot does not hold the pre-restore tree:\n%s", treetest.Dump(safety.Tree))
	}

	if ok, err := m.Restore(ctx, safety.ID); !ok || err != nil {
		t.Fatalf("undo restore failed: %v, %v", ok, err)
	}
	if got := barOutline(t, svc); got != layout {
		t.Errorf("undo did not bring the layout back:\n%s", got)
	}
}

func TestRestore_MutationFailure(t *testing.T) {
	ctx := context.Background()
	db := treetest.OpenDB(t)
	base := tree.NewSQLite(db)
	svc := &treetest.Faulty{Service: base, FailOn: 1}
	m := snapshot.New(svc, storage.NewSQLiteKV(db, storage.SnapshotNamespace))

	snap, err := m.Create(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	treetest.Seed(t, base, "1", "Extra https://extra.com")

	ok, err := m.Restore(ctx, snap.ID)
	if ok {
		t.Error("expected restore to report failure")
	}
	if !errors.Is(err, treetest.ErrInjected) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestRestore_PrunesSafetySnapshots(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t, snapshot.WithMaxSnapshots(2))

	old, err := m.Create(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b", "c"} {
		treetest.Seed(t, svc, "1", name+" https://"+name+".com")
		if _, err := m.Create(ctx, name); err != nil {
			t.Fatal(err)
		}
	}

	if ok, err := m.Restore(ctx, old.ID); !ok || err != nil {
		t.Fatalf("Restore failed: %v, %v", ok, err)
	}

	snaps, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range snaps {
		names = append(names, s.Name)
	}
	want := []string{"Before restoring old", "c", "old"}
	if !slices.Equal(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}
