// Package treetest provides helpers for tests that need a live bookmark tree.
package treetest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/outline"
	"github.com/nikbrunner/bmr/internal/storage"
	"github.com/nikbrunner/bmr/internal/tree"
)

// ErrInjected is returned by Faulty for the failing call.
var ErrInjected = errors.New("treetest: injected failure")

// OpenDB opens a migrated database in a temp directory.
func OpenDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "bookmarks.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Open creates a fresh SQLite-backed tree in a temp directory.
func Open(t testing.TB) *tree.SQLite {
	t.Helper()
	return tree.NewSQLite(OpenDB(t))
}

// Seed creates the outline text under parentID and returns the new ids by title.
func Seed(t testing.TB, svc tree.Service, parentID, text string) map[string]string {
	t.Helper()
	ids := make(map[string]string)
	var create func(nodes []*model.StructureNode, parent string)
	create = func(nodes []*model.StructureNode, parent string) {
		for _, n := range nodes {
			created, err := svc.Create(context.Background(), model.CreateParams{
				ParentID: parent,
				Title:    n.Title,
				URL:      n.URL,
			})
			if err != nil {
				t.Fatalf("seed %q: %v", n.Title, err)
			}
			ids[n.Title] = created.ID
			create(n.Children, created.ID)
		}
	}
	create(outline.Parse(text), parentID)
	return ids
}

// Dump renders a tree with ids, one node per line, for comparisons that
// ignore timestamps.
func Dump(roots []model.Node) string {
	var b strings.Builder
	var write func(nodes []model.Node, depth int)
	write = func(nodes []model.Node, depth int) {
		for _, n := range nodes {
			b.WriteString(strings.Repeat("  ", depth))
			if n.IsFolder() {
				fmt.Fprintf(&b, "%s %s/\n", n.ID, n.Title)
			} else {
				fmt.Fprintf(&b, "%s %s %s\n", n.ID, n.Title, n.URL)
			}
			write(n.Children, depth+1)
		}
	}
	write(roots, 0)
	return b.String()
}

// MustDump loads the live tree and dumps it.
func MustDump(t testing.TB, svc tree.Service) string {
	t.Helper()
	roots, err := svc.GetTree(context.Background())
	if err != nil {
		t.Fatalf("get tree: %v", err)
	}
	return Dump(roots)
}

// Faulty wraps a Service and fails the FailOn-th mutating call (1-based).
// Reads always pass through.
type Faulty struct {
	tree.Service
	FailOn int
	calls  int
}

// Calls returns how many mutating calls were made.
func (f *Faulty) Calls() int {
	return f.calls
}

func (f *Faulty) fail() bool {
	f.calls++
	return f.calls == f.FailOn
}

func (f *Faulty) Create(ctx context.Context, params model.CreateParams) (*model.Node, error) {
	if f.fail() {
		return nil, ErrInjected
	}
	return f.Service.Create(ctx, params)
}

func (f *Faulty) CreateFolder(ctx context.Context, title, parentID string) (*model.Node, error) {
	if f.fail() {
		return nil, ErrInjected
	}
	return f.Service.CreateFolder(ctx, title, parentID)
}

func (f *Faulty) Move(ctx context.Context, id string, dest model.Destination) error {
	if f.fail() {
		return ErrInjected
	}
	return f.Service.Move(ctx, id, dest)
}

func (f *Faulty) Update(ctx context.Context, id string, changes model.Changes) error {
	if f.fail() {
		return ErrInjected
	}
	return f.Service.Update(ctx, id, changes)
}

func (f *Faulty) Remove(ctx context.Context, id string) error {
	if f.fail() {
		return ErrInjected
	}
	return f.Service.Remove(ctx, id)
}
