package snapshot

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/tree"
)

type restoreItem struct {
	node     model.Node
	parentID string // live id of the parent
}

type restoreStats struct {
	created, moved, updated, removed int
}

// Restore reconciles the live tree with snapshot id by node identity.
// It reports false with a nil error when the snapshot does not exist.
// A safety snapshot of the current tree is taken first.
func (m *Manager) Restore(ctx context.Context, id string) (bool, error) {
	snap, err := m.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		m.logger.Warn("snapshot to restore not found", "id", id)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := m.Create(ctx, "Before restoring "+snap.Name); err != nil {
		return false, fmt.Errorf("safety snapshot: %w", err)
	}

	live, err := m.svc.GetTree(ctx)
	if err != nil {
		return false, fmt.Errorf("read tree: %w", err)
	}

	present := make(map[string]bool)
	unseen := make(map[string]bool)
	var order []string
	model.Walk(live, func(n *model.Node) bool {
		present[n.ID] = true
		if !model.IsReserved(n.ID) {
			unseen[n.ID] = true
			order = append(order, n.ID)
		}
		return true
	})

	var stats restoreStats
	var stack []restoreItem
	push := func(children []model.Node, parentID string) {
		for _, c := range slices.Backward(children) {
			stack = append(stack, restoreItem{node: c, parentID: parentID})
		}
	}
	for _, r := range snap.Tree {
		push(r.Children, r.ID)
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := item.node
		if model.IsReserved(n.ID) {
			push(n.Children, n.ID)
			continue
		}

		liveID, err := m.restoreNode(ctx, n, item.parentID, present[n.ID], &stats)
		if err != nil {
			return false, fmt.Errorf("restore %q (%s): %w", n.Title, n.ID, err)
		}
		delete(unseen, n.ID)
		push(n.Children, liveID)
	}

	for _, id := range order {
		if !unseen[id] {
			continue
		}
		err := m.svc.Remove(ctx, id)
		if errors.Is(err, tree.ErrNotFound) {
			// removed together with an ancestor
			continue
		}
		if err != nil {
			return false, fmt.Errorf("remove %s: %w", id, err)
		}
		stats.removed++
	}

	m.logger.Info("snapshot restored",
		"id", snap.ID,
		"created", stats.created,
		"moved", stats.moved,
		"updated", stats.updated,
		"removed", stats.removed,
	)

	// The safety snapshot counts against the limit like any other.
	if _, err := m.prune(ctx, 0, snap.ID); err != nil {
		m.logger.Warn("prune after restore", "error", err)
	}
	return true, nil
}

// restoreNode puts n under parentID at its recorded index and returns its
// live id, which differs from n.ID when the node had to be recreated.
func (m *Manager) restoreNode(ctx context.Context, n model.Node, parentID string, exists bool, stats *restoreStats) (string, error) {
	index := n.Index

	if !exists {
		created, err := m.svc.Create(ctx, model.CreateParams{
			ParentID:  parentID,
			Title:     n.Title,
			URL:       n.URL,
			Index:     &index,
			DateAdded: n.DateAdded,
		})
		if err != nil {
			return "", err
		}
		stats.created++
		m.logger.Debug("restore: recreated node", "old_id", n.ID, "id", created.ID, "title", n.Title)
		return created.ID, nil
	}

	cur, err := m.svc.Get(ctx, n.ID)
	if err != nil {
		return "", err
	}

	var changes model.Changes
	if cur.Title != n.Title {
		changes.Title = &n.Title
	}
	if cur.URL != n.URL {
		changes.URL = &n.URL
	}
	if changes.Title != nil || changes.URL != nil {
		if err := m.svc.Update(ctx, n.ID, changes); err != nil {
			return "", err
		}
		stats.updated++
	}

	if cur.ParentID != parentID || cur.Index != n.Index {
		if err := m.svc.Move(ctx, n.ID, model.Destination{ParentID: parentID, Index: &index}); err != nil {
			return "", err
		}
		stats.moved++
	}

	return n.ID, nil
}
