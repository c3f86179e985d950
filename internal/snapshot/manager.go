// Package snapshot captures, lists, restores and prunes copies of the
// live bookmark tree.
package snapshot

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/storage"
	"github.com/nikbrunner/bmr/internal/tree"
)

// DefaultMaxSnapshots is how many snapshots Prune keeps by default.
const DefaultMaxSnapshots = 10

const keyPrefix = "snapshot:"

var ErrNotFound = errors.New("snapshot: not found")

// Manager stores snapshots of a tree.Service in a storage.KV.
type Manager struct {
	svc    tree.Service
	kv     storage.KV
	now    func() time.Time
	newID  model.IDGenerator
	logger *slog.Logger
	max    int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator sets the snapshot id generator.
func WithIDGenerator(gen model.IDGenerator) Option {
	return func(m *Manager) { m.newID = gen }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithMaxSnapshots sets the count Prune falls back to.
func WithMaxSnapshots(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.max = n
		}
	}
}

// New creates a Manager.
func New(svc tree.Service, kv storage.KV, opts ...Option) *Manager {
	m := &Manager{
		svc:   svc,
		kv:    kv,
		now:   time.Now,
		newID: model.NewSnapshotID,
		max:   DefaultMaxSnapshots,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

func key(id string) string {
	return keyPrefix + id
}

// Create captures the current tree. An empty name gets a timestamped default.
func (m *Manager) Create(ctx context.Context, name string) (*model.Snapshot, error) {
	roots, err := m.svc.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}

	now := m.now()
	if name == "" {
		name = "Snapshot " + now.Format(time.DateTime)
	}
	snap := &model.Snapshot{
		ID:        m.newID(),
		Name:      name,
		Timestamp: now,
		Tree:      model.CloneTree(roots),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := m.kv.Set(ctx, map[string][]byte{key(snap.ID): data}); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	m.logger.Info("snapshot created", "id", snap.ID, "name", snap.Name)
	return snap, nil
}

// List returns all snapshots, newest first.
func (m *Manager) List(ctx context.Context) ([]model.Snapshot, error) {
	items, err := m.kv.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}

	snaps := make([]model.Snapshot, 0, len(items))
	for k, data := range items {
		if !strings.HasPrefix(k, keyPrefix) {
			continue
		}
		var s model.Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", k, err)
		}
		snaps = append(snaps, s)
	}

	slices.SortFunc(snaps, func(a, b model.Snapshot) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return snaps, nil
}

// Get returns one snapshot or ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*model.Snapshot, error) {
	items, err := m.kv.Get(ctx, key(id))
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	data, ok := items[key(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var s model.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &s, nil
}

// Delete removes one snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	return m.kv.Remove(ctx, key(id))
}

// Prune keeps the newest maxToKeep snapshots and removes the rest.
// A non-positive maxToKeep uses the manager's configured maximum.
func (m *Manager) Prune(ctx context.Context, maxToKeep int) (int, error) {
	return m.prune(ctx, maxToKeep, "")
}

// prune is Prune that never removes the snapshot with id keep.
func (m *Manager) prune(ctx context.Context, maxToKeep int, keep string) (int, error) {
	if maxToKeep <= 0 {
		maxToKeep = m.max
	}

	snaps, err := m.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(snaps) <= maxToKeep {
		return 0, nil
	}

	var keys []string
	for _, s := range snaps[maxToKeep:] {
		if s.ID == keep {
			continue
		}
		keys = append(keys, key(s.ID))
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := m.kv.Remove(ctx, keys...); err != nil {
		return 0, fmt.Errorf("remove snapshots: %w", err)
	}

	m.logger.Info("snapshots pruned", "removed", len(keys), "kept", maxToKeep)
	return len(keys), nil
}
