// Package restructure runs the whole pipeline: parse the target layout,
// plan against the live tree, snapshot, execute and roll back on failure.
package restructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikbrunner/bmr/internal/executor"
	"github.com/nikbrunner/bmr/internal/index"
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/outline"
	"github.com/nikbrunner/bmr/internal/planner"
	"github.com/nikbrunner/bmr/internal/tree"
)

// SnapshotName names the snapshot taken before each run.
const SnapshotName = "Before restructure"

// Snapshots is the part of snapshot.Manager a run needs.
type Snapshots interface {
	Create(ctx context.Context, name string) (*model.Snapshot, error)
	Prune(ctx context.Context, maxToKeep int) (int, error)
	Restore(ctx context.Context, id string) (bool, error)
}

// Plan is the outcome of a simulation.
type Plan struct {
	Target     []*model.StructureNode `json:"-"`
	Operations []model.Operation      `json:"operations"`
	Warnings   []planner.Warning      `json:"warnings"`

	index index.Index
}

// Describe renders the operations with node titles for display.
func (p *Plan) Describe() string {
	return planner.Describe(p.Operations, p.index)
}

// Restructurer reshapes a live tree into a target layout.
// Runs must not overlap.
type Restructurer struct {
	svc          tree.Service
	snapshots    Snapshots
	rootParentID string
	newTempID    model.IDGenerator
	maxSnapshots int
	logger       *slog.Logger
}

type Option func(*Restructurer)

// WithRootParentID sets the folder top-level target entries go into.
func WithRootParentID(id string) Option {
	return func(r *Restructurer) { r.rootParentID = id }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Restructurer) { r.logger = logger }
}

// WithTempIDGenerator sets the generator for placeholder folder ids.
func WithTempIDGenerator(gen model.IDGenerator) Option {
	return func(r *Restructurer) { r.newTempID = gen }
}

// WithMaxSnapshots sets how many snapshots survive the prune after each
// snapshot. Zero leaves the choice to the snapshot store.
func WithMaxSnapshots(n int) Option {
	return func(r *Restructurer) { r.maxSnapshots = n }
}

// New creates a Restructurer.
func New(svc tree.Service, snapshots Snapshots, opts ...Option) *Restructurer {
	r := &Restructurer{
		svc:          svc,
		snapshots:    snapshots,
		rootParentID: model.DefaultParentID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Simulate plans the operations for text without changing anything.
func (r *Restructurer) Simulate(ctx context.Context, text string) (*Plan, error) {
	roots, err := r.svc.GetTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}

	target := outline.Parse(text)
	idx := index.Build(roots)
	ops, warnings := planner.Plan(idx, target, planner.Options{
		RootParentID: r.rootParentID,
		NewTempID:    r.newTempID,
		Logger:       r.logger,
	})
	ops = planner.Minimize(roots, ops)

	return &Plan{Target: target, Operations: ops, Warnings: warnings, index: idx}, nil
}

// Execute applies text to the live tree. It never fails outright: every
// outcome, including a failed rollback, is described by the result.
// Cancelling ctx does not stop a run once it has started.
func (r *Restructurer) Execute(ctx context.Context, text string) model.Result {
	ctx = context.WithoutCancel(ctx)

	plan, err := r.Simulate(ctx, text)
	if err != nil {
		return model.Result{
			Message: "Could not plan the restructure",
			Error:   err.Error(),
		}
	}
	if len(plan.Operations) == 0 {
		msg := "Nothing to do: bookmarks already match the layout"
		if n := len(plan.Warnings); n > 0 {
			msg = fmt.Sprintf("Nothing to do: %d entries could not be placed", n)
		}
		return model.Result{Success: true, Message: msg}
	}

	snap, err := r.snapshots.Create(ctx, SnapshotName)
	if err != nil {
		return model.Result{
			Message:    "Could not take a snapshot, nothing was changed",
			Operations: plan.Operations,
			Error:      err.Error(),
		}
	}
	if _, err := r.snapshots.Prune(ctx, r.maxSnapshots); err != nil {
		r.logger.Warn("restructure: prune snapshots", "error", err)
	}

	creates, moves := model.CountOperations(plan.Operations)
	r.logger.Info("restructure: executing",
		"snapshot_id", snap.ID,
		"creates", creates,
		"moves", moves,
	)

	report, err := executor.Execute(ctx, r.svc, plan.Operations, executor.Options{Logger: r.logger})
	if err == nil {
		msg := fmt.Sprintf("Applied %d of %d operations", report.Applied, len(plan.Operations))
		if n := len(report.Skipped); n > 0 {
			msg += fmt.Sprintf(", skipped %d", n)
		}
		return model.Result{
			Success:    true,
			SnapshotID: snap.ID,
			Message:    msg,
			Operations: plan.Operations,
		}
	}

	r.logger.Error("restructure: execution failed, rolling back", "snapshot_id", snap.ID, "error", err)
	result := model.Result{
		SnapshotID: snap.ID,
		Operations: plan.Operations,
		Error:      err.Error(),
	}

	restored, rerr := r.snapshots.Restore(ctx, snap.ID)
	switch {
	case rerr != nil:
		r.logger.Error("restructure: rollback raised an error", "snapshot_id", snap.ID, "error", rerr)
		result.Message = fmt.Sprintf("Restructure failed and the rollback raised an error: %v. Restore snapshot %s manually", rerr, snap.ID)
	case !restored:
		r.logger.Error("restructure: rollback failed", "snapshot_id", snap.ID)
		result.Message = fmt.Sprintf("Restructure failed and the rollback failed. Restore snapshot %s manually", snap.ID)
	default:
		result.Message = "Restructure failed, changes were rolled back automatically"
	}
	return result
}
