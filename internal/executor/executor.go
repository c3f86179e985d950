// Package executor applies planned operations to a live bookmark tree.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/tree"
)

// ErrUnresolvedTempID means a move referred to a temporary id that no
// earlier create produced.
var ErrUnresolvedTempID = errors.New("executor: unresolved temporary id")

// OpError reports which operation aborted a run.
type OpError struct {
	Index int // position in the ordered operation list
	Op    model.Operation
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("operation %d (%s): %v", e.Index+1, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Report summarizes a run, complete or not.
type Report struct {
	Resolved map[string]string // temp id -> real id
	Applied  int
	Skipped  []model.Move // moves whose destination turned out not to be a folder
}

// Options configures Execute.
type Options struct {
	Logger *slog.Logger
}

// Order returns ops with every create ahead of every move. Relative order
// within each kind is kept; ops itself is not modified.
func Order(ops []model.Operation) []model.Operation {
	out := slices.Clone(ops)
	slices.SortStableFunc(out, func(a, b model.Operation) int {
		return rank(a) - rank(b)
	})
	return out
}

func rank(op model.Operation) int {
	if _, ok := op.(model.CreateFolder); ok {
		return 0
	}
	return 1
}

type run struct {
	svc     tree.Service
	logger  *slog.Logger
	report  *Report
	folders map[string]bool
}

// Execute applies ops to svc one at a time. The first failing call aborts
// the run; the returned report covers what was applied before it.
func Execute(ctx context.Context, svc tree.Service, ops []model.Operation, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &run{
		svc:     svc,
		logger:  logger,
		report:  &Report{Resolved: make(map[string]string)},
		folders: make(map[string]bool),
	}
	for _, id := range model.ReservedIDs() {
		r.folders[id] = true
	}

	for i, op := range Order(ops) {
		var err error
		switch op := op.(type) {
		case model.CreateFolder:
			err = r.create(ctx, op)
		case model.Move:
			err = r.move(ctx, op)
		default:
			err = fmt.Errorf("unknown operation %T", op)
		}
		if err != nil {
			return r.report, &OpError{Index: i, Op: op, Err: err}
		}
	}

	logger.Debug("executor: run complete",
		"applied", r.report.Applied,
		"skipped", len(r.report.Skipped),
	)
	return r.report, nil
}

func (r *run) resolve(id string) (string, error) {
	if resolved, ok := r.report.Resolved[id]; ok {
		return resolved, nil
	}
	if model.IsTempID(id) {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedTempID, id)
	}
	return id, nil
}

func (r *run) create(ctx context.Context, op model.CreateFolder) error {
	parent, err := r.resolve(op.ParentID)
	if err != nil {
		return err
	}

	node, err := r.svc.CreateFolder(ctx, op.Title, parent)
	if err != nil {
		return err
	}

	r.report.Resolved[op.TempID] = node.ID
	r.folders[node.ID] = true
	r.report.Applied++
	r.logger.Debug("executor: created folder", "title", op.Title, "temp_id", op.TempID, "id", node.ID)
	return nil
}

func (r *run) move(ctx context.Context, op model.Move) error {
	id, err := r.resolve(op.ID)
	if err != nil {
		return err
	}
	parent, err := r.resolve(op.Destination.ParentID)
	if err != nil {
		return err
	}

	if !r.folders[parent] {
		dest, err := r.svc.Get(ctx, parent)
		if err != nil {
			return fmt.Errorf("check destination: %w", err)
		}
		if !dest.IsFolder() {
			r.report.Skipped = append(r.report.Skipped, op)
			r.logger.Warn("executor: skipped move into non-folder", "id", id, "parent_id", parent)
			return nil
		}
		r.folders[parent] = true
	}

	index := op.Destination.Index
	if err := r.svc.Move(ctx, id, model.Destination{ParentID: parent, Index: &index}); err != nil {
		return err
	}
	r.report.Applied++
	return nil
}
