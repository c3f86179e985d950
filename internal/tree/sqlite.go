package tree

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/search"
)

// SQLite implements Service on the nodes table of a database opened with
// storage.Open. Every mutation runs in its own transaction.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite creates a SQLite tree service.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

const selectColumns = `SELECT id, parent_id, position, title, url, date_added FROM nodes`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// row is one record of the nodes table.
type row struct {
	id        int64
	parentID  sql.NullInt64
	position  int
	title     string
	url       sql.NullString
	dateAdded string
}

func (r row) isFolder() bool { return !r.url.Valid }
func (r row) isRoot() bool   { return !r.parentID.Valid }

func (r row) node() model.Node {
	n := model.Node{
		ID:    formatID(r.id),
		Title: r.title,
		URL:   r.url.String,
		Index: r.position,
	}
	if r.parentID.Valid {
		n.ParentID = formatID(r.parentID.Int64)
	}
	n.DateAdded, _ = time.Parse(time.RFC3339, r.dateAdded)
	if r.isFolder() {
		n.Children = []model.Node{}
	}
	return n
}

func scanRow(sc scanner) (row, error) {
	var r row
	err := sc.Scan(&r.id, &r.parentID, &r.position, &r.title, &r.url, &r.dateAdded)
	return r, err
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func getRow(ctx context.Context, q queryRower, id string) (row, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 0 {
		return row{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r, err := scanRow(q.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, n))
	if errors.Is(err, sql.ErrNoRows) {
		return row{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

// GetTree implements Service.
func (s *SQLite) GetTree(ctx context.Context) ([]model.Node, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}
	defer rows.Close()

	children := make(map[int64][]row)
	var root *row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		if r.isRoot() {
			root = &r
			continue
		}
		children[r.parentID.Int64] = append(children[r.parentID.Int64], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("%w: root", ErrNotFound)
	}

	var build func(r row) model.Node
	build = func(r row) model.Node {
		n := r.node()
		for _, c := range children[r.id] {
			n.Children = append(n.Children, build(c))
		}
		return n
	}

	return []model.Node{build(*root)}, nil
}

// Get implements Service.
func (s *SQLite) Get(ctx context.Context, id string) (*model.Node, error) {
	r, err := getRow(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	n := r.node()
	n.Children = nil
	return &n, nil
}

// Create implements Service.
func (s *SQLite) Create(ctx context.Context, params model.CreateParams) (*model.Node, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	parent, err := getRow(ctx, tx, params.ParentID)
	if err != nil {
		return nil, err
	}
	if parent.isRoot() {
		return nil, ErrReserved
	}
	if !parent.isFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFolder, params.ParentID)
	}

	pos, err := insertPosition(ctx, tx, parent.id, params.Index, -1)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position + 1 WHERE parent_id = ? AND position >= ?`,
		parent.id, pos,
	); err != nil {
		return nil, err
	}

	var url any
	if params.URL != "" {
		url = params.URL
	}
	added := params.DateAdded
	if added.IsZero() {
		added = s.now()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (parent_id, position, title, url, date_added) VALUES (?, ?, ?, ?, ?)`,
		parent.id, pos, params.Title, url, added.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert node: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	created, err := getRow(ctx, tx, formatID(id))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	n := created.node()
	return &n, nil
}

// CreateFolder implements Service.
func (s *SQLite) CreateFolder(ctx context.Context, title, parentID string) (*model.Node, error) {
	return s.Create(ctx, model.CreateParams{ParentID: parentID, Title: title})
}

// Move implements Service. The node is taken out of its parent first, so
// dest.Index is its final position among the destination's children.
func (s *SQLite) Move(ctx context.Context, id string, dest model.Destination) error {
	if model.IsReserved(id) {
		return ErrReserved
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	node, err := getRow(ctx, tx, id)
	if err != nil {
		return err
	}
	parent, err := getRow(ctx, tx, dest.ParentID)
	if err != nil {
		return err
	}
	if parent.isRoot() {
		return ErrReserved
	}
	if !parent.isFolder() {
		return fmt.Errorf("%w: %s", ErrNotFolder, dest.ParentID)
	}

	for cur := parent; ; {
		if cur.id == node.id {
			return ErrInvalidMove
		}
		if cur.isRoot() {
			break
		}
		if cur, err = getRow(ctx, tx, formatID(cur.parentID.Int64)); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position - 1 WHERE parent_id = ? AND position > ?`,
		node.parentID, node.position,
	); err != nil {
		return err
	}

	pos, err := insertPosition(ctx, tx, parent.id, dest.Index, node.id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position + 1 WHERE parent_id = ? AND position >= ? AND id != ?`,
		parent.id, pos, node.id,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET parent_id = ?, position = ? WHERE id = ?`,
		parent.id, pos, node.id,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// Update implements Service.
func (s *SQLite) Update(ctx context.Context, id string, changes model.Changes) error {
	if model.IsReserved(id) {
		return ErrReserved
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	node, err := getRow(ctx, tx, id)
	if err != nil {
		return err
	}

	if changes.Title != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE nodes SET title = ? WHERE id = ?`, *changes.Title, node.id); err != nil {
			return err
		}
	}
	if changes.URL != nil {
		if node.isFolder() != (*changes.URL == "") {
			return ErrInvalidChange
		}
		if !node.isFolder() {
			if _, err := tx.ExecContext(ctx, `UPDATE nodes SET url = ? WHERE id = ?`, *changes.URL, node.id); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Remove implements Service.
func (s *SQLite) Remove(ctx context.Context, id string) error {
	if model.IsReserved(id) {
		return ErrReserved
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	node, err := getRow(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		WITH RECURSIVE subtree(id) AS (
			SELECT ?
			UNION ALL
			SELECT n.id FROM nodes n JOIN subtree ON n.parent_id = subtree.id
		)
		DELETE FROM nodes WHERE id IN (SELECT id FROM subtree)
	`, node.id); err != nil {
		return fmt.Errorf("delete subtree: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE nodes SET position = position - 1 WHERE parent_id = ? AND position > ?`,
		node.parentID, node.position,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// Search implements Service with fuzzy title matching.
func (s *SQLite) Search(ctx context.Context, query string) ([]model.Node, error) {
	roots, err := s.GetTree(ctx)
	if err != nil {
		return nil, err
	}

	var flat []model.Node
	model.Walk(roots, func(n *model.Node) bool {
		if !model.IsReserved(n.ID) {
			c := *n
			c.Children = nil
			flat = append(flat, c)
		}
		return true
	})

	results := search.Nodes(flat, query)
	nodes := make([]model.Node, len(results))
	for i, r := range results {
		nodes[i] = r.Node
	}
	return nodes, nil
}

// insertPosition clamps index to the children of parent, not counting exclude.
// A nil index appends.
func insertPosition(ctx context.Context, tx *sql.Tx, parent int64, index *int, exclude int64) (int, error) {
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nodes WHERE parent_id = ? AND id != ?`, parent, exclude,
	).Scan(&count); err != nil {
		return 0, err
	}

	if index == nil || *index > count {
		return count, nil
	}
	if *index < 0 {
		return 0, nil
	}
	return *index, nil
}
