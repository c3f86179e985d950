// Package tree defines the bookmark tree-mutation service and a SQLite
// implementation of it.
package tree

import (
	"context"
	"errors"

	"github.com/nikbrunner/bmr/internal/model"
)

var (
	ErrNotFound      = errors.New("tree: node not found")
	ErrReserved      = errors.New("tree: reserved folders cannot be modified")
	ErrNotFolder     = errors.New("tree: parent is not a folder")
	ErrInvalidMove   = errors.New("tree: cannot move a folder into itself")
	ErrInvalidChange = errors.New("tree: folders cannot have a url")
)

// Service mutates a live bookmark tree addressed by node id.
type Service interface {
	// GetTree returns the whole tree as a single synthetic root.
	GetTree(ctx context.Context) ([]model.Node, error)
	// Get returns one node without its children.
	Get(ctx context.Context, id string) (*model.Node, error)
	Create(ctx context.Context, params model.CreateParams) (*model.Node, error)
	CreateFolder(ctx context.Context, title, parentID string) (*model.Node, error)
	Move(ctx context.Context, id string, dest model.Destination) error
	Update(ctx context.Context, id string, changes model.Changes) error
	// Remove deletes a node and everything below it.
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]model.Node, error)
}
