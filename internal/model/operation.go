package model

import (
	"encoding/json"
	"fmt"
)

// Operation is a single planned change to the live tree.
// It is implemented only by CreateFolder and Move.
type Operation interface {
	isOperation()
	fmt.Stringer
}

// CreateFolder creates a folder under ParentID. TempID names the folder
// until the real id is known; later operations may refer to it.
type CreateFolder struct {
	Title    string
	ParentID string
	TempID   string
}

// Move places an existing (or just created) node at Destination.
type Move struct {
	ID          string
	Destination MoveDestination
}

// MoveDestination is the target position of a planned move.
type MoveDestination struct {
	ParentID string `json:"parentId"`
	Index    int    `json:"index"`
}

func (CreateFolder) isOperation() {}
func (Move) isOperation()         {}

func (c CreateFolder) String() string {
	return fmt.Sprintf("create folder %q in %s as %s", c.Title, c.ParentID, c.TempID)
}

func (m Move) String() string {
	return fmt.Sprintf("move %s to %s at %d", m.ID, m.Destination.ParentID, m.Destination.Index)
}

// MarshalJSON encodes the operation with a "create" type tag.
func (c CreateFolder) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Title    string `json:"title"`
		ParentID string `json:"parentId"`
		TempID   string `json:"tempId"`
	}{"create", c.Title, c.ParentID, c.TempID})
}

// MarshalJSON encodes the operation with a "move" type tag.
func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string          `json:"type"`
		ID          string          `json:"id"`
		Destination MoveDestination `json:"destination"`
	}{"move", m.ID, m.Destination})
}

// CountOperations returns how many creates and moves ops contains.
func CountOperations(ops []Operation) (creates, moves int) {
	for _, op := range ops {
		switch op.(type) {
		case CreateFolder:
			creates++
		case Move:
			moves++
		}
	}
	return creates, moves
}
