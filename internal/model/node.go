package model

import "time"

// Reserved ids used by the browser for its fixed top-level folders.
const (
	RootID          = "0"
	BookmarksBarID  = "1"
	OtherID         = "2"
	MobileID        = "3"
	DefaultParentID = BookmarksBarID
)

var reservedIDs = map[string]bool{
	RootID:         true,
	BookmarksBarID: true,
	OtherID:        true,
	MobileID:       true,
}

// IsReserved reports whether id is one of the platform's fixed folders.
func IsReserved(id string) bool {
	return reservedIDs[id]
}

// ReservedIDs returns the reserved ids in ascending order.
func ReservedIDs() []string {
	return []string{RootID, BookmarksBarID, OtherID, MobileID}
}

// Node is a bookmark or folder in the live tree.
type Node struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"` // empty = folder
	ParentID  string    `json:"parentId,omitempty"`
	Index     int       `json:"index"`
	DateAdded time.Time `json:"dateAdded"`
	Children  []Node    `json:"children,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n Node) IsFolder() bool {
	return n.URL == ""
}

// Clone returns a deep copy of the node and its subtree.
func (n Node) Clone() Node {
	out := n
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// CloneTree deep-copies a sequence of root nodes.
func CloneTree(roots []Node) []Node {
	out := make([]Node, len(roots))
	for i, r := range roots {
		out[i] = r.Clone()
	}
	return out
}

// Find returns the node with the given id, or nil if it is not in the tree.
func Find(roots []Node, id string) *Node {
	stack := make([]*Node, 0, len(roots))
	for i := range roots {
		stack = append(stack, &roots[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.ID == id {
			return n
		}
		for i := range n.Children {
			stack = append(stack, &n.Children[i])
		}
	}
	return nil
}

// Walk visits every node depth-first in document order.
// Returning false from fn stops the walk below that node.
func Walk(roots []Node, fn func(n *Node) bool) {
	var visit func(nodes []Node)
	visit = func(nodes []Node) {
		for i := range nodes {
			if fn(&nodes[i]) {
				visit(nodes[i].Children)
			}
		}
	}
	visit(roots)
}

// CreateParams holds parameters for creating a node.
type CreateParams struct {
	ParentID string
	Title    string
	URL       string    // empty creates a folder
	Index     *int      // nil appends
	DateAdded time.Time // zero uses the current time
}

// Destination is where a move places a node.
type Destination struct {
	ParentID string `json:"parentId"`
	Index    *int   `json:"index,omitempty"`
}

// Changes holds in-place edits for a node. Nil fields are left untouched.
type Changes struct {
	Title *string
	URL   *string
}
