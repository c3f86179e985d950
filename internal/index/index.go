// Package index builds name lookups over a live bookmark tree.
package index

import (
	"github.com/nikbrunner/bmr/internal/model"
)

// PathSeparator joins ancestor titles into a full path key.
const PathSeparator = "/"

// Entry identifies a node found by title or path.
type Entry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
	URL   string `json:"url,omitempty"`
}

// IsFolder reports whether the entry carries no url.
func (e Entry) IsFolder() bool {
	return e.URL == ""
}

// Index maps bare titles and full paths to entries.
// Bare titles shadow each other: the node visited last wins.
type Index map[string]Entry

// Build indexes every node below the synthetic root, once by title and
// once by full path.
func Build(roots []model.Node) Index {
	idx := make(Index)

	type frame struct {
		node *model.Node
		path string
	}
	var stack []frame
	push := func(nodes []model.Node, parentPath string) {
		// Reverse so siblings pop in document order.
		for i := len(nodes) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: &nodes[i], path: parentPath})
		}
	}

	for i := range roots {
		if isSyntheticRoot(roots[i]) {
			push(roots[i].Children, "")
			continue
		}
		push(roots[i:i+1], "")
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		name := Key(f.node.Title, f.node.URL)
		path := name
		if f.path != "" {
			path = f.path + PathSeparator + name
		}
		entry := Entry{ID: f.node.ID, Title: f.node.Title, Path: path, URL: f.node.URL}
		idx[name] = entry
		idx[path] = entry

		push(f.node.Children, path)
	}

	return idx
}

// Key is the bare lookup key of a node: its title, or its url when untitled.
func Key(title, url string) string {
	if title == "" {
		return url
	}
	return title
}

// Lookup returns the entry registered under key.
func (idx Index) Lookup(key string) (Entry, bool) {
	e, ok := idx[key]
	return e, ok
}

// Register adds or replaces the entry under key.
func (idx Index) Register(key string, e Entry) {
	idx[key] = e
}

func isSyntheticRoot(n model.Node) bool {
	return n.ID == model.RootID
}
