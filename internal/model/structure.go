package model

import "time"

// StructureKind distinguishes folders from bookmarks in a target layout.
type StructureKind int

const (
	KindFolder StructureKind = iota
	KindBookmark
)

func (k StructureKind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "bookmark"
}

// StructureNode is one entry of a user-authored target layout.
type StructureNode struct {
	Kind     StructureKind    `json:"kind"`
	Title    string           `json:"title"`
	URL      string           `json:"url,omitempty"`
	Children []*StructureNode `json:"children"`

	// DateAdded is only known for imported entries.
	DateAdded time.Time `json:"-"`
}

// NewFolder creates a folder entry with no children.
func NewFolder(title string) *StructureNode {
	return &StructureNode{
		Kind:     KindFolder,
		Title:    title,
		Children: []*StructureNode{},
	}
}

// NewBookmark creates a bookmark entry. url may be empty.
func NewBookmark(title, url string) *StructureNode {
	return &StructureNode{
		Kind:     KindBookmark,
		Title:    title,
		URL:      url,
		Children: []*StructureNode{},
	}
}

// IsFolder reports whether the entry is a folder.
func (s *StructureNode) IsFolder() bool {
	return s.Kind == KindFolder
}
