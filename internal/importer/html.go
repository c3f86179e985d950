// Package importer reads Netscape bookmark files into the live tree.
package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmr/internal/model"
	"github.com/nikbrunner/bmr/internal/tree"
)

// ParseHTML parses Netscape bookmark HTML into a layout of folders and
// bookmarks in document order.
func ParseHTML(r io.Reader) ([]*model.StructureNode, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	roots := []*model.StructureNode{}
	var folderStack []*model.StructureNode
	var pendingFolder *model.StructureNode // waiting for its <DL>

	add := func(n *model.StructureNode) {
		if len(folderStack) == 0 {
			roots = append(roots, n)
			return
		}
		top := folderStack[len(folderStack)-1]
		top.Children = append(top.Children, n)
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name != "" {
					folder := model.NewFolder(name)
					folder.DateAdded = addDate(n)
					add(folder)
					pendingFolder = folder
				}
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				bookmark := model.NewBookmark(title, href)
				bookmark.DateAdded = addDate(n)
				add(bookmark)
				return

			case "dl":
				pushed := false
				if pendingFolder != nil {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = nil
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return roots, nil
}

// Stats counts what Import created.
type Stats struct {
	Folders   int
	Bookmarks int
}

// Import creates nodes under parentID, appending after existing children.
// Nothing is deduplicated: importing twice creates everything twice.
func Import(ctx context.Context, svc tree.Service, parentID string, nodes []*model.StructureNode) (Stats, error) {
	var stats Stats

	var create func(nodes []*model.StructureNode, parentID string) error
	create = func(nodes []*model.StructureNode, parentID string) error {
		for _, n := range nodes {
			created, err := svc.Create(ctx, model.CreateParams{
				ParentID:  parentID,
				Title:     n.Title,
				URL:       n.URL,
				DateAdded: n.DateAdded,
			})
			if err != nil {
				return fmt.Errorf("import %q: %w", n.Title, err)
			}

			if !n.IsFolder() {
				stats.Bookmarks++
				continue
			}
			stats.Folders++
			if err := create(n.Children, created.ID); err != nil {
				return err
			}
		}
		return nil
	}

	return stats, create(nodes, parentID)
}

// SnapshotName names the snapshot taken before an import.
const SnapshotName = "Before import"

// Snapshots is the part of snapshot.Manager an import needs.
type Snapshots interface {
	Create(ctx context.Context, name string) (*model.Snapshot, error)
	Restore(ctx context.Context, id string) (bool, error)
}

// ImportWithSnapshot snapshots the tree, runs Import and restores the
// snapshot if any node fails, so a failed import leaves nothing behind.
// It returns the snapshot id.
func ImportWithSnapshot(ctx context.Context, svc tree.Service, snaps Snapshots, parentID string, nodes []*model.StructureNode) (Stats, string, error) {
	ctx = context.WithoutCancel(ctx)

	snap, err := snaps.Create(ctx, SnapshotName)
	if err != nil {
		return Stats{}, "", fmt.Errorf("snapshot before import: %w", err)
	}

	stats, err := Import(ctx, svc, parentID, nodes)
	if err == nil {
		return stats, snap.ID, nil
	}

	ok, rerr := snaps.Restore(ctx, snap.ID)
	switch {
	case rerr != nil:
		return stats, snap.ID, fmt.Errorf("%w; rollback raised an error: %v, restore snapshot %s manually", err, rerr, snap.ID)
	case !ok:
		return stats, snap.ID, fmt.Errorf("%w; rollback failed, restore snapshot %s manually", err, snap.ID)
	}
	return Stats{}, snap.ID, fmt.Errorf("%w; changes were rolled back", err)
}

func addDate(n *html.Node) time.Time {
	if v := getAttr(n, "add_date"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(ts, 0)
		}
	}
	return time.Time{}
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
