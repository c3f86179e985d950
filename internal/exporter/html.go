// Package exporter writes the live tree as a Netscape bookmark file.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmr/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders roots in Netscape bookmark HTML format. The synthetic
// root is unwrapped; its folders become top-level folders.
func ExportHTML(roots []model.Node) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, r := range roots {
		if r.ID == model.RootID {
			writeItems(&b, r.Children, 1)
			continue
		}
		writeItems(&b, []model.Node{r}, 1)
	}

	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeItems(b *strings.Builder, nodes []model.Node, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, n := range nodes {
		if !n.IsFolder() {
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				prefix,
				html.EscapeString(n.URL),
				n.DateAdded.Unix(),
				html.EscapeString(n.Title),
			)
			continue
		}

		attrs := fmt.Sprintf(` ADD_DATE="%d"`, n.DateAdded.Unix())
		if n.ID == model.BookmarksBarID {
			attrs += ` PERSONAL_TOOLBAR_FOLDER="true"`
		}
		fmt.Fprintf(b, "%s<DT><H3%s>%s</H3>\n", prefix, attrs, html.EscapeString(n.Title))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)
		writeItems(b, n.Children, indent+1)
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}
}
