package outline

import (
	"strings"

	"github.com/nikbrunner/bmr/internal/model"
)

const indentUnit = "  "

// Render writes live nodes in outline form, one line per node.
// The output parses back into the same titles, urls and nesting.
func Render(nodes []model.Node) string {
	var b strings.Builder
	writeNodes(&b, nodes, 0)
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []model.Node, depth int) {
	prefix := strings.Repeat(indentUnit, depth)
	for _, n := range nodes {
		b.WriteString(prefix)
		if n.IsFolder() {
			b.WriteString(n.Title)
			b.WriteString(FolderMarker)
			b.WriteString("\n")
			writeNodes(b, n.Children, depth+1)
			continue
		}
		if n.Title != "" && n.Title != n.URL {
			b.WriteString(n.Title)
			b.WriteString(" ")
		}
		b.WriteString(n.URL)
		b.WriteString("\n")
	}
}

// RenderStructure writes parsed structure nodes back as outline text.
func RenderStructure(nodes []*model.StructureNode) string {
	var b strings.Builder
	var write func(nodes []*model.StructureNode, depth int)
	write = func(nodes []*model.StructureNode, depth int) {
		prefix := strings.Repeat(indentUnit, depth)
		for _, n := range nodes {
			b.WriteString(prefix)
			switch {
			case n.IsFolder():
				b.WriteString(n.Title + FolderMarker)
			case n.URL == "":
				b.WriteString(n.Title)
			case n.Title == "" || n.Title == n.URL:
				b.WriteString(n.URL)
			default:
				b.WriteString(n.Title + " " + n.URL)
			}
			b.WriteString("\n")
			write(n.Children, depth+1)
		}
	}
	write(nodes, 0)
	return b.String()
}
