// Package outline converts between indented outline text and bookmark
// structures.
//
// A line ending in "/" is a folder. Any other line is a bookmark, written
// as "title", "title https://url" or a bare url for an untitled bookmark. Nesting is expressed by leading
// whitespace of any consistent width.
package outline

import (
	"strings"
	"unicode"

	"github.com/nikbrunner/bmr/internal/model"
)

// FolderMarker terminates folder lines.
const FolderMarker = "/"

var urlSchemes = []string{"http://", "https://"}

// Parse converts outline text into a sequence of structure nodes.
// Blank input yields an empty sequence.
func Parse(text string) []*model.StructureNode {
	roots := []*model.StructureNode{}

	type stackEntry struct {
		width int
		node  *model.StructureNode
	}
	var stack []stackEntry

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		width := indentWidth(line)
		for len(stack) > 0 && stack[len(stack)-1].width >= width {
			stack = stack[:len(stack)-1]
		}

		node := parseLine(strings.TrimSpace(line))
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
		}

		if node.IsFolder() {
			stack = append(stack, stackEntry{width: width, node: node})
		}
	}

	return roots
}

// parseLine classifies a trimmed, non-empty line.
func parseLine(line string) *model.StructureNode {
	if pos := urlIndex(line); pos >= 0 {
		return model.NewBookmark(strings.TrimSpace(line[:pos]), line[pos:])
	}

	if strings.HasSuffix(line, FolderMarker) {
		return model.NewFolder(strings.TrimSpace(strings.TrimSuffix(line, FolderMarker)))
	}

	return model.NewBookmark(line, "")
}

// urlIndex returns the byte offset of the first absolute URL in line, or -1.
func urlIndex(line string) int {
	best := -1
	for _, scheme := range urlSchemes {
		if i := strings.Index(line, scheme); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

// indentWidth counts leading whitespace runes. A tab counts as one.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		width++
	}
	return width
}
