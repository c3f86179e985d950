package search

import (
	"github.com/nikbrunner/bmr/internal/model"
	"github.com/sahilm/fuzzy"
)

// Result represents a fuzzy search match.
type Result struct {
	Node           model.Node
	MatchedIndexes []int
	Score          int
}

// nodeTitles implements fuzzy.Source for a node slice.
type nodeTitles []model.Node

func (nt nodeTitles) String(i int) string {
	return nt[i].Title
}

func (nt nodeTitles) Len() int {
	return len(nt)
}

// Nodes searches nodes by title using fuzzy matching.
// Returns results sorted by match score (best first).
func Nodes(nodes []model.Node, query string) []Result {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, nodeTitles(nodes))

	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Node:           nodes[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
