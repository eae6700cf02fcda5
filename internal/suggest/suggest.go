// Package suggest ranks "did you mean" candidates by edit distance.
package suggest

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultDistance is the maximum edit distance used when callers pass a non-positive threshold.
const DefaultDistance = 2

// Distance returns the Levenshtein distance between a and b.
func Distance(a, b string) int {
	return fuzzy.LevenshteinDistance(a, b)
}

type match struct {
	value    string
	distance int
}

// Find returns the candidates within maxDistance edits of input, nearest first.
// Ties are broken lexicographically and duplicate candidates are reported once.
// An empty input never matches.
func Find(input string, candidates []string, maxDistance int) []string {
	if input == "" || len(candidates) == 0 {
		return nil
	}
	if maxDistance <= 0 {
		maxDistance = DefaultDistance
	}

	seen := make(map[string]bool, len(candidates))
	var matches []match
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		d := Distance(input, c)
		if d <= maxDistance {
			matches = append(matches, match{value: c, distance: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].value < matches[j].value
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.value
	}
	return out
}
