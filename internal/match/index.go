package match

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// FuzzyThreshold is the maximum dissimilarity score a fuzzy candidate may
// have and still be accepted. Scores are normalized edit distances in
// [0, 1]; lower is closer.
const FuzzyThreshold = 0.3

// indexEntry ties a searchable key to the position of its rule in the
// source slice.
type indexEntry struct {
	key string
	pos int
}

// fuzzyIndex is an approximate-string-matching index over a rule subset.
// It is rebuilt per lookup set; rule lists are small enough that a linear
// scan with normalized Levenshtein distance is the whole index.
type fuzzyIndex struct {
	entries []indexEntry
}

// newFuzzyIndex builds an index over the given keys. Empty keys are
// skipped. Duplicate keys keep their first position, preserving the
// caller's priority order.
func newFuzzyIndex(keys []indexEntry) *fuzzyIndex {
	idx := &fuzzyIndex{entries: make([]indexEntry, 0, len(keys))}
	seen := make(map[string]bool, len(keys))
	for _, e := range keys {
		key := strings.ToUpper(strings.TrimSpace(e.key))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		idx.entries = append(idx.entries, indexEntry{key: key, pos: e.pos})
	}
	return idx
}

// lookup returns the position of the closest entry and its dissimilarity
// score. The boolean is false when the index is empty or the query is
// blank.
func (idx *fuzzyIndex) lookup(query string) (int, float64, bool) {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" || len(idx.entries) == 0 {
		return 0, 0, false
	}

	bestPos := -1
	bestScore := 1.0
	for _, e := range idx.entries {
		score := dissimilarity(query, e.key)
		if bestPos == -1 || score < bestScore {
			bestPos = e.pos
			bestScore = score
		}
	}
	return bestPos, bestScore, true
}

// dissimilarity is the Levenshtein distance between two strings normalized
// by the longer length, yielding 0 for identical strings and 1 for
// completely different ones.
func dissimilarity(a, b string) float64 {
	if a == b {
		return 0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}
