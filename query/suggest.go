package query

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// fuzzyCutoff is the minimum sequence-similarity ratio for a fuzzy candidate.
const fuzzyCutoff = 0.6

// Suggest returns up to limit candidate names for a free-text query.
// Case-insensitive prefix matches come first; when there are at least limit of
// them, they are returned alphabetically. Otherwise fuzzy matches against the
// literal query (ratio >= 0.6, best first) fill the remaining slots, with
// first-seen de-duplication.
func Suggest(query string, names []string, limit int) []string {
	q := strings.TrimSpace(query)
	if q == "" || limit <= 0 {
		return nil
	}

	ql := strings.ToLower(q)
	var prefix []string
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), ql) {
			prefix = append(prefix, n)
		}
	}
	if len(prefix) >= limit {
		out := append([]string(nil), prefix...)
		sort.Strings(out)
		return out[:limit]
	}

	fuzzy := closeMatches(q, names, limit)

	seen := make(map[string]struct{}, limit)
	out := make([]string, 0, limit)
	for _, list := range [][]string{prefix, fuzzy} {
		for _, n := range list {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// closeMatches ranks names by sequence-matcher ratio against the query,
// keeping those at or above the cutoff. The sort is stable so equally-similar
// names keep their input order.
func closeMatches(query string, names []string, n int) []string {
	qseq := strings.Split(query, "")

	type scored struct {
		name  string
		ratio float64
	}
	candidates := make([]scored, 0, n)
	for _, name := range names {
		m := difflib.NewMatcher(strings.Split(name, ""), qseq)
		if r := m.Ratio(); r >= fuzzyCutoff {
			candidates = append(candidates, scored{name: name, ratio: r})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ratio > candidates[j].ratio
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}
