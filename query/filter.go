package query

import (
	"sort"
	"strings"

	"coplayers/dataset"
)

// WeekSet builds the membership set FilterWeeks expects.
func WeekSet(weeks []int) map[int]struct{} {
	set := make(map[int]struct{}, len(weeks))
	for _, w := range weeks {
		set[w] = struct{}{}
	}
	return set
}

// FilterWeeks keeps plays whose week is in the selected set. An empty
// selection means show nothing, not show all.
func FilterWeeks(plays []dataset.Play, weeks map[int]struct{}) []dataset.Play {
	if len(weeks) == 0 {
		return nil
	}
	out := make([]dataset.Play, 0, len(plays))
	for _, p := range plays {
		if !p.WeekOK {
			continue
		}
		if _, ok := weeks[p.Week]; ok {
			out = append(out, p)
		}
	}
	return out
}

// PassOrRush keeps plays typed "RUSH" or starting with "PASS" (case-sensitive;
// a missing type matches neither).
func PassOrRush(plays []dataset.Play) []dataset.Play {
	out := make([]dataset.Play, 0, len(plays))
	for _, p := range plays {
		if p.Type == "RUSH" || strings.HasPrefix(p.Type, "PASS") {
			out = append(out, p)
		}
	}
	return out
}

// InScope composes the two filters; every aggregator takes its output.
func InScope(plays []dataset.Play, weeks map[int]struct{}) []dataset.Play {
	return PassOrRush(FilterWeeks(plays, weeks))
}

// WeekOptions returns the sorted distinct weeks present in the catalog; the
// UI selects all of them by default.
func WeekOptions(plays []dataset.Play) []int {
	set := make(map[int]struct{})
	for _, p := range plays {
		if p.WeekOK {
			set[p.Week] = struct{}{}
		}
	}
	weeks := make([]int, 0, len(set))
	for w := range set {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}
