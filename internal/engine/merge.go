package engine

import "slices"

// FinalMatchMap maps every author id to its sorted, duplicate-free matches.
type FinalMatchMap map[int64][]int64

// Merge unions the partial maps for every id in ids and removes repeated
// matches. Ids with no matches map to an empty list. The result does not
// depend on the order of partials.
func Merge(ids []int64, partials []PartialMatchMap) FinalMatchMap {
	final := make(FinalMatchMap, len(ids))
	for _, id := range ids {
		matches := []int64{}
		for _, partial := range partials {
			matches = append(matches, partial[id]...)
		}
		slices.Sort(matches)
		final[id] = slices.Compact(matches)
	}
	return final
}

// IDs returns the ids of the map in ascending order.
func (m FinalMatchMap) IDs() []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Pairs counts unordered matched pairs.
func (m FinalMatchMap) Pairs() int {
	total := 0
	for _, matches := range m {
		total += len(matches)
	}
	return total / 2
}

// MatchedAuthors counts ids with at least one match.
func (m FinalMatchMap) MatchedAuthors() int {
	n := 0
	for _, matches := range m {
		if len(matches) > 0 {
			n++
		}
	}
	return n
}
