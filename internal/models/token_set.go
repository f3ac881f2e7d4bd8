package models

import "slices"

// TokenSet is a sorted string set. The zero value is an empty set.
type TokenSet []string

// NewTokenSet builds a TokenSet from values, dropping duplicates.
func NewTokenSet(values ...string) TokenSet {
	if len(values) == 0 {
		return TokenSet{}
	}
	set := make(TokenSet, len(values))
	copy(set, values)
	slices.Sort(set)
	return slices.Compact(set)
}

// Len returns the number of elements in the set.
func (s TokenSet) Len() int {
	return len(s)
}

// IsEmpty reports whether the set has no elements.
func (s TokenSet) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether v is a member of the set.
func (s TokenSet) Contains(v string) bool {
	_, ok := slices.BinarySearch(s, v)
	return ok
}

// IntersectionSize counts the elements shared by s and other.
// Both sets must be sorted, which NewTokenSet guarantees.
func (s TokenSet) IntersectionSize(other TokenSet) int {
	i, j, n := 0, 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			n++
			i++
			j++
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return n
}
