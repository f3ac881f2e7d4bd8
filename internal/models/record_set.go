package models

import (
	"fmt"
	"slices"
)

// RecordSet is an id-ordered, read-only collection of records.
// Row index i refers to the i-th smallest id; workers address records by row.
type RecordSet struct {
	ids     []int64
	records []*Record
	index   map[int64]int
}

// NewRecordSet validates records and orders them by ascending id.
func NewRecordSet(records []*Record) (*RecordSet, error) {
	sorted := make([]*Record, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		sorted = append(sorted, r)
	}
	slices.SortFunc(sorted, func(a, b *Record) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	set := &RecordSet{
		ids:     make([]int64, len(sorted)),
		records: sorted,
		index:   make(map[int64]int, len(sorted)),
	}
	for i, r := range sorted {
		if i > 0 && sorted[i-1].ID == r.ID {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateRecord, r.ID)
		}
		set.ids[i] = r.ID
		set.index[r.ID] = i
	}
	return set, nil
}

// Len returns the number of records. A nil set is empty.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// At returns the record at row i.
func (s *RecordSet) At(i int) *Record {
	return s.records[i]
}

// ID returns the id of the record at row i.
func (s *RecordSet) ID(i int) int64 {
	return s.ids[i]
}

// IDs returns a copy of all ids in ascending order.
func (s *RecordSet) IDs() []int64 {
	if s == nil {
		return []int64{}
	}
	return slices.Clone(s.ids)
}

// Get looks a record up by id.
func (s *RecordSet) Get(id int64) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.records[i], true
}

// Records returns the records in row order.
func (s *RecordSet) Records() []*Record {
	if s == nil {
		return nil
	}
	return slices.Clone(s.records)
}
