package drawbatch

import (
	"iter"
	"slices"
)

// shell holds the records of one primary key, one per secondary key seen
// (modulo the scan window). Most primary keys see a single secondary key
// per frame, so the first record is stored inline.
type shell[PK, SK comparable, T any, C Collection[T]] struct {
	pk      PK
	inline  [1]Record[SK, T, C]
	records []Record[SK, T, C]
}

func newShell[PK, SK comparable, T any, C Collection[T]](pk PK, first Record[SK, T, C]) *shell[PK, SK, T, C] {
	s := &shell[PK, SK, T, C]{pk: pk}
	s.inline[0] = first
	s.records = s.inline[:1:1]
	return s
}

// insert merges items into the record for key if one exists within the
// first window records, and appends a new record otherwise. It reports
// whether the items were merged.
func (s *shell[PK, SK, T, C]) insert(key SK, items iter.Seq[T], window int, newCollection func() C) bool {
	n := min(window, len(s.records))
	for i := range n {
		if s.records[i].key == key {
			s.records[i].Extend(items)
			return true
		}
	}
	s.records = append(s.records, NewRecord(key, newCollection(), items))
	return false
}

// all yields the records of s as (secondary key, collection) pairs.
func (s *shell[PK, SK, T, C]) all() iter.Seq2[SK, C] {
	return func(yield func(SK, C) bool) {
		for i := range s.records {
			if !yield(s.records[i].key, s.records[i].collection) {
				return
			}
		}
	}
}

// reset empties every record's collection, keeping the records. Records
// that duplicate an earlier key are dropped: they can only have been created
// past the scan window, and keeping them would grow the shell every frame.
func (s *shell[PK, SK, T, C]) reset(window int) {
	for i := range s.records {
		s.records[i].collection.Reset()
	}
	if len(s.records) <= window {
		return
	}

	kept := s.records[:1]
	for i := 1; i < len(s.records); i++ {
		if !slices.ContainsFunc(kept, func(r Record[SK, T, C]) bool { return r.key == s.records[i].key }) {
			kept = append(kept, s.records[i])
		}
	}
	clear(s.records[len(kept):])
	s.records = kept
}

// empty reports whether no record of s holds an item.
func (s *shell[PK, SK, T, C]) empty() bool {
	for i := range s.records {
		if s.records[i].Len() > 0 {
			return false
		}
	}
	return true
}

// duplicates counts records whose key already appeared earlier in s.
func (s *shell[PK, SK, T, C]) duplicates() int {
	dups := 0
	for i := 1; i < len(s.records); i++ {
		for j := range i {
			if s.records[j].key == s.records[i].key {
				dups++
				break
			}
		}
	}
	return dups
}
