package drawbatch

import (
	"iter"
	"slices"
)

// Store is a two-level batch container: items are bucketed by primary key
// (for example a pipeline or material) and, within a bucket, collected into
// one record per secondary key (for example a mesh or texture).
//
// A Store is created once and reused across frames. Each frame, Insert
// populates it, the consumer reads it through All or Data, and then either
// ClearInner or Prune prepares it for the next frame.
//
// Insert merges into an existing record only if that record is among the
// first scan-window records of its bucket (see WithScanWindow). Past the
// window a second record for the same secondary key is created and stays
// split until the next ClearInner, so consumers must handle every record rather
// than assume one record per key pair.
//
// A Store is not safe for concurrent use.
type Store[PK, SK comparable, T any, C Collection[T]] struct {
	newCollection func() C
	window        int
	logger        *Logger

	index  map[PK]int
	shells []*shell[PK, SK, T, C]
	count  int
}

// NewStore creates an empty Store. newCollection must return a fresh, empty
// collection on every call.
func NewStore[PK, SK comparable, T any, C Collection[T]](newCollection func() C, opts ...Option) *Store[PK, SK, T, C] {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}

	return &Store[PK, SK, T, C]{
		newCollection: newCollection,
		window:        o.scanWindow,
		logger:        o.logger.WithComponent("store"),
		index:         make(map[PK]int, o.sizeHint),
		shells:        make([]*shell[PK, SK, T, C], 0, o.sizeHint),
	}
}

// NewSliceStore creates a Store whose records collect items in a Slice.
func NewSliceStore[PK, SK comparable, T any](opts ...Option) *Store[PK, SK, T, *Slice[T]] {
	return NewStore[PK, SK, T](func() *Slice[T] {
		return new(Slice[T])
	}, opts...)
}

// Insert adds items to the batch for (pk, sk). Count grows by the number of
// items pulled from items.
func (s *Store[PK, SK, T, C]) Insert(pk PK, sk SK, items iter.Seq[T]) {
	items = tapCount(items, &s.count)

	if i, ok := s.index[pk]; ok {
		s.shells[i].insert(sk, items, s.window, s.newCollection)
		return
	}

	s.index[pk] = len(s.shells)
	s.shells = append(s.shells, newShell(pk, NewRecord(sk, s.newCollection(), items)))
}

// InsertSlice is Insert for items already held in a slice.
func (s *Store[PK, SK, T, C]) InsertSlice(pk PK, sk SK, items ...T) {
	s.Insert(pk, sk, slices.Values(items))
}

// ClearInner empties every record in place and resets Count to zero.
// Primary keys and their records are kept, so inserting the same key pairs
// next frame reuses their storage.
//
// The one exception is records split by the scan window: a record whose
// secondary key already has an earlier record under the same primary key is
// dropped. The number of records reported by Stats can therefore shrink
// across a ClearInner, while Len never does.
func (s *Store[PK, SK, T, C]) ClearInner() {
	records := 0
	for _, sh := range s.shells {
		sh.reset(s.window)
		records += len(sh.records)
	}
	s.logger.LogClear(len(s.shells), records, s.count)
	s.count = 0
}

// Prune removes every primary key that holds no items, releasing its
// records. It returns the number of primary keys removed.
//
// Prune is meant to run at a coarser cadence than ClearInner: a key pruned
// right after a clear loses its storage even if it comes back next frame.
func (s *Store[PK, SK, T, C]) Prune() int {
	kept := s.shells[:0]
	for _, sh := range s.shells {
		if sh.empty() {
			delete(s.index, sh.pk)
			continue
		}
		s.index[sh.pk] = len(kept)
		kept = append(kept, sh)
	}

	removed := len(s.shells) - len(kept)
	clear(s.shells[len(kept):])
	s.shells = kept

	s.logger.LogPrune(removed, len(kept))
	return removed
}

// Data yields the collection of every record, across all primary keys.
func (s *Store[PK, SK, T, C]) Data() iter.Seq[C] {
	return func(yield func(C) bool) {
		for _, sh := range s.shells {
			for i := range sh.records {
				if !yield(sh.records[i].collection) {
					return
				}
			}
		}
	}
}

// All yields each primary key together with a sequence of its records as
// (secondary key, collection) pairs. Primary keys come in the order they
// were first inserted; records in the order they were created.
//
// Both levels are views of the store, not copies: they must not be used
// after the store is next mutated.
func (s *Store[PK, SK, T, C]) All() iter.Seq2[PK, iter.Seq2[SK, C]] {
	return func(yield func(PK, iter.Seq2[SK, C]) bool) {
		for _, sh := range s.shells {
			if !yield(sh.pk, sh.all()) {
				return
			}
		}
	}
}

// Records yields the (secondary key, collection) pairs held for pk. It
// yields nothing if pk is unknown.
func (s *Store[PK, SK, T, C]) Records(pk PK) iter.Seq2[SK, C] {
	i, ok := s.index[pk]
	if !ok {
		return func(func(SK, C) bool) {}
	}
	return s.shells[i].all()
}

// Count returns the number of items inserted since the last ClearInner.
// Items inserted twice are counted twice.
func (s *Store[PK, SK, T, C]) Count() int {
	return s.count
}

// Len returns the number of primary keys held.
func (s *Store[PK, SK, T, C]) Len() int {
	return len(s.shells)
}

// Stats describes the current shape of a Store.
type Stats struct {
	// PrimaryKeys is the number of primary keys held.
	PrimaryKeys int
	// Records is the number of records across all primary keys.
	Records int
	// EmptyRecords is the number of records that hold no items.
	EmptyRecords int
	// Items is the number of items held across all records.
	Items int
	// Count is the store's running insert count.
	Count int
	// DuplicateRecords is the number of records whose secondary key
	// already has an earlier record under the same primary key, i.e.
	// batches the scan window failed to merge.
	DuplicateRecords int
}

// Stats walks the store and summarizes it. It is meant for diagnostics and
// costs time proportional to the number of records.
func (s *Store[PK, SK, T, C]) Stats() Stats {
	st := Stats{
		PrimaryKeys: len(s.shells),
		Count:       s.count,
	}
	for _, sh := range s.shells {
		st.Records += len(sh.records)
		st.DuplicateRecords += sh.duplicates()
		for i := range sh.records {
			n := sh.records[i].Len()
			if n == 0 {
				st.EmptyRecords++
			}
			st.Items += n
		}
	}
	return st
}

// tapCount wraps seq so that every item it produces increments *n.
func tapCount[T any](seq iter.Seq[T], n *int) iter.Seq[T] {
	return func(yield func(T) bool) {
		for item := range seq {
			*n++
			if !yield(item) {
				return
			}
		}
	}
}
