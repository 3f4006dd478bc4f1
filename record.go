package drawbatch

import "iter"

// Record is one batch: a secondary key plus every item that shared that key
// (under one primary key) since the last clear.
type Record[SK any, T any, C Collection[T]] struct {
	key        SK
	collection C
}

// NewRecord builds a record for key, filling the fresh collection c with
// items.
func NewRecord[SK any, T any, C Collection[T]](key SK, c C, items iter.Seq[T]) Record[SK, T, C] {
	c.Extend(items)
	return Record[SK, T, C]{key: key, collection: c}
}

// Key returns the record's secondary key.
func (r *Record[SK, T, C]) Key() SK {
	return r.key
}

// Collection returns the record's items.
func (r *Record[SK, T, C]) Collection() C {
	return r.collection
}

// Extend appends items after the ones already held.
func (r *Record[SK, T, C]) Extend(items iter.Seq[T]) {
	r.collection.Extend(items)
}

// Len returns the number of items in the record.
func (r *Record[SK, T, C]) Len() int {
	return r.collection.Len()
}
