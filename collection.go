package drawbatch

import "iter"

// Collection is the capability set a batch payload must provide. A Store
// builds a collection by calling its factory and then Extend, so any type
// that can be extended from an iterator, iterated, and reset in place can
// hold batched items (instance transforms, vertex data, command lists).
type Collection[T any] interface {
	// Extend appends items in iteration order without disturbing existing
	// contents.
	Extend(items iter.Seq[T])

	// All iterates the collection in insertion order. It must not mutate
	// the collection.
	All() iter.Seq[T]

	// Len returns the number of items held.
	Len() int

	// Reset empties the collection. Implementations should keep their
	// backing storage so the next frame can reuse it.
	Reset()
}

// Slice is a Collection backed by a growable slice. It is the collection
// used by NewSliceStore.
type Slice[T any] []T

var _ Collection[int] = (*Slice[int])(nil)

// NewSlice returns an empty Slice with room for capacity items.
func NewSlice[T any](capacity int) *Slice[T] {
	s := make(Slice[T], 0, capacity)
	return &s
}

// Extend appends every item yielded by items.
func (s *Slice[T]) Extend(items iter.Seq[T]) {
	for item := range items {
		*s = append(*s, item)
	}
}

// All yields the items in insertion order.
func (s *Slice[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range *s {
			if !yield(item) {
				return
			}
		}
	}
}

// Len returns the number of items in s.
func (s *Slice[T]) Len() int {
	return len(*s)
}

// Reset truncates s to zero length, keeping its capacity. Elements are
// zeroed first so that pointers held by the old items can be collected.
func (s *Slice[T]) Reset() {
	clear(*s)
	*s = (*s)[:0]
}

// Items returns the backing slice. It is only valid until the next
// mutation of s.
func (s *Slice[T]) Items() []T {
	return *s
}
