package drawbatch

import "iter"

// DefaultGroupCapacity is the capacity reserved for the run buffer before
// the first run.
const DefaultGroupCapacity = 64

// ForEachGroup calls fn once for every maximal run of consecutive pairs in
// seq that share a key, passing the run's key and its values in input
// order. Keys are only compared with their neighbours: seq is expected to
// be sorted or grouped already, and two separate runs of the same key
// produce two calls.
//
// The values slice is scratch space. fn may modify it but must not retain
// it after returning.
func ForEachGroup[K comparable, V any](seq iter.Seq2[K, V], fn func(key K, values []V)) {
	groupRuns(make([]V, 0, DefaultGroupCapacity), seq, equal[K], fn)
}

// ForEachGroupFunc is like ForEachGroup but compares neighbouring keys with
// eq, for key types that cannot be compared with ==.
func ForEachGroupFunc[K, V any](seq iter.Seq2[K, V], eq func(a, b K) bool, fn func(key K, values []V)) {
	groupRuns(make([]V, 0, DefaultGroupCapacity), seq, eq, fn)
}

// Grouper splits sorted streams into runs of equal keys, like ForEachGroup,
// but keeps its buffer between calls so that grouping once per frame does
// not allocate in steady state.
//
// Keys of any type can be grouped with GroupFunc; Group covers keys that
// compare with ==.
//
// A Grouper is not safe for concurrent use.
type Grouper[K, V any] struct {
	buf []V
}

// NewGrouper returns a Grouper whose buffer starts with room for capacity
// values. A capacity below 1 selects DefaultGroupCapacity.
func NewGrouper[K, V any](capacity int) *Grouper[K, V] {
	if capacity < 1 {
		capacity = DefaultGroupCapacity
	}
	return &Grouper[K, V]{buf: make([]V, 0, capacity)}
}

// Group runs fn over every run of equal keys in seq, reusing g's buffer.
func Group[K comparable, V any](g *Grouper[K, V], seq iter.Seq2[K, V], fn func(key K, values []V)) {
	g.GroupFunc(seq, equal[K], fn)
}

// GroupFunc runs fn over every run of keys in seq that compare equal with
// eq.
func (g *Grouper[K, V]) GroupFunc(seq iter.Seq2[K, V], eq func(a, b K) bool, fn func(key K, values []V)) {
	g.buf = groupRuns(g.buf, seq, eq, fn)
}

// groupRuns does the grouping using buf as the run buffer and returns buf,
// emptied, for reuse.
func groupRuns[K, V any](buf []V, seq iter.Seq2[K, V], eq func(a, b K) bool, fn func(key K, values []V)) []V {
	var (
		current K
		open    bool
	)
	buf = buf[:0]

	for key, value := range seq {
		switch {
		case !open:
			current, open = key, true
		case !eq(current, key):
			fn(current, buf)
			clear(buf)
			buf = buf[:0]
			current = key
		}
		buf = append(buf, value)
	}

	// The last run is still buffered once seq is exhausted.
	if open {
		fn(current, buf)
		clear(buf)
	}
	return buf[:0]
}

func equal[K comparable](a, b K) bool {
	return a == b
}
