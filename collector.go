package drawbatch

import (
	"iter"
	"slices"
	"sync"
)

// Inserter receives batched items. *Store satisfies it for every collection
// type.
type Inserter[PK, SK comparable, T any] interface {
	Insert(pk PK, sk SK, items iter.Seq[T])
}

var _ Inserter[int, int, int] = (*Store[int, int, int, *Slice[int]])(nil)

// Collector stages entries submitted by concurrent producers so that they
// can be moved into a single-threaded Inserter (normally a Store) in one
// pass. Producers call Submit during the collect phase of a frame; the
// consumer calls Drain once all producers are done.
type Collector[PK, SK comparable, T any] struct {
	logger *Logger

	// All further fields are protected by mu
	mu      sync.Mutex
	entries []stagedEntry[PK, SK]
	items   []T

	// Buffers returned by the last Drain, reused by the next one.
	spareEntries []stagedEntry[PK, SK]
	spareItems   []T
}

// stagedEntry refers to items[off : off+n] of the buffer it was staged in.
type stagedEntry[PK, SK comparable] struct {
	pk  PK
	sk  SK
	off int
	n   int
}

type collectorOptions struct {
	entries int
	items   int
	logger  *Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*collectorOptions)

// WithCollectorCapacity pre-sizes the staging buffers for the given number
// of entries and items per frame.
func WithCollectorCapacity(entries, items int) CollectorOption {
	return func(o *collectorOptions) {
		o.entries = max(entries, 0)
		o.items = max(items, 0)
	}
}

// WithCollectorLogger sets the logger used for drain diagnostics.
func WithCollectorLogger(l *Logger) CollectorOption {
	return func(o *collectorOptions) {
		o.logger = l
	}
}

// NewCollector creates an empty Collector.
func NewCollector[PK, SK comparable, T any](opts ...CollectorOption) *Collector[PK, SK, T] {
	var o collectorOptions
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}

	return &Collector[PK, SK, T]{
		logger:  o.logger.WithComponent("collector"),
		entries: make([]stagedEntry[PK, SK], 0, o.entries),
		items:   make([]T, 0, o.items),
	}
}

// Submit stages items under (pk, sk). The items are copied, so the caller
// may reuse the slice once Submit returns. Submitting no items is a no-op.
//
// Submit is safe for concurrent use.
func (c *Collector[PK, SK, T]) Submit(pk PK, sk SK, items []T) {
	if len(items) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, stagedEntry[PK, SK]{
		pk:  pk,
		sk:  sk,
		off: len(c.items),
		n:   len(items),
	})
	c.items = append(c.items, items...)
}

// Drain inserts every staged entry into dst, in submission order, and
// returns the number of items moved. Entries submitted while Drain runs are
// kept for the next Drain.
//
// dst is called without holding the collector's lock, but only from the
// goroutine calling Drain.
func (c *Collector[PK, SK, T]) Drain(dst Inserter[PK, SK, T]) int {
	// Swap the staged buffers with the spare ones so that producers can
	// keep submitting while we insert.
	c.mu.Lock()
	entries, items := c.entries, c.items
	c.entries, c.items = c.spareEntries[:0], c.spareItems[:0]
	c.spareEntries, c.spareItems = nil, nil
	c.mu.Unlock()

	for _, e := range entries {
		dst.Insert(e.pk, e.sk, slices.Values(items[e.off:e.off+e.n]))
	}
	c.logger.LogDrain(len(entries), len(items))
	drained := len(items)

	// Hand the buffers back for the next frame. If another Drain already
	// returned its buffers, ours are simply dropped.
	clear(entries)
	clear(items)
	c.mu.Lock()
	if c.spareEntries == nil {
		c.spareEntries, c.spareItems = entries[:0], items[:0]
	}
	c.mu.Unlock()

	return drained
}

// Pending returns the number of items submitted and not yet drained.
func (c *Collector[PK, SK, T]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
