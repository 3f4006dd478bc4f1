// Package drawbatch groups per-item records tagged by a two-level key into
// contiguous batches, so that a consumer such as a draw-call submitter can
// process one batch per distinct key combination instead of one call per
// item.
//
// Two paths are provided. Store buckets items by primary key and merges
// same-key data arriving at different times within a frame, using a bounded
// scan over the secondary keys already seen. ForEachGroup and Grouper walk a
// stream that is already sorted and hand each run of equal keys to a
// callback.
//
// Both are meant to be reused every frame: Store.ClearInner and Grouper keep
// their backing storage between frames. Neither is safe for concurrent use;
// Collector can stage entries from several goroutines and drain them into a
// Store from one.
package drawbatch
