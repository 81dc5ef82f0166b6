// Package registry implements the per-worker tracking-entry map: a Shard
// is the sole owner of the tracking entries created by one worker, paired
// with that worker's tombstone waitqueue.
//
// # Ownership
//
// A Shard is touched only by its owning worker's task loop
// (internal/worker). There is no mutex here — that absence is deliberate,
// not an oversight: no other goroutine ever directly reads or writes
// another shard's map. Cross-worker reads go through internal/collector,
// which schedules the read as a closure on the owning worker's loop
// instead of reaching into the map directly.
//
// Grounded on a map-plus-copy-on-read-accessor shape, keyed on a
// client-chosen progress id instead of a consistent-hash shard id.
package registry
