// Package waitqueue implements a bounded-TTL reaper: a FIFO queue of
// elements that share a single constant time-to-live, with one armed timer
// for the head of the queue rather than one timer per element.
//
// # Overview
//
// Because every element shares the same TTL, insertion order is expiry
// order — pushing always appends at the tail with a strictly
// non-decreasing ExpiresAt, so the queue never needs to be re-sorted.
// Only the head can ever be due; Queue therefore arms a single time.Timer
// at the head's ExpiresAt and re-arms it (or disarms it) every time the
// head changes.
//
// # Concurrency
//
// A Queue is not safe for concurrent use. It is designed to be owned
// exclusively by one worker's task loop (internal/worker), matching the
// single-threaded event-loop-per-shard model used throughout this
// service; the caller is responsible for serializing access.
//
// # Accuracy
//
// Target timer accuracy is +/-1 second; Queue relies on time.Timer,
// which is a best-effort OS-scheduled wakeup, not a hard-real-time
// guarantee.
package waitqueue
