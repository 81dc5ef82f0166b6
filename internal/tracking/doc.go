// Package tracking implements the tracking-entry lifecycle for the
// upload-progress subsystem: the Live/Tombstone state machine that sits
// between an in-flight request and the registry shard that owns it.
//
// # Overview
//
// A tracking entry has exactly two states:
//
//   - Live: points back at the in-flight request. Byte counters and status
//     are read through that back-reference on demand, never cached here.
//   - Tombstone: a frozen Snapshot captured at the moment the tracked
//     request closed, retained until ExpiresAt.
//
// There is no third state and no way back from Tombstone to Live; a new
// Track call with the same ID allocates a brand new entry (see
// internal/registry).
//
// # Back-pointers
//
// Entry and Request form a cyclic pair of non-owning back-pointers: the
// request wrapper in internal/action points at its LiveEntry, and
// LiveEntry.Request (via the Requester interface) points back at the
// request. Both sides are nulled together when the shard drops the
// LiveEntry (internal/registry), which at the request-close hook happens
// as the Tombstone replaces it. No reference counting is used or needed.
package tracking
