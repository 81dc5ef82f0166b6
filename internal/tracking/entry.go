package tracking

import (
	"errors"
	"time"

	"github.com/haldane-io/progressd/internal/waitqueue"
)

const (
	// MinIDLength and MaxIDLength bound a client-supplied ProgressId,
	// inclusive on both ends.
	MinIDLength = 1
	MaxIDLength = 128
)

// ErrInvalidID is returned by ValidateID when a ProgressId falls outside
// [MinIDLength, MaxIDLength].
var ErrInvalidID = errors.New("tracking: progress id must be 1..128 bytes")

// ValidateID checks a client-supplied ProgressId against the length rule
// shared by X-Progress-Id on both the track and show surfaces. Equality and
// hashing of a validated ID are byte-exact; no further normalization is
// performed.
func ValidateID(id string) error {
	if len(id) < MinIDLength || len(id) > MaxIDLength {
		return ErrInvalidID
	}
	return nil
}

// Requester is the non-owning back-reference a LiveEntry holds into the
// request it is tracking. It is implemented by the request wrapper in
// internal/action, kept here as an interface so tracking has no dependency
// on net/http and can be unit tested with a fake.
type Requester interface {
	// Observe returns the currently observed counters for the request.
	// Called on demand; nothing in tracking caches the result.
	Observe() Snapshot
	// ClearEntry nulls the request's back-pointer to its tracking entry.
	// Invoked exactly once, at the Live→Tombstone transition.
	ClearEntry()
}

// Snapshot is a frozen, self-contained copy of a tracked request's
// counters and status. It holds no pointers into a shard, a request, or a
// worker, and is therefore safe to pass across worker goroutines — the
// collector in internal/collector relies on this.
type Snapshot struct {
	// ExpiresAt is only meaningful once the snapshot is attached to a
	// Tombstone; zero for a Snapshot read from a LiveEntry.
	ExpiresAt time.Time
	// StartedAt records when the tracked request began. It is carried on
	// the snapshot only; progress.show, internal/metrics and
	// /debug/entries do not read it.
	StartedAt time.Time
	// Method is the HTTP method of the tracked request, carried and unread
	// in the same way as StartedAt.
	Method       string
	RequestSize  uint64
	ResponseSize uint64
	BytesIn      uint64
	BytesOut     uint64
	StatusCode   int
}

// Entry is the sum type of the two tracking-entry states: Live xor
// Tombstone, never both, never neither. It is sealed to this package —
// only *LiveEntry and *Tombstone implement it — so a type switch on
// Entry is always exhaustive.
type Entry interface {
	ID() string
	sealed()
}

// LiveEntry tracks a request that is still in flight. Byte counters and
// status are not cached here; Observe reads them from Request on demand,
// so readers see a recent but not instantaneous snapshot.
type LiveEntry struct {
	Request Requester
	id      string
}

// NewLiveEntry allocates a Live tracking entry for id, linked to req.
func NewLiveEntry(id string, req Requester) *LiveEntry {
	return &LiveEntry{id: id, Request: req}
}

func (e *LiveEntry) ID() string { return e.id }
func (*LiveEntry) sealed()      {}

// Observe reads the request's currently-observed counters.
func (e *LiveEntry) Observe() Snapshot {
	return e.Request.Observe()
}

// Tombstone is the frozen snapshot captured when a tracked request closes.
// It sits in exactly one waitqueue — its owning shard's — referenced by
// QueueElem so the shard can unlink it in O(1) when it is replaced or
// explicitly removed ahead of its natural expiry.
type Tombstone struct {
	QueueElem *waitqueue.Element
	Snapshot  Snapshot
	id        string
}

// NewTombstone freezes snap under id. The caller is responsible for
// pushing the returned Tombstone onto the owning shard's waitqueue and
// recording the resulting element on QueueElem.
func NewTombstone(id string, snap Snapshot) *Tombstone {
	return &Tombstone{id: id, Snapshot: snap}
}

func (e *Tombstone) ID() string { return e.id }
func (*Tombstone) sealed()      {}
