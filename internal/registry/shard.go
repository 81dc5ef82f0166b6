package registry

import (
	"time"

	"github.com/haldane-io/progressd/internal/tracking"
	"github.com/haldane-io/progressd/internal/waitqueue"
)

// Shard is the tracking-entry map owned by a single worker, plus that
// worker's tombstone waitqueue. See doc.go for the single-owner contract.
type Shard struct {
	entries map[string]tracking.Entry
	queue   *waitqueue.Queue
}

// NewShard creates an empty shard whose tombstones live ttl past the
// moment their owning request closes. onExpire is forwarded verbatim to
// the underlying waitqueue.Queue and fires (from a timer goroutine)
// whenever the queue's head becomes due; callers are expected to post a
// ReapExpired call back onto this shard's owning worker loop from inside
// onExpire rather than touching the shard from that goroutine.
func NewShard(ttl time.Duration, onExpire func()) *Shard {
	s := &Shard{entries: make(map[string]tracking.Entry)}
	s.queue = waitqueue.NewQueue(ttl, onExpire)
	return s
}

// Insert stores entry under id, replacing and fully destroying any prior
// entry for that id — dropping the previous occupant's resources (request
// back-pointer nulled for a Live entry, waitqueue unlink for a Tombstone)
// before the new one takes its place. Last-writer-wins within a shard;
// cross-shard collisions are not this type's concern.
func (s *Shard) Insert(id string, entry tracking.Entry) {
	if old, ok := s.entries[id]; ok {
		s.destroy(old)
	}
	if tomb, ok := entry.(*tracking.Tombstone); ok {
		tomb.QueueElem = s.queue.Push(id)
	}
	s.entries[id] = entry
}

// Lookup returns the entry for id, if any. The returned Entry must not be
// retained past the shard's next mutation; callers that hand data across a
// worker boundary (internal/collector) copy out a tracking.Snapshot first.
func (s *Shard) Lookup(id string) (tracking.Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Remove drops the entry for id, if present, cascading its destructor.
func (s *Shard) Remove(id string) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	delete(s.entries, id)
	s.destroy(e)
}

// ReapExpired pops every tombstone whose TTL has elapsed and removes it
// from the map, re-arming the waitqueue's timer for the new head. It is
// the shard-local half of the tombstone reaping cycle; callers invoke it
// from the shard's owning worker loop in response to the queue's
// onExpire notification.
func (s *Shard) ReapExpired() []tracking.Entry {
	expired := s.queue.PopExpired()
	reaped := make([]tracking.Entry, 0, len(expired))
	for _, el := range expired {
		id, _ := el.Data.(string)
		if e, ok := s.entries[id]; ok {
			delete(s.entries, id)
			reaped = append(reaped, e)
		}
	}
	s.queue.Update()
	return reaped
}

// Shutdown tears the shard down, cascading every remaining entry's
// destructor (the Live->(none) cascade run at worker shutdown) and
// disarming the waitqueue timer.
func (s *Shard) Shutdown() {
	for id, e := range s.entries {
		delete(s.entries, id)
		s.destroy(e)
	}
	s.queue.Stop()
}

// Entries returns a copy of this shard's id→entry map, for the
// /debug/entries diagnostic endpoint. Like Lookup, the returned Entry
// values must not be retained past the shard's next mutation.
func (s *Shard) Entries() map[string]tracking.Entry {
	out := make(map[string]tracking.Entry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Stats reports the current counts of live and tombstoned entries, used by
// worker.Pool's LiveCount/TombstonedCount behind internal/metrics.
type Stats struct {
	Live       int
	Tombstoned int
}

// StatsSnapshot returns a point-in-time snapshot of this shard's entry counts.
func (s *Shard) StatsSnapshot() Stats {
	var st Stats
	for _, e := range s.entries {
		switch e.(type) {
		case *tracking.LiveEntry:
			st.Live++
		case *tracking.Tombstone:
			st.Tombstoned++
		}
	}
	return st
}

// destroy runs the cascading teardown for whichever variant e is:
// unlinking a Tombstone from the waitqueue, or nulling both back-pointers
// of a LiveEntry (the request's and the entry's own Request). Safe to call on a Tombstone whose queue element
// was already popped by ReapExpired — Queue.Remove is a no-op for an
// element that is no longer linked.
func (s *Shard) destroy(e tracking.Entry) {
	switch v := e.(type) {
	case *tracking.LiveEntry:
		if v.Request != nil {
			v.Request.ClearEntry()
			v.Request = nil
		}
	case *tracking.Tombstone:
		s.queue.Remove(v.QueueElem)
	}
}
