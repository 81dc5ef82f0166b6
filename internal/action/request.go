package action

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/haldane-io/progressd/internal/counting"
	"github.com/haldane-io/progressd/internal/tracking"
)

// Request wraps one HTTP request with the counting I/O and non-owning
// back-pointer its tracking entry needs to observe live byte counters.
// It implements tracking.Requester.
//
// entry is an atomic.Pointer rather than a bare field: TrackHandler sets
// it on the request's own goroutine, but ClearEntry may be invoked from a
// worker's task loop (when this request's entry is evicted by a later
// Insert for the same id, or reaped at shutdown) — a different goroutine
// than the one that reads Linked. This is the one place outside the
// init barrier that two goroutines touch the same word, so it is the one
// place an atomic, rather than the owning-goroutine discipline, carries
// the safety.
type Request struct {
	Body     *counting.Reader
	Response *counting.ResponseWriter

	method      string
	requestSize uint64
	startedAt   time.Time

	id    string
	entry atomic.Pointer[tracking.LiveEntry]
}

// WrapRequest builds a Request around r/w, installing counting wrappers
// so BytesIn/BytesOut/Status are observable live without buffering the
// body or response.
func WrapRequest(w http.ResponseWriter, r *http.Request) (*Request, http.ResponseWriter) {
	body := counting.NewReader(r.Body)
	r.Body = body
	cw := counting.NewResponseWriter(w)

	var requestSize uint64
	if r.ContentLength > 0 {
		requestSize = uint64(r.ContentLength)
	} else if cl := r.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseUint(cl, 10, 64); err == nil {
			requestSize = n
		}
	}

	tr := &Request{
		Body:        body,
		Response:    cw,
		method:      r.Method,
		requestSize: requestSize,
		startedAt:   time.Now(),
	}
	return tr, cw
}

// Method is the tracked request's HTTP method.
func (r *Request) Method() string { return r.method }

// Linked reports whether this request currently has a Live tracking
// entry.
func (r *Request) Linked() bool { return r.entry.Load() != nil }

// Link records id and entry as this request's tracking entry. Called
// exactly once, by TrackHandler, at the (none)→Live transition.
func (r *Request) Link(id string, entry *tracking.LiveEntry) {
	r.id = id
	r.entry.Store(entry)
}

// ID returns the ProgressId this request was tracked under, or "" if
// never tracked.
func (r *Request) ID() string { return r.id }

// responseSize reads the response's own declared Content-Length, if the
// handler set one, falling back to bytes written so far.
func (r *Request) responseSize() uint64 {
	if cl := r.Response.Header().Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseUint(cl, 10, 64); err == nil {
			return n
		}
	}
	return r.Response.Count()
}

// Observe implements tracking.Requester: a self-contained snapshot of
// this request's currently-observed counters, safe to hand across a
// worker boundary.
func (r *Request) Observe() tracking.Snapshot {
	return tracking.Snapshot{
		Method:       r.method,
		StartedAt:    r.startedAt,
		RequestSize:  r.requestSize,
		ResponseSize: r.responseSize(),
		BytesIn:      r.Body.Count(),
		BytesOut:     r.Response.Count(),
		StatusCode:   r.Response.Status(),
	}
}

// ClearEntry implements tracking.Requester: nulls this request's
// back-pointer to its tracking entry. Invoked exactly once, at the
// Live→Tombstone transition or at an evicting Insert/Shutdown.
func (r *Request) ClearEntry() {
	r.entry.Store(nil)
}

// Close finalizes this request's tracking entry, if any, transitioning
// Live->Tombstone with a frozen snapshot taken at response-write time.
// It is a no-op if the request was never tracked. Callers invoke this
// from the HTTP handler's request-close hook, exactly once.
func (r *Request) Close(ttl time.Duration) (id string, snap tracking.Snapshot, tracked bool) {
	if !r.Linked() {
		return "", tracking.Snapshot{}, false
	}
	snap = tracking.Snapshot{
		Method:       r.method,
		StartedAt:    r.startedAt,
		ExpiresAt:    time.Now().Add(ttl),
		RequestSize:  r.requestSize,
		ResponseSize: r.responseSize(),
		BytesIn:      r.Body.Count(),
		BytesOut:     r.Response.Count(),
		StatusCode:   r.Response.Status(),
	}
	return r.id, snap, true
}
