package action

import (
	"log"

	"github.com/haldane-io/progressd/internal/config"
	"github.com/haldane-io/progressd/internal/tracking"
	"github.com/haldane-io/progressd/internal/worker"
)

// ProgressIDParam is the query-string key recognized on any tracked URL
// and on the show URL.
const ProgressIDParam = "X-Progress-Id"

// ProgressCallbackParam is the query-string key consulted on the show URL
// when the route's format is jsonp.
const ProgressCallbackParam = "X-Progress-Callback"

// TrackHandler decides whether to start tracking req, which must be owned
// by w (the worker this request was dispatched to). It always returns
// normally; track never short-circuits the request pipeline. The returned
// bool reports whether a Live entry was actually registered, so callers can
// drive a tracked-requests counter off a real outcome rather than every
// call.
func TrackHandler(w *worker.Worker, cfg *config.Config, req *Request, id string, debugf func(format string, args ...any)) bool {
	if !cfg.MethodSet.Has(req.Method()) {
		return false
	}
	if req.Linked() {
		log.Printf("progressd: track: request is already linked to a tracking entry, ignoring")
		return false
	}
	if err := tracking.ValidateID(id); err != nil {
		if cfg.Debug && debugf != nil {
			debugf("progressd: track: invalid %s %q: %v", ProgressIDParam, id, err)
		}
		return false
	}

	entry := tracking.NewLiveEntry(id, req)
	req.Link(id, entry)

	done := make(chan struct{})
	w.Submit(func() {
		w.Shard.Insert(id, entry)
		close(done)
	})
	<-done
	return true
}

// CloseHandler implements the Live->Tombstone request-close hook. It is
// a no-op if req was never tracked. Callers
// invoke this exactly once per request, after the response has been
// fully written, from the same worker req was dispatched to.
func CloseHandler(w *worker.Worker, cfg *config.Config, req *Request) {
	id, snap, tracked := req.Close(cfg.TTL)
	if !tracked {
		return
	}
	tomb := tracking.NewTombstone(id, snap)

	done := make(chan struct{})
	w.Submit(func() {
		w.Shard.Insert(id, tomb)
		close(done)
	})
	<-done
}
