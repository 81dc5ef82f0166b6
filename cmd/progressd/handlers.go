package main

import (
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/haldane-io/progressd/internal/action"
	"github.com/haldane-io/progressd/internal/config"
)

// requestCounter backs round-robin worker assignment across all incoming
// requests.
var requestCounter atomic.Uint64

// ackBody is written back once an upload has been fully received. Its
// only purpose is to give response_size/bytes_out a genuine non-zero
// value to observe; the service has no real payload to return.
var ackBody = []byte(`{"ok":true}`)

// handleTrack implements the track route: wrap the request for byte
// counting, dispatch TrackHandler on the request's assigned worker to
// register a Live entry, then actually stream the upload body through
// the counting reader so BytesIn advances while the entry is Live and a
// concurrent show request on another worker can observe it. The status
// written reflects the real outcome of receiving the body — 200 on
// success, 400 if the body could not be read in full — rather than a
// hardcoded constant. CloseHandler runs only after the response has been
// written, tombstoning the entry with that real status.
func (s *server) handleTrack(w http.ResponseWriter, r *http.Request) {
	tr, rw := action.WrapRequest(w, r)
	wk := s.nextWorker()

	id := r.URL.Query().Get(action.ProgressIDParam)
	var debugf func(string, ...any)
	if s.cfg.Debug {
		debugf = debugLogf
	}
	if action.TrackHandler(wk, s.cfg, tr, id, debugf) {
		s.metrics.TrackedTotal.Inc()
	}

	status := http.StatusOK
	if _, err := io.Copy(io.Discard, tr.Body); err != nil {
		status = http.StatusBadRequest
	}

	rw.WriteHeader(status)
	if status == http.StatusOK {
		_, _ = rw.Write(ackBody)
	}

	action.CloseHandler(wk, s.cfg, tr)
}

// handleShow returns an http.HandlerFunc bound to route: fan the lookup
// out to every worker, wait for the aggregated result (or the client
// disconnecting), and write the framed body.
func (s *server) handleShow(route config.ParsedRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		body, ok := action.ShowHandler(r.Context(), s.collector, route, r)
		s.metrics.CollectDuration.Observe(time.Since(start).Seconds())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// handleDebugEntries is additive operational tooling answering a TODO
// left in the original mod_progress.c about a dump format listing every
// tracked request: a JSON array of every live and tombstoned entry
// across all workers, gated behind config.Config.Debug. This is separate
// from progress.show's own "dump" format, which still renders as JSON.
func (s *server) handleDebugEntries(w http.ResponseWriter, r *http.Request) {
	body, err := dumpEntries(r.Context(), s.collector)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func debugLogf(format string, args ...any) {
	log.Printf(format, args...)
}
