package action

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/haldane-io/progressd/internal/collector"
	"github.com/haldane-io/progressd/internal/config"
	"github.com/haldane-io/progressd/internal/registry"
	"github.com/haldane-io/progressd/internal/render"
	"github.com/haldane-io/progressd/internal/tracking"
)

// lookupResult is collector.Func's self-contained return value: a
// snapshot plus whether it came from a still-Live entry (affects
// rendering — the state=running vs done/error split).
type lookupResult struct {
	snap tracking.Snapshot
	live bool
}

// lookupFunc builds the collector.Func dispatched to every worker for a
// show query on id.
func lookupFunc(id string) collector.Func {
	return func(shard *registry.Shard) any {
		e, ok := shard.Lookup(id)
		if !ok {
			return nil
		}
		switch v := e.(type) {
		case *tracking.LiveEntry:
			return &lookupResult{snap: v.Observe(), live: true}
		case *tracking.Tombstone:
			return &lookupResult{snap: v.Snapshot, live: false}
		}
		return nil
	}
}

func bodyFor(result any) render.Body {
	r, ok := result.(*lookupResult)
	if !ok {
		return render.Unknown()
	}
	if r.live {
		return render.Running(r.snap.BytesIn, r.snap.BytesOut, r.snap.RequestSize, r.snap.ResponseSize)
	}
	if r.snap.StatusCode == http.StatusOK {
		return render.Done(r.snap.BytesIn, r.snap.BytesOut, r.snap.RequestSize, r.snap.ResponseSize)
	}
	return render.Errored(r.snap.StatusCode)
}

// ShowHandler parses X-Progress-Id, fans a lookup out to every worker via
// coll, and renders the first non-nil result (or an unknown-state body if
// none matched).
//
// It returns ok=false when the request should pass through unchanged —
// a missing or invalid X-Progress-Id means "continue the pipeline
// unchanged" rather than emitting a response.
//
// When ctx is cancelled before the collect completes (the client
// disconnected while waiting), ShowHandler issues Break on the in-flight
// collect and returns ok=false without a body: the collector still fires
// its callback exactly once, with complete=false, and no response is
// written.
func ShowHandler(ctx context.Context, coll *collector.Collector, route config.ParsedRoute, r *http.Request) (body []byte, ok bool) {
	id := r.URL.Query().Get(ProgressIDParam)
	if err := tracking.ValidateID(id); err != nil {
		return nil, false
	}

	resultCh := make(chan render.Body, 1)

	handle := coll.Start(ctx, lookupFunc(id), func(_ uuid.UUID, results []any, complete bool) {
		if !complete {
			return
		}
		found, foundOK := collector.First(results)
		if !foundOK {
			resultCh <- render.Unknown()
			return
		}
		resultCh <- bodyFor(found)
	})

	var chosen render.Body
	select {
	case chosen = <-resultCh:
	case <-ctx.Done():
		handle.Break()
		return nil, false
	}

	callback := ""
	if route.Format == config.FormatJSONP {
		callback = r.URL.Query().Get(ProgressCallbackParam)
	}
	framed, err := render.Frame(route.Format, chosen, callback)
	if err != nil {
		return nil, false
	}
	return framed, true
}
