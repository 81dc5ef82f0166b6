package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/haldane-io/progressd/internal/collector"
	"github.com/haldane-io/progressd/internal/registry"
	"github.com/haldane-io/progressd/internal/tracking"
)

// debugEntry is one row of the /debug/entries dump: a ProgressId plus its
// current state, using the same vocabulary as progress.show's body.
type debugEntry struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Received uint64 `json:"received"`
	Sent     uint64 `json:"sent"`
	Status   int    `json:"status,omitempty"`
}

// allEntriesFunc runs on each worker and returns every entry in that
// worker's shard, self-contained (no pointers into the shard), so it is
// safe to hand back across the worker boundary like any other
// collector.Func result.
func allEntriesFunc(shard *registry.Shard) any {
	entries := shard.Entries()
	out := make([]debugEntry, 0, len(entries))
	for id, e := range entries {
		switch v := e.(type) {
		case *tracking.LiveEntry:
			snap := v.Observe()
			out = append(out, debugEntry{ID: id, State: "running", Received: snap.BytesIn, Sent: snap.BytesOut})
		case *tracking.Tombstone:
			state := "done"
			if v.Snapshot.StatusCode != 200 {
				state = "error"
			}
			out = append(out, debugEntry{ID: id, State: state, Received: v.Snapshot.BytesIn, Sent: v.Snapshot.BytesOut, Status: v.Snapshot.StatusCode})
		}
	}
	return out
}

// dumpEntries fans allEntriesFunc out to every worker and flattens the
// result into a single JSON array, sorted by ID for a stable diff-able
// dump.
func dumpEntries(ctx context.Context, coll *collector.Collector) ([]byte, error) {
	resultCh := make(chan []debugEntry, 1)
	errCh := make(chan error, 1)

	coll.Start(ctx, allEntriesFunc, func(_ uuid.UUID, results []any, complete bool) {
		if !complete {
			errCh <- fmt.Errorf("progressd: debug dump was cancelled")
			return
		}
		all := make([]debugEntry, 0, len(results))
		for _, r := range results {
			rows, ok := r.([]debugEntry)
			if !ok {
				continue
			}
			all = append(all, rows...)
		}
		resultCh <- all
	})

	select {
	case all := <-resultCh:
		sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
		return json.Marshal(all)
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
