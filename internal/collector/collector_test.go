package collector

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/haldane-io/progressd/internal/registry"
	"github.com/haldane-io/progressd/internal/tracking"
	"github.com/haldane-io/progressd/internal/worker"
)

func startPool(t *testing.T, n int) ([]*worker.Worker, context.CancelFunc) {
	t.Helper()
	pool := worker.NewPool(n, 30*time.Second)
	workers := make([]*worker.Worker, n)
	for i := 0; i < n; i++ {
		workers[i] = pool.Prepare(i)
	}
	ctx, cancel := context.WithCancel(context.Background())
	for _, w := range workers {
		go w.Run(ctx)
	}
	return workers, cancel
}

func lookupFunc(id string) Func {
	return func(shard *registry.Shard) any {
		e, ok := shard.Lookup(id)
		if !ok {
			return nil
		}
		switch v := e.(type) {
		case *tracking.LiveEntry:
			snap := v.Observe()
			return &snap
		case *tracking.Tombstone:
			snap := v.Snapshot
			return &snap
		}
		return nil
	}
}

func TestStartGathersResultFromOwningWorker(t *testing.T) {
	workers, cancel := startPool(t, 4)
	defer cancel()

	done := make(chan struct{})
	workers[2].Submit(func() {
		workers[2].Shard.Insert("abc", tracking.NewTombstone("abc", tracking.Snapshot{StatusCode: 200, BytesIn: 5}))
		close(done)
	})
	<-done

	coll := New(workers)
	got := make(chan []any, 1)
	coll.Start(context.Background(), lookupFunc("abc"), func(_ uuid.UUID, results []any, complete bool) {
		require.True(t, complete)
		got <- results
	})

	select {
	case results := <-got:
		found, ok := First(results)
		require.True(t, ok)
		snap := found.(*tracking.Snapshot)
		require.Equal(t, 200, snap.StatusCode)
		require.Equal(t, uint64(5), snap.BytesIn)
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
}

func TestStartReturnsNoResultWhenUnknown(t *testing.T) {
	workers, cancel := startPool(t, 4)
	defer cancel()

	coll := New(workers)
	got := make(chan []any, 1)
	coll.Start(context.Background(), lookupFunc("missing"), func(_ uuid.UUID, results []any, complete bool) {
		require.True(t, complete)
		got <- results
	})

	select {
	case results := <-got:
		_, ok := First(results)
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
}

func TestFirstPrefersLowestWorkerIndexOnCollision(t *testing.T) {
	workers, cancel := startPool(t, 3)
	defer cancel()

	for _, idx := range []int{0, 2} {
		idx := idx
		done := make(chan struct{})
		workers[idx].Submit(func() {
			workers[idx].Shard.Insert("dup", tracking.NewTombstone("dup", tracking.Snapshot{StatusCode: idx}))
			close(done)
		})
		<-done
	}

	coll := New(workers)
	got := make(chan []any, 1)
	coll.Start(context.Background(), lookupFunc("dup"), func(_ uuid.UUID, results []any, complete bool) {
		got <- results
	})

	results := <-got
	found, ok := First(results)
	require.True(t, ok)
	require.Equal(t, 0, found.(*tracking.Snapshot).StatusCode, "lowest worker index must win on collision")
}

func TestBreakDeliversIncompleteCallbackExactlyOnce(t *testing.T) {
	workers, cancel := startPool(t, 2)
	defer cancel()

	// Block each worker's loop so the collect's Func tasks queue up behind
	// this one, guaranteeing Break happens before any Func actually runs.
	release := make(chan struct{})
	for _, w := range workers {
		w.Submit(func() { <-release })
	}

	coll := New(workers)
	calls := make(chan bool, 4)
	h := coll.Start(context.Background(), lookupFunc("abc"), func(_ uuid.UUID, results []any, complete bool) {
		calls <- complete
	})
	h.Break()
	close(release)

	select {
	case complete := <-calls:
		require.False(t, complete)
	case <-time.After(time.Second):
		t.Fatal("callback never fired after break")
	}

	select {
	case <-calls:
		t.Fatal("callback fired more than once")
	case <-time.After(100 * time.Millisecond):
	}
}
