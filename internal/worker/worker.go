package worker

import (
	"context"
	"time"

	"github.com/haldane-io/progressd/internal/registry"
)

// taskQueueSize bounds how many pending cross-worker tasks (collector
// dispatches, reaper wakeups) may queue before Submit blocks its caller.
// Generous enough that a burst of show-requests never stalls tracking.
const taskQueueSize = 256

// Counter is the minimal metric sink scheduleReap reports into, satisfied
// by a prometheus.Counter without this package importing prometheus.
type Counter interface {
	Add(float64)
}

// Worker is one shard's exclusive owner: a task loop plus the
// registry.Shard it alone may mutate.
type Worker struct {
	Shard  *registry.Shard
	tasks  chan func()
	done   chan struct{}
	Index  int
	reaped Counter
}

func newWorker(index int, ttl time.Duration) *Worker {
	w := &Worker{
		Index: index,
		tasks: make(chan func(), taskQueueSize),
		done:  make(chan struct{}),
	}
	w.Shard = registry.NewShard(ttl, w.scheduleReap)
	return w
}

// SetReapedCounter installs c as the sink scheduleReap reports into, via
// Submit so the assignment is itself serialized through the worker's own
// loop rather than racing a reap in flight.
func (w *Worker) SetReapedCounter(c Counter) {
	w.Submit(func() {
		w.reaped = c
	})
}

// scheduleReap runs on the waitqueue's timer goroutine; it never touches
// the shard itself, only schedules the actual reap back onto this
// worker's own loop, preserving the single-owner rule.
func (w *Worker) scheduleReap() {
	w.Submit(func() {
		reaped := w.Shard.ReapExpired()
		if len(reaped) > 0 && w.reaped != nil {
			w.reaped.Add(float64(len(reaped)))
		}
	})
}

// Submit enqueues task to run on this worker's loop. It is the sole
// mechanism by which code outside the owning goroutine may observe or
// mutate the shard. Submit is a no-op once the worker has shut down.
func (w *Worker) Submit(task func()) {
	select {
	case w.tasks <- task:
	case <-w.done:
	}
}

// Run drains the task channel until ctx is canceled, then tears the shard
// down and marks the worker done so any further Submit calls become
// no-ops.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case task := <-w.tasks:
			task()
		case <-ctx.Done():
			w.Shard.Shutdown()
			close(w.done)
			return
		}
	}
}
