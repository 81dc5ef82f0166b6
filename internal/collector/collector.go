package collector

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/haldane-io/progressd/internal/registry"
	"github.com/haldane-io/progressd/internal/worker"
)

// Func runs on a single worker's own task loop and returns that worker's
// contribution to a collect — typically a *tracking.Snapshot or nil. The
// returned value must be self-contained (no pointers into the shard or a
// request) since it crosses back to the originating worker.
type Func func(shard *registry.Shard) any

// Callback receives the aggregated per-worker results in worker-index
// order, plus complete=false if the collect was broken (Break, or the
// Start context cancelled) before every worker's task had returned; a
// worker whose task ran after the break leaves a nil result. Callback fires
// exactly once per Start call, on the goroutine internal to Collector —
// never synchronously inside Start.
type Callback func(jobID uuid.UUID, results []any, complete bool)

// Collector fans a Func out to every worker in a fixed worker set and
// gathers the results. A Collector is safe for concurrent use: each Start
// call is independent.
type Collector struct {
	workers []*worker.Worker
}

// New builds a Collector over the given, fixed set of workers — normally
// worker.Pool.Workers() once the init barrier has cleared.
func New(workers []*worker.Worker) *Collector {
	return &Collector{workers: workers}
}

// Handle identifies one in-flight collect; Break cancels it.
type Handle struct {
	cancel context.CancelFunc
	JobID  uuid.UUID
}

// Break requests cancellation of the collect. A Break that lands while
// worker closures are still pending or in flight does not suppress the
// Callback: it still fires exactly once, with complete=false. A Break
// after the Callback has fired has no effect.
func (h *Handle) Break() {
	h.cancel()
}

// Start dispatches fn to every worker, each running on that worker's own
// loop via Worker.Submit, and invokes cb once every worker's task has
// returned. After the returned Handle's Break, tasks that have not started
// yet skip fn, but cb still waits for each of them to be run. Results are ordered
// by worker index, so a "first in worker order wins" collision policy is
// just a left-to-right scan of the slice (see First).
func (c *Collector) Start(ctx context.Context, fn Func, cb Callback) *Handle {
	jobCtx, cancel := context.WithCancel(ctx)
	jobID := uuid.New()

	results := make([]any, len(c.workers))
	var wg sync.WaitGroup
	wg.Add(len(c.workers))

	for i, w := range c.workers {
		i, w := i, w
		w.Submit(func() {
			defer wg.Done()
			select {
			case <-jobCtx.Done():
				return
			default:
			}
			results[i] = fn(w.Shard)
		})
	}

	go func() {
		wg.Wait()
		complete := jobCtx.Err() == nil
		cb(jobID, results, complete)
	}()

	return &Handle{cancel: cancel, JobID: jobID}
}

// First returns the first non-nil result in worker order, and whether one
// was found. Cross-shard ID collisions are not detected upstream of this
// call; if more than one worker's Func returned non-nil, the lowest-index
// worker wins, a deliberate simplification.
func First(results []any) (any, bool) {
	for _, r := range results {
		if r != nil {
			return r, true
		}
	}
	return nil, false
}
