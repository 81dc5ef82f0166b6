package worker

import (
	"runtime"
	"sync/atomic"
	"time"
)

const (
	barrierUnset    int32 = 0
	barrierBuilding int32 = 1
	barrierReady    int32 = 2
)

// Pool is the process-wide holder of the worker/shard array, built once
// by whichever worker's Prepare call wins the init barrier.
type Pool struct {
	workers     []*Worker
	ttl         time.Duration
	barrier     int32
	workerCount int
}

// NewPool describes a pool of workerCount workers, each reaping
// tombstones after ttl. No allocation happens until the first Prepare
// call.
func NewPool(workerCount int, ttl time.Duration) *Pool {
	return &Pool{workerCount: workerCount, ttl: ttl}
}

// Prepare is called once per worker, by that worker, typically
// concurrently with every other worker's own Prepare call at process
// startup. Exactly one caller performs the one-time shard-array
// allocation; the others spin-read until it is published. Every caller
// then installs and returns its own Worker.
func (p *Pool) Prepare(index int) *Worker {
	if atomic.CompareAndSwapInt32(&p.barrier, barrierUnset, barrierBuilding) {
		p.workers = make([]*Worker, p.workerCount)
		atomic.StoreInt32(&p.barrier, barrierReady)
	} else {
		for atomic.LoadInt32(&p.barrier) != barrierReady {
			runtime.Gosched()
		}
	}

	w := newWorker(index, p.ttl)
	p.workers[index] = w
	return w
}

// Count reports the configured number of workers.
func (p *Pool) Count() int { return p.workerCount }

// SetReapedCounter installs c on every worker in the pool, so each
// worker's own reap cycle reports into the same counter.
func (p *Pool) SetReapedCounter(c Counter) {
	for _, w := range p.workers {
		w.SetReapedCounter(c)
	}
}

// Workers returns the published worker array. Valid only after every
// worker's Prepare call has returned; the zero value (nil) before the
// barrier clears.
func (p *Pool) Workers() []*Worker {
	return p.workers
}

// LiveCount sums the live-entry count across every worker's shard,
// satisfying internal/metrics.ShardStats. Each shard is read from its own
// owning worker loop via Submit, never directly, preserving the
// single-owner-goroutine contract.
func (p *Pool) LiveCount() int {
	live, _ := p.statsTotal()
	return live
}

// TombstonedCount sums the tombstoned-entry count across every worker's
// shard, satisfying internal/metrics.ShardStats.
func (p *Pool) TombstonedCount() int {
	_, tombstoned := p.statsTotal()
	return tombstoned
}

func (p *Pool) statsTotal() (live, tombstoned int) {
	if len(p.workers) == 0 {
		return 0, 0
	}

	type result struct{ live, tombstoned int }
	results := make([]result, len(p.workers))
	done := make(chan struct{})
	remaining := int32(len(p.workers))

	for i, w := range p.workers {
		i, w := i, w
		w.Submit(func() {
			st := w.Shard.StatsSnapshot()
			results[i] = result{live: st.Live, tombstoned: st.Tombstoned}
			if atomic.AddInt32(&remaining, -1) == 0 {
				close(done)
			}
		})
	}
	<-done

	for _, r := range results {
		live += r.live
		tombstoned += r.tombstoned
	}
	return live, tombstoned
}
