// Package worker models the per-worker event loop that owns one
// registry.Shard exclusively, and the one-time barrier that allocates the
// shard array before any worker touches it.
//
// # Event loop
//
// Each Worker runs a single goroutine pulling closures off a task channel,
// standing in for the single-threaded event-loop thread of the original
// embedding host. A Shard is mutated only from inside its owning Worker's
// loop; cross-worker access (the collector in internal/collector) reaches
// in exclusively via Worker.Submit, which schedules a closure onto the
// owning loop instead of touching the shard directly — there is
// deliberately no lock on registry.Shard to bypass.
//
// # Initialization barrier
//
// Pool.Prepare implements a 0->1->2 atomic sequence: workers start
// concurrently and call Prepare(index); exactly one observes the barrier
// at 0, CASes it to 1, allocates the shard array, and publishes 2; the
// rest spin-read until they observe 2 before installing their own shard.
package worker
