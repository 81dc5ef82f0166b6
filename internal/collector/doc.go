// Package collector implements the cross-worker scatter/gather primitive
// behind the Func/Callback protocol: fan a read out to every
// worker, running on that worker's own loop, and deliver the aggregated
// results back to the originating caller exactly once.
//
// Generalized from "POST to each node's HTTP address and collect its
// response" to "submit a closure to each worker's task loop and collect
// its return value" — the same scatter/wait-all/gather shape, with
// internal/worker.Worker.Submit standing in for a network call.
//
// Each Start call is tagged with a github.com/google/uuid job id, exposed
// as Handle.JobID and passed to the Callback. The show handler and the
// /debug/entries dump ignore it; no log line carries it.
package collector
