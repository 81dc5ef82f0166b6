// Package action implements the two request-facing handlers of the
// upload-progress tracking subsystem: TrackHandler registers a tracked
// request on its owning worker's shard; ShowHandler fans a lookup out to
// every worker via internal/collector and renders the first match.
//
// TrackHandler follows a validate-then-branch style; ShowHandler follows
// a scatter/gather/respond-once shape built on internal/collector.
package action
