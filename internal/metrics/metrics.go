package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles the gauges and counters progressd exposes. Callers
// that don't want global registration (tests) can build their own with
// New(prometheus.NewRegistry(), stats).
type Registry struct {
	LiveEntries       prometheus.GaugeFunc
	TombstonedEntries prometheus.GaugeFunc
	ReapedTotal       prometheus.Counter
	TrackedTotal      prometheus.Counter
	CollectDuration   prometheus.Histogram
}

// ShardStats is the minimal per-registry snapshot the live gauges poll.
// Implemented by internal/worker.Pool.
type ShardStats interface {
	LiveCount() int
	TombstonedCount() int
}

// New registers progressd's metrics against reg (cmd/progressd passes a
// per-server prometheus.NewRegistry()) and wires the gauge callbacks to
// stats.
func New(reg prometheus.Registerer, stats ShardStats) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		LiveEntries: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "progressd",
			Name:      "live_entries",
			Help:      "Number of in-flight tracked requests across all worker shards.",
		}, func() float64 { return float64(stats.LiveCount()) }),

		TombstonedEntries: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "progressd",
			Name:      "tombstoned_entries",
			Help:      "Number of completed tracked requests awaiting TTL expiry.",
		}, func() float64 { return float64(stats.TombstonedCount()) }),

		ReapedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "progressd",
			Name:      "reaped_entries_total",
			Help:      "Total number of tombstones removed by the reaper.",
		}),

		TrackedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "progressd",
			Name:      "tracked_requests_total",
			Help:      "Total number of requests registered with progress.track.",
		}),

		CollectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "progressd",
			Name:      "collect_duration_seconds",
			Help:      "Time to fan out and gather a show query across all workers.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
