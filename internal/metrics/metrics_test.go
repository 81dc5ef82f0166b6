package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	live, tombstoned int
}

func (f fakeStats) LiveCount() int       { return f.live }
func (f fakeStats) TombstonedCount() int { return f.tombstoned }

func TestLiveGaugesReflectStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, fakeStats{live: 3, tombstoned: 2})

	require.Equal(t, float64(3), testutil.ToFloat64(m.LiveEntries))
	require.Equal(t, float64(2), testutil.ToFloat64(m.TombstonedEntries))
}

func TestTrackedAndReapedCountersAccumulate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, fakeStats{})

	m.TrackedTotal.Inc()
	m.TrackedTotal.Inc()
	require.Equal(t, float64(2), testutil.ToFloat64(m.TrackedTotal))

	m.ReapedTotal.Add(3)
	require.Equal(t, float64(3), testutil.ToFloat64(m.ReapedTotal))
}

func TestCollectDurationRecordsObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, fakeStats{})

	m.CollectDuration.Observe(0.01)
	require.Equal(t, uint64(1), testutil.CollectAndCount(m.CollectDuration))
}
