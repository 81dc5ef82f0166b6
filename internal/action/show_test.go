package action

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haldane-io/progressd/internal/collector"
	"github.com/haldane-io/progressd/internal/config"
	"github.com/haldane-io/progressd/internal/worker"
)

func startTestPool(t *testing.T, n int, ttl time.Duration) []*worker.Worker {
	t.Helper()
	pool := worker.NewPool(n, ttl)
	workers := make([]*worker.Worker, n)
	for i := 0; i < n; i++ {
		workers[i] = pool.Prepare(i)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	for _, w := range workers {
		go w.Run(ctx)
	}
	return workers
}

func TestShowHandlerPassesThroughOnMissingID(t *testing.T) {
	workers := startTestPool(t, 2, time.Minute)
	coll := collector.New(workers)

	r := httptest.NewRequest(http.MethodGet, "/progress", nil)
	route := config.ParsedRoute{Path: "/progress", Action: config.ActionShow, Format: config.FormatJSON}

	_, ok := ShowHandler(context.Background(), coll, route, r)
	require.False(t, ok)
}

func TestShowHandlerRendersUnknownForMissingEntry(t *testing.T) {
	workers := startTestPool(t, 2, time.Minute)
	coll := collector.New(workers)

	r := httptest.NewRequest(http.MethodGet, "/progress?X-Progress-Id=missing", nil)
	route := config.ParsedRoute{Path: "/progress", Action: config.ActionShow, Format: config.FormatJSON}

	body, ok := ShowHandler(context.Background(), coll, route, r)
	require.True(t, ok)
	require.JSONEq(t, `{"state":"unknown"}`, string(body))
}

func TestShowHandlerRendersRunningForLiveEntry(t *testing.T) {
	workers := startTestPool(t, 2, time.Minute)
	coll := collector.New(workers)

	upload := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	tr, _ := WrapRequest(rec, upload)
	cfg, err := config.Parse([]byte(""))
	require.NoError(t, err)

	TrackHandler(workers[0], cfg, tr, "abc", nil)

	r := httptest.NewRequest(http.MethodGet, "/progress?X-Progress-Id=abc", nil)
	route := config.ParsedRoute{Path: "/progress", Action: config.ActionShow, Format: config.FormatJSON}

	body, ok := ShowHandler(context.Background(), coll, route, r)
	require.True(t, ok)
	require.JSONEq(t, `{"state":"running","received":0,"sent":0,"request_size":0,"response_size":0}`, string(body))
}

func TestShowHandlerRendersDoneForTombstoneWithOKStatus(t *testing.T) {
	workers := startTestPool(t, 2, time.Minute)
	coll := collector.New(workers)

	upload := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	tr, resp := WrapRequest(rec, upload)
	cfg, err := config.Parse([]byte(""))
	require.NoError(t, err)

	TrackHandler(workers[1], cfg, tr, "abc", nil)
	resp.WriteHeader(200)
	CloseHandler(workers[1], cfg, tr)

	r := httptest.NewRequest(http.MethodGet, "/progress?X-Progress-Id=abc", nil)
	route := config.ParsedRoute{Path: "/progress", Action: config.ActionShow, Format: config.FormatJSON}

	body, ok := ShowHandler(context.Background(), coll, route, r)
	require.True(t, ok)
	require.JSONEq(t, `{"state":"done","received":0,"sent":0,"request_size":0,"response_size":0}`, string(body))
}

func TestShowHandlerRendersErrorForTombstoneWithNonOKStatus(t *testing.T) {
	workers := startTestPool(t, 2, time.Minute)
	coll := collector.New(workers)

	upload := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	tr, resp := WrapRequest(rec, upload)
	cfg, err := config.Parse([]byte(""))
	require.NoError(t, err)

	TrackHandler(workers[0], cfg, tr, "abc", nil)
	resp.WriteHeader(413)
	CloseHandler(workers[0], cfg, tr)

	r := httptest.NewRequest(http.MethodGet, "/progress?X-Progress-Id=abc", nil)
	route := config.ParsedRoute{Path: "/progress", Action: config.ActionShow, Format: config.FormatJSON}

	body, ok := ShowHandler(context.Background(), coll, route, r)
	require.True(t, ok)
	require.JSONEq(t, `{"state":"error","status":413}`, string(body))
}

func TestShowHandlerFramesJSONPWithSanitizedCallback(t *testing.T) {
	workers := startTestPool(t, 1, time.Minute)
	coll := collector.New(workers)

	r := httptest.NewRequest(http.MethodGet, "/progress?X-Progress-Id=missing&X-Progress-Callback=a();b", nil)
	route := config.ParsedRoute{Path: "/progress", Action: config.ActionShow, Format: config.FormatJSONP}

	body, ok := ShowHandler(context.Background(), coll, route, r)
	require.True(t, ok)
	require.Equal(t, `progress({"state": "unknown"})`, string(body))
}

func TestShowHandlerBreaksCollectOnContextCancellation(t *testing.T) {
	workers := startTestPool(t, 1, time.Minute)
	coll := collector.New(workers)

	release := make(chan struct{})
	workers[0].Submit(func() { <-release })

	ctx, cancel := context.WithCancel(context.Background())
	r := httptest.NewRequest(http.MethodGet, "/progress?X-Progress-Id=abc", nil)
	route := config.ParsedRoute{Path: "/progress", Action: config.ActionShow, Format: config.FormatJSON}

	done := make(chan struct{})
	var ok bool
	go func() {
		_, ok = ShowHandler(ctx, coll, route, r)
		close(done)
	}()

	cancel()
	close(release)

	select {
	case <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("ShowHandler never returned after cancellation")
	}
}
