package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haldane-io/progressd/internal/config"
)

func TestNewServerBuildsPoolAndCollector(t *testing.T) {
	cfg, err := config.Parse([]byte("ttl: 10s\n"))
	require.NoError(t, err)

	srv := newServer(cfg, 3)
	defer srv.stopWorkers()

	require.NotNil(t, srv.pool)
	require.NotNil(t, srv.collector)
	require.Len(t, srv.pool.Workers(), 3)
}

func TestSubmitAfterStopWorkersDoesNotBlock(t *testing.T) {
	cfg, err := config.Parse([]byte(""))
	require.NoError(t, err)
	srv := newServer(cfg, 1)

	srv.stopWorkers()

	// Submitting after shutdown must not block, matching worker.Worker's
	// own post-shutdown Submit contract.
	done := make(chan struct{})
	go func() {
		srv.pool.Workers()[0].Submit(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submit after server shutdown blocked")
	}
}
