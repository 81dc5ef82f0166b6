// Package main implements progressd, a small standalone service that owns
// the upload-progress tracking subsystem end to end: clients tag an
// upload with an opaque X-Progress-Id and poll a separate URL for live
// byte counters and terminal state.
//
// Architecture:
//
//	┌───────────────────────────────────────────┐
//	│                progressd                   │
//	├───────────────────────────────────────────┤
//	│  HTTP API (per progressd.yaml routes):     │
//	│    track routes   - register an upload     │
//	│    show routes     - poll progress          │
//	│    /debug/entries  - dump all entries       │
//	│    /metrics        - Prometheus exposition  │
//	│    /health         - liveness probe         │
//	├───────────────────────────────────────────┤
//	│  Components:                               │
//	│    worker.Pool     - per-worker shards      │
//	│    collector       - cross-worker gather    │
//	│    action          - track/show handlers    │
//	└───────────────────────────────────────────┘
//
// Configuration:
//   - PROGRESSD_CONFIG: path to a YAML config file (default: "progressd.yaml")
//   - PROGRESSD_LISTEN: listen address (default: ":8080")
//   - PROGRESSD_WORKERS: worker/shard count (default: 4)
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haldane-io/progressd/internal/collector"
	"github.com/haldane-io/progressd/internal/config"
	"github.com/haldane-io/progressd/internal/metrics"
	"github.com/haldane-io/progressd/internal/worker"
)

// logFatal is a variable to allow mocking log.Fatal in tests, the same
// indirection the node service uses to intercept fatal errors without
// terminating the test process.
var logFatal = log.Fatalf

func main() {
	configPath := getenv("PROGRESSD_CONFIG", "progressd.yaml")
	listen := getenv("PROGRESSD_LISTEN", ":8080")
	workerCount := getenvInt("PROGRESSD_WORKERS", 4)

	cfg, err := config.Load(configPath)
	if err != nil {
		logFatal("progressd: config error: %v", err)
	}

	srv := newServer(cfg, workerCount)

	mux := http.NewServeMux()
	srv.mount(mux)

	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("progressd listening on %s (%d workers, ttl %s)", listen, workerCount, cfg.TTL)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("progressd: shutting down")
	srv.stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("progressd: HTTP server shutdown error: %v", err)
	}
	log.Println("progressd stopped")
}

// server encapsulates progressd's runtime state: the config, the worker
// pool backing the sharded registry, and the cross-worker collector.
type server struct {
	cfg        *config.Config
	pool       *worker.Pool
	collector  *collector.Collector
	metrics    *metrics.Registry
	registry   *prometheus.Registry
	cancelPool context.CancelFunc
}

func newServer(cfg *config.Config, workerCount int) *server {
	pool := worker.NewPool(workerCount, cfg.TTL)
	workers := make([]*worker.Worker, workerCount)
	for i := 0; i < workerCount; i++ {
		workers[i] = pool.Prepare(i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	for _, w := range workers {
		go w.Run(ctx)
	}

	reg := prometheus.NewRegistry()
	s := &server{
		cfg:        cfg,
		pool:       pool,
		collector:  collector.New(workers),
		registry:   reg,
		cancelPool: cancel,
	}
	s.metrics = metrics.New(reg, pool)
	pool.SetReapedCounter(s.metrics.ReapedTotal)
	return s
}

func (s *server) stopWorkers() {
	s.cancelPool()
}

// mount installs every configured route plus the ambient health/metrics/
// debug endpoints onto mux.
func (s *server) mount(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	for _, route := range s.cfg.ParsedRoutes {
		route := route
		switch route.Action {
		case config.ActionTrack:
			mux.HandleFunc(route.Path, s.handleTrack)
		case config.ActionShow:
			mux.HandleFunc(route.Path, s.handleShow(route))
		}
	}

	if s.cfg.Debug {
		mux.HandleFunc("/debug/entries", s.handleDebugEntries)
	}
}

// nextWorker assigns each request a worker deterministically by round
// robin, standing in for "whichever worker's event loop accepted this
// connection" in the original plugin host.
func (s *server) nextWorker() *worker.Worker {
	workers := s.pool.Workers()
	idx := int(requestCounter.Add(1)-1) % len(workers)
	return workers[idx]
}
