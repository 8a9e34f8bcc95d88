package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/weft-dev/weft/internal/config"
	"github.com/weft-dev/weft/pkg/inspect"
	"github.com/weft-dev/weft/pkg/observe"
	"github.com/weft-dev/weft/pkg/snapshot"
	"github.com/weft-dev/weft/pkg/weft"
)

func serveCmd() *cobra.Command {
	var (
		addr             string
		configDir        string
		tick             time.Duration
		snapshotInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a demo store with the inspector attached",
		Long: `Run a small reactive store that mutates itself on a timer and serve
the inspector against it. Useful for exploring the devtools surface
and for wiring dashboards before embedding weft in an application.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.InspectorAddress()
			}
			return runServe(cfg, addr, tick, snapshotInterval)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "inspector listen address (default from weft.json)")
	cmd.Flags().StringVar(&configDir, "config", ".", "directory containing weft.json")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "demo mutation interval")
	cmd.Flags().DurationVar(&snapshotInterval, "snapshot-interval", time.Minute, "S3 archive interval (when snapshot.bucket is set)")

	return cmd
}

// guardedStore serializes access to a store shared between the demo
// ticker and the inspector's snapshot requests. The store itself is
// single-threaded; everything that touches it goes through mu.
type guardedStore struct {
	mu    sync.Mutex
	store *weft.Store
}

func (g *guardedStore) Snapshot() (*snapshot.Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return snapshot.Capture(g.store), nil
}

func (g *guardedStore) mutate(fn func(*weft.Store)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.store)
}

func runServe(cfg *config.Config, addr string, tick, snapshotInterval time.Duration) error {
	logger := slog.Default().With("component", "serve")

	registry := prometheus.NewRegistry()
	feed := inspect.NewFeed(256)
	inst := observe.Multi(
		observe.Prometheus(
			observe.WithNamespace(cfg.Metrics.Namespace),
			observe.WithRegistry(registry),
		),
		observe.OpenTelemetry(),
		feed,
	)

	guarded := &guardedStore{store: weft.NewStore(weft.WithInstrument(inst))}
	demo := buildDemo(guarded.store)

	server := inspect.New(inspect.Config{
		Addr:    addr,
		Source:  guarded,
		Feed:    feed,
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:  slog.Default(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	go runDemoTicker(ctx, guarded, demo, tick)

	if cfg.SnapshotEnabled() {
		client := s3.New(s3.Options{Region: cfg.Snapshot.Region})
		archiver := snapshot.NewArchiver(client, cfg.Snapshot.Bucket, cfg.Snapshot.Prefix)
		go runArchiver(ctx, logger, guarded, archiver, cfg, snapshotInterval)
		info("archiving snapshots to s3://%s/%s every %s", cfg.Snapshot.Bucket, cfg.Snapshot.Prefix, snapshotInterval)
	}

	printBanner()
	success("inspector listening on http://%s", addr)
	info("graph:   http://%s/graph", addr)
	info("live:    ws://%s/live", addr)
	info("metrics: http://%s/metrics", addr)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// demoState is the signal graph the demo ticker drives.
type demoState struct {
	ticks   weft.Signal[int]
	history weft.Signal[[]int]
	doubled weft.Derived[int]
	parity  weft.Derived[string]
	summary weft.Derived[string]
}

// buildDemo assembles a small atom/selector graph with a diamond in it,
// so the inspector has something non-trivial to show.
func buildDemo(s *weft.Store) *demoState {
	const owner weft.Owner = 1

	d := &demoState{}
	d.ticks = weft.NewSignal(s, owner, 0)
	d.history = weft.NewSignal(s, owner, []int{})
	d.doubled = weft.NewDerived(s, owner, func(st *weft.Store) int {
		return d.ticks.Get(st) * 2
	})
	d.parity = weft.NewDerived(s, owner, func(st *weft.Store) string {
		if d.ticks.Get(st)%2 == 0 {
			return "even"
		}
		return "odd"
	})
	d.summary = weft.NewDerived(s, owner, func(st *weft.Store) string {
		if d.doubled.Get(st) > 100 {
			return "hot (" + d.parity.Get(st) + ")"
		}
		return "warming up (" + d.parity.Get(st) + ")"
	})
	return d
}

func runDemoTicker(ctx context.Context, guarded *guardedStore, demo *demoState, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			guarded.mutate(func(s *weft.Store) {
				next := demo.ticks.Get(s) + 1
				demo.ticks.Set(s, next)
				demo.history.Update(s, func(h *[]int) {
					*h = append(*h, next)
					if len(*h) > 10 {
						*h = (*h)[len(*h)-10:]
					}
				})
			})
		}
	}
}

func runArchiver(ctx context.Context, logger *slog.Logger, guarded *guardedStore, archiver *snapshot.Archiver, cfg *config.Config, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := guarded.Snapshot()
			if err != nil {
				logger.Error("snapshot capture failed", "error", err)
				continue
			}
			key, err := archiver.Put(ctx, snap)
			if err != nil {
				logger.Error("snapshot archive failed", "error", err)
				continue
			}
			logger.Info("snapshot archived", "key", key)

			if cfg.Snapshot.MaxAgeHours > 0 {
				maxAge := time.Duration(cfg.Snapshot.MaxAgeHours) * time.Hour
				deleted, err := archiver.Prune(ctx, maxAge)
				if err != nil {
					logger.Error("snapshot prune failed", "error", err)
				} else if deleted > 0 {
					logger.Info("snapshots pruned", "deleted", deleted)
				}
			}
		}
	}
}
