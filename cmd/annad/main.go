// Command annad is the daemon: it loads configuration, acquires the
// single-instance state lock, wires the Fact Store, Probe Runtime,
// Orchestrator, Policy Engine, and Change Engine together, and serves
// them over the RPC socket until a shutdown signal arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/changeengine"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/config"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/daemonstate"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/drift"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/factstore"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/logging"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/orchestrator"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/parsers"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/policy"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/probe"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/rpc"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/statelock"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/statepaths"
)

func main() {
	var (
		configPath       = flag.String("config", "/etc/anna/annad.toml", "path to the TOML configuration file")
		shutdownGraceSec = flag.Int("shutdown-secs", 5, "graceful shutdown timeout in seconds")
	)
	flag.Parse()

	cfg, err := config.LoadFile(config.Default(), *configPath)
	if err != nil {
		log.Fatalf("annad: load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("annad: invalid config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		Component: "annad",
		RollDir:   statepaths.New(cfg.StateDir).LogsDir(),
	})
	if err != nil {
		log.Fatalf("annad: init logging: %v", err)
	}
	defer logger.Sync()

	layout := statepaths.New(cfg.StateDir)
	if err := layout.EnsureDirs(); err != nil {
		logger.Errorw("failed to create state directories", "error", err)
		os.Exit(1)
	}

	lock, err := statelock.Acquire(layout.LockFile())
	if err != nil {
		logger.Errorw("failed to acquire state lock; another instance may be running", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	tracker := daemonstate.New()
	tracker.SetLockHeldSince(time.Now())
	if err := tracker.SetState(daemonstate.Starting); err != nil {
		logger.Errorw("unexpected initial state transition failure", "error", err)
		os.Exit(1)
	}

	facts, err := factstore.Load(layout.FactsFile())
	if err != nil {
		logger.Warnw("facts file could not be fully loaded; continuing with what could be recovered", "error", err)
	}

	whitelist := probe.DefaultWhitelist()
	runtime := probe.New(whitelist, "/", []string{"PATH=/usr/bin:/bin"})

	pol := policy.Default()
	orch := orchestrator.New(runtime, time.Now, cfg.OrchestratorDeadline)
	changes := changeengine.New(pol, runtime, layout)

	driftFunc := func(ctx context.Context) (drift.Result, error) {
		recorded := facts.ValuesWithPrefix("package:")
		res, err := runtime.Run(ctx, probe.Request{ProbeID: "pacman_qq", Flags: []string{"-Qq"}})
		if err != nil {
			return drift.Result{}, err
		}
		fresh, err := parsers.ParsePackageList(res.Stdout)
		if err != nil {
			return drift.Result{}, err
		}
		return drift.Compare(recorded, fresh), nil
	}

	deps := &rpc.Deps{
		Facts:   facts,
		Orch:    orch,
		Changes: changes,
		Tracker: tracker,
		Drift:   driftFunc,
		IsPrivileged: func(uid uint32) bool {
			return cfg.IsPrivilegedUID(int(uid))
		},
		Logger: logger,
		Clock:  time.Now,
	}

	server := rpc.New(deps, cfg.SocketPath)

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe(ctx) }()

	if err := tracker.SetState(daemonstate.Active); err != nil {
		logger.Errorw("unexpected state transition failure", "error", err)
	}
	logger.Infow("annad started", "socket", cfg.SocketPath, "state_dir", cfg.StateDir)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logger.Infow("received shutdown signal", "signal", fmt.Sprint(sig))
	case err := <-serveErr:
		if err != nil {
			logger.Errorw("rpc server stopped unexpectedly", "error", err)
		}
	}

	_ = tracker.SetState(daemonstate.Stopping)
	cancel() // signals ListenAndServe's watcher goroutine to call server.Close()

	grace := time.Duration(*shutdownGraceSec) * time.Second
	select {
	case <-serveErr:
	case <-time.After(grace):
		logger.Warnw("rpc server did not stop within the shutdown grace period", "grace", grace)
	}

	if err := server.Close(); err != nil {
		logger.Warnw("error while closing rpc server", "error", err)
	}
	if err := facts.Save(); err != nil {
		logger.Errorw("failed to persist facts on shutdown", "error", err)
	}
	_ = tracker.SetState(daemonstate.Inactive)
	logger.Infow("annad stopped")
}
