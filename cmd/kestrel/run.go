package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelproxy/kestrel/pkg/cli"
	"github.com/kestrelproxy/kestrel/pkg/config"
	"github.com/kestrelproxy/kestrel/pkg/limits"
	"github.com/kestrelproxy/kestrel/pkg/proxy"
	"github.com/kestrelproxy/kestrel/pkg/routing"
	"github.com/kestrelproxy/kestrel/pkg/server"
	"github.com/kestrelproxy/kestrel/pkg/telemetry/logging"
	"github.com/kestrelproxy/kestrel/pkg/telemetry/metrics"
)

var runFlags struct {
	dryRun bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the proxy",
	Long: `Start the proxy with the configuration at --config.

Examples:
  # Start with a config file
  kestrel run --config /etc/kestrel/config.yaml

  # Validate configuration without starting the proxy
  kestrel run --config /etc/kestrel/config.yaml --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the proxy")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Initialize(cfgFile)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	upstreams := make([]routing.Upstream, len(cfg.Upstreams))
	for i, u := range cfg.Upstreams {
		upstreams[i] = routing.Upstream{Host: u.Host, Port: u.Port}
	}
	pool, err := routing.NewPool(upstreams)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	manager := limits.NewManager(cfg.Limits.MaxClientConns, cfg.Limits.MaxConnsPerUpstream)
	policy := proxy.Policy{
		ConnectMs: cfg.Timeouts.ConnectMs,
		ReadMs:    cfg.Timeouts.ReadMs,
		WriteMs:   cfg.Timeouts.WriteMs,
		TotalMs:   cfg.Timeouts.TotalMs,
	}
	sink := metrics.NewSink()
	handler := proxy.New(pool, manager, policy, proxy.Limits{}, 0, sink, logger)

	listener, err := proxy.Listen(cfg.Listen, handler)
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("binding %s: %w", cfg.Listen, err))
	}

	metricsServer := server.New(cfg.MetricsListen, sink)
	startCtx, startCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer startCancel()
	if err := metricsServer.Start(startCtx); err != nil {
		return cli.NewCommandError("run", fmt.Errorf("binding metrics listener %s: %w", cfg.MetricsListen, err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- listener.Serve(ctx) }()

	var watcher *config.Watcher
	if cfg.Reload.Watch {
		watcher, err = config.NewWatcher(cfgFile, time.Duration(cfg.Reload.DebounceMs)*time.Millisecond, nil)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go watcher.Run(ctx)
		logger.Info("config watcher installed", "path", cfgFile)
	}

	logger.Info("kestrel started", "listen", listener.Addr().String(), "metrics_listen", metricsServer.Addr())

	shutdownCtx := cli.SetupSignalHandler()

	select {
	case err := <-serveErr:
		cancel()
		if err != nil {
			return cli.NewCommandError("run", err)
		}
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
		cancel()

		grace, graceCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer graceCancel()

		if watcher != nil {
			watcher.Stop()
		}
		if err := listener.Shutdown(grace); err != nil {
			logger.Error("proxy shutdown did not finish gracefully", "error", err)
		}
		if err := metricsServer.Shutdown(grace); err != nil {
			logger.Error("metrics server shutdown did not finish gracefully", "error", err)
		}
	}

	logger.Info("kestrel stopped")
	return nil
}
