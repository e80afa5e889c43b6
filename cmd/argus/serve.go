package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vantasec/argus/pkg/config"
	"github.com/vantasec/argus/pkg/governor"
	"github.com/vantasec/argus/pkg/learner"
	"github.com/vantasec/argus/pkg/learner/store"
	"github.com/vantasec/argus/pkg/telemetry/logging"
)

var serveFlags struct {
	metricsAddress string
	logLevel       string
	dryRun         bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the governance core as a long-lived process",
	Long: `Run the governance core as a long-lived process.

The process loads the learned pattern set, starts the maintenance
scheduler and the optional pattern drop watcher, and serves Prometheus
metrics for the governor.

Examples:
  # Start with default config
  argus serve

  # Start with custom config and metrics address
  argus serve --config /etc/argus/config.yaml --metrics :9310

  # Validate config without starting
  argus serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.metricsAddress, "metrics", ":9310", "metrics listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}
	if serveFlags.logLevel != "" {
		cfg.Logging.Level = serveFlags.logLevel
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	slogger := logger.Slog()

	if serveFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Argus v%s\n", Version)
	fmt.Println("✓ Configuration loaded")

	// Governor with its own metrics registry
	registry := prometheus.NewRegistry()
	gov, err := governor.New(cfg.Governor.RateLimit, cfg.Governor.Budget,
		governor.WithLogger(slogger.With("component", "governor")),
		governor.WithMetrics(governor.NewMetrics(registry)),
	)
	if err != nil {
		return fmt.Errorf("failed to create governor: %w", err)
	}
	fmt.Println("✓ Governor initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Learner with persistence
	st, err := store.Open(cfg.Learner.Store.Backend, cfg.Learner.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open pattern store: %w", err)
	}
	l := learner.New(ctx, st, cfg.Learner.Thresholds,
		learner.WithLogger(slogger.With("component", "learner")),
	)
	defer l.Close(context.Background())
	fmt.Printf("✓ Learner initialized (%d patterns)\n", l.Statistics().TotalPatterns)

	// Maintenance scheduler
	scheduler := learner.NewScheduler(l, cfg.Learner.Scheduler)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Stop()

	// Optional pattern drop watcher
	if cfg.Learner.WatchPath != "" {
		watcher, err := learner.NewPatternsWatcher(cfg.Learner.WatchPath, l, 0)
		if err != nil {
			return fmt.Errorf("failed to create pattern watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slogger.Error("pattern watcher exited", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Printf("✓ Watching pattern drops at %s\n", cfg.Learner.WatchPath)
	}

	// Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: serveFlags.metricsAddress, Handler: mux}
	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	status := gov.BudgetStatus()
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", serveFlags.metricsAddress)
	fmt.Printf("✓ Daily budget: $%.2f/$%.2f\n", status.Daily.UsedUSD, status.Daily.LimitUSD)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("metrics server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slogger.Error("metrics server shutdown failed", "error", err)
		}

		fmt.Println("✓ Stopped")
		return nil
	}
}
