package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/carbonlink/backend/internal/application/reconciliation"
	"github.com/carbonlink/backend/internal/infrastructure/cache"
	"github.com/carbonlink/backend/internal/infrastructure/config"
	"github.com/carbonlink/backend/internal/infrastructure/logger"
	"github.com/carbonlink/backend/internal/infrastructure/persistence"
	"github.com/carbonlink/backend/internal/infrastructure/provider"
	"github.com/carbonlink/backend/internal/infrastructure/scheduler"
	"github.com/carbonlink/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	var (
		loop      bool
		flagStale string
	)
	flag.BoolVar(&loop, "loop", false, "Keep running on the configured interval instead of exiting after one run")
	flag.StringVar(&flagStale, "flag-stale", "", "Comma-separated secondary IDs whose recommendations are marked deleted, then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, "carbonlink-reconcile")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, loop, flagStale); err != nil {
		log.Error("Reconciliation failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(cfg *config.Config, log *zap.Logger, loop bool, flagStale string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName + "-reconcile",
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName + "-reconcile",
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init meter provider: %w", err)
	}
	// Flushes the last run's counters before a one-shot process exits
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:       cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:    cfg.Telemetry.DBLogFullSQL,
		DBName:        cfg.Database.DBName,
		ExpectedError: persistence.IsDuplicateKeyError,
	}, log).RegisterOtelGorm(db.DB); err != nil {
		return err
	}

	// Fall back to a process-local lock only when Redis is not configured at all
	store, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Redis.Host == ""),
	).CreateStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	providerClient, err := provider.NewClient(provider.Config{
		BaseURL:                  cfg.Provider.BaseURL,
		APIKey:                   cfg.Provider.APIKey,
		Timeout:                  cfg.Provider.Timeout,
		MaxIdentifiersPerRequest: cfg.Provider.MaxIdentifiersPerRequest,
		MaxConcurrentRequests:    cfg.Provider.MaxConcurrentRequests,
	}, log)
	if err != nil {
		return err
	}

	pipeline := reconciliation.NewPipeline(
		persistence.NewGormCompanyRepository(db.DB),
		persistence.NewGormRecommendationRepository(db.DB),
		providerClient,
		persistence.NewGormCursorStore(db.DB),
		store,
		reconciliation.Config{
			BatchSize: cfg.Reconciliation.BatchSize,
			CursorKey: cfg.Reconciliation.CursorKey,
			LockTTL:   cfg.Reconciliation.LockTTL,
		},
		log,
	)
	if meterProvider.IsEnabled() {
		bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meterProvider.Meter("carbonlink-reconcile"),
			Logger: log,
		})
		if err != nil {
			return err
		}
		pipeline.SetBusinessMetrics(bm)
	}

	if ids := splitIDs(flagStale); len(ids) > 0 {
		_, err := pipeline.FlagStale(ctx, ids)
		return err
	}

	if !loop {
		runCtx, cancel := context.WithTimeout(ctx, cfg.Reconciliation.RunTimeout)
		defer cancel()
		report, err := pipeline.Run(runCtx)
		if errors.Is(err, reconciliation.ErrRunInProgress) {
			log.Warn("Another reconciliation run holds the lock, exiting")
			return nil
		}
		if err != nil {
			return err
		}
		log.Info("Reconciliation finished",
			zap.Int("window_start", report.Window.Start),
			zap.Int("window_end", report.Window.End),
			zap.Int("created", report.Created),
			zap.Int("duplicates", report.Duplicates),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
		)
		return nil
	}

	sched, err := scheduler.NewReconciliationScheduler(pipeline, log, scheduler.ReconciliationSchedulerConfig{
		Enabled:    true,
		Interval:   cfg.Reconciliation.Interval,
		RunTimeout: cfg.Reconciliation.RunTimeout,
		RunOnStart: true,
	})
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	log.Info("Stopping reconciliation loop")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

func splitIDs(s string) []string {
	var ids []string
	for id := range strings.SplitSeq(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
