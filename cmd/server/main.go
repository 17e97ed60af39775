package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	connectionapp "github.com/carbonlink/backend/internal/application/connection"
	recommendationapp "github.com/carbonlink/backend/internal/application/recommendation"
	"github.com/carbonlink/backend/internal/application/reconciliation"
	"github.com/carbonlink/backend/internal/domain/shared"
	"github.com/carbonlink/backend/internal/infrastructure/auth"
	"github.com/carbonlink/backend/internal/infrastructure/cache"
	"github.com/carbonlink/backend/internal/infrastructure/config"
	"github.com/carbonlink/backend/internal/infrastructure/event"
	"github.com/carbonlink/backend/internal/infrastructure/logger"
	"github.com/carbonlink/backend/internal/infrastructure/notification"
	"github.com/carbonlink/backend/internal/infrastructure/persistence"
	"github.com/carbonlink/backend/internal/infrastructure/provider"
	"github.com/carbonlink/backend/internal/infrastructure/scheduler"
	"github.com/carbonlink/backend/internal/infrastructure/telemetry"
	"github.com/carbonlink/backend/internal/interfaces/http/handler"
	"github.com/carbonlink/backend/internal/interfaces/http/middleware"
	"github.com/carbonlink/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			CarbonLink Backend API
//	@version		1.0
//	@description	Supply-chain connections between companies and the recommendations that seed them

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CarbonLink backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
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

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          cfg.Database.DBName,
		ExpectedError:   persistence.IsDuplicateKeyError,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Coordination store: event idempotency markers and the reconciliation lock
	store, err := cache.NewStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create coordination store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing coordination store", zap.Error(err))
		}
	}()

	var revocations auth.RevocationList = auth.NewInMemoryRevocationList()
	healthChecks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisStore, ok := store.(*cache.RedisStore); ok {
		revocations = auth.NewRedisRevocationList(redisStore.Client())
		healthChecks["redis"] = func(ctx context.Context) error {
			return redisStore.Client().Ping(ctx).Err()
		}
	}

	// Repositories
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	memberDirectory := persistence.NewGormMemberDirectory(db.DB)
	relationshipRepo := persistence.NewGormRelationshipRepository(db.DB)
	recommendationRepo := persistence.NewGormRecommendationRepository(db.DB)
	cursorStore := persistence.NewGormCursorStore(db.DB)

	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         meterProvider.Meter("carbonlink"),
			Logger:        log,
			StatsProvider: telemetry.NewGormConnectionStatsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
		defer businessMetrics.Stop()
	}

	// Event bus and notifications
	eventBus := event.NewInMemoryEventBus(log)
	notifiers := map[connectionapp.Channel]connectionapp.Notifier{
		connectionapp.ChannelLegacy: notification.NewLegacyMailNotifier(notification.NewLogMailQueue(log), cfg.Notification.MailFrom),
		connectionapp.ChannelInbox:  notification.NewInboxNotifier(db.DB),
	}
	dispatcher, err := connectionapp.NewNotificationDispatcher(
		memberDirectory,
		companyRepo,
		connectionapp.Channel(cfg.Notification.Channel),
		notifiers,
		log,
	)
	if err != nil {
		log.Fatal("Failed to create notification dispatcher", zap.Error(err))
	}
	eventBus.Subscribe(event.NewIdempotentHandler(
		"connection_notifications",
		dispatcher,
		store,
		log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{
			Enabled: cfg.Event.IdempotencyEnabled,
			TTL:     cfg.Event.IdempotencyTTL,
		}),
	))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	log.Info("Notifications enabled", zap.String("channel", string(dispatcher.Channel())))

	// Application services
	coordinator := connectionapp.NewRelationshipCoordinator(
		relationshipRepo,
		companyRepo,
		persistence.NewGormConnectionTransactionScope(db.DB),
		log,
	)
	coordinator.SetEventPublisher(eventBus)
	recommendationService := recommendationapp.NewRecommendationService(
		recommendationRepo,
		persistence.NewGormRecommendationTransactionScope(db.DB),
		log,
	)
	if businessMetrics != nil {
		coordinator.SetBusinessMetrics(businessMetrics)
		recommendationService.SetBusinessMetrics(businessMetrics)
	}

	// Reconciliation
	if cfg.Reconciliation.Enabled {
		providerClient, err := provider.NewClient(provider.Config{
			BaseURL:                  cfg.Provider.BaseURL,
			APIKey:                   cfg.Provider.APIKey,
			Timeout:                  cfg.Provider.Timeout,
			MaxIdentifiersPerRequest: cfg.Provider.MaxIdentifiersPerRequest,
			MaxConcurrentRequests:    cfg.Provider.MaxConcurrentRequests,
		}, log)
		if err != nil {
			log.Fatal("Failed to create provider client", zap.Error(err))
		}
		pipeline := reconciliation.NewPipeline(
			companyRepo,
			recommendationRepo,
			providerClient,
			cursorStore,
			store,
			reconciliation.Config{
				BatchSize: cfg.Reconciliation.BatchSize,
				CursorKey: cfg.Reconciliation.CursorKey,
				LockTTL:   cfg.Reconciliation.LockTTL,
			},
			log,
		)
		if businessMetrics != nil {
			pipeline.SetBusinessMetrics(businessMetrics)
		}
		reconciliationScheduler, err := scheduler.NewReconciliationScheduler(pipeline, log, scheduler.ReconciliationSchedulerConfig{
			Enabled:    true,
			Interval:   cfg.Reconciliation.Interval,
			RunTimeout: cfg.Reconciliation.RunTimeout,
		})
		if err != nil {
			log.Fatal("Failed to create reconciliation scheduler", zap.Error(err))
		}
		if err := reconciliationScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := reconciliationScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping reconciliation scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	var httpMeters *telemetry.MeterProvider
	if meterProvider.IsEnabled() {
		httpMeters = meterProvider
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MeterProvider:  httpMeters,
		MaxBodyBytes:   cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Actor: middleware.ActorConfig{
			JWTService:          auth.NewJWTService(cfg.JWT),
			Revocations:         revocations,
			AllowHeaderIdentity: cfg.JWT.AllowHeaderIdentity && cfg.App.Env != "production",
		},
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	handler.NewHealthHandler(version, healthChecks).RegisterRoutes(engine)
	router.NewRouter(engine).
		Register(handler.NewRelationshipHandler(coordinator, revocations)).
		Register(handler.NewRecommendationHandler(recommendationService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
