package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/richxcame/logistics-pricing/db"
	"github.com/richxcame/logistics-pricing/internal/cancellation"
	"github.com/richxcame/logistics-pricing/internal/earnings"
	"github.com/richxcame/logistics-pricing/internal/geography"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/richxcame/logistics-pricing/internal/rides"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/config"
	"github.com/richxcame/logistics-pricing/pkg/database"
	"github.com/richxcame/logistics-pricing/pkg/errors"
	"github.com/richxcame/logistics-pricing/pkg/eventbus"
	"github.com/richxcame/logistics-pricing/pkg/kvstore"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	"github.com/richxcame/logistics-pricing/pkg/middleware"
	redisclient "github.com/richxcame/logistics-pricing/pkg/redis"
	"github.com/richxcame/logistics-pricing/pkg/resilience"
	"github.com/richxcame/logistics-pricing/pkg/tracing"
	"go.uber.org/zap"

	_ "time/tzdata"
)

const (
	serviceName = "pricing-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	if err := logger.Init(logger.Options{
		Environment: cfg.Server.Environment,
		Service:     serviceName,
		Level:       cfg.Server.LogLevel,
	}); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting pricing service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	// Sentry error tracking
	sentryEnabled, err := errors.InitSentry(errors.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Server.Environment,
		Release:          version,
		ServerName:       serviceName,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	})
	if err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else if sentryEnabled {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized")
	}

	// OpenTelemetry tracer
	tp, err := tracing.InitTracer(rootCtx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	}, logger.Get())
	if err != nil {
		logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shutdown tracer", zap.Error(err))
			}
		}()
	}

	// Redis holds the pricing configuration snapshot
	redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}()
	logger.Info("Connected to redis")

	// Postgres holds fare locks and the cancellation and split ledgers
	pool, err := database.NewPostgresPool(rootCtx, &cfg.Database, serviceName)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to database")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db.Migrations, "migrations", cfg.Database.MigrationURL()); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	publisher := newPublisher(rootCtx, cfg)

	// Pricing configuration
	snapshots := pricing.NewSnapshotStore(
		pricing.NewRepository(kvstore.New(redisClient, cfg.Pricing.KeyPrefix)),
		pricing.StoreOptions{
			RefreshInterval: cfg.Pricing.RefreshInterval,
			WriteRetries:    cfg.Pricing.WriteRetries,
			Currency:        cfg.Pricing.Currency,
		},
	)
	if _, err := snapshots.Current(rootCtx); err != nil {
		logger.Warn("Failed to warm pricing snapshot, will retry on first request", zap.Error(err))
	}

	pricingService := pricing.NewService(snapshots, publisher)
	geographyService := geography.NewService(snapshots, publisher)
	cancellationService := cancellation.NewService(cancellation.NewRepository(pool), snapshots, publisher)
	earningsService := earnings.NewService(earnings.NewRepository(pool), snapshots, publisher)
	ridesService := rides.NewService(rides.NewRepository(pool), snapshots, cancellationService, earningsService, publisher)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(serviceName))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware(serviceName))
	}
	router.Use(middleware.ErrorReporter())

	// Health check endpoints
	router.GET("/healthz", common.LivenessProbe(serviceName, version))
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, 2*time.Second, map[string]common.HealthCheckFunc{
		"redis":    redisClient.Ping,
		"postgres": pool.Ping,
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer))
	pricing.NewHandler(pricingService).RegisterRoutes(api)
	geography.NewHandler(geographyService).RegisterRoutes(api)
	cancellation.NewHandler(cancellationService).RegisterRoutes(api)
	earnings.NewHandler(earningsService).RegisterRoutes(api)
	rides.NewHandler(ridesService).RegisterRoutes(api, middleware.Idempotency(redisClient, cfg.Server.IdempotencyTTL))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// newPublisher connects to NATS when enabled and guards publishing with a
// circuit breaker. Without NATS events are discarded.
func newPublisher(ctx context.Context, cfg *config.Config) eventbus.Publisher {
	if !cfg.NATS.Enabled {
		logger.Info("NATS disabled, events will be discarded")
		return eventbus.Discard{}
	}

	bus, err := eventbus.New(ctx, eventbus.Config{
		URL:        cfg.NATS.URL,
		Name:       serviceName,
		StreamName: cfg.NATS.Stream,
	})
	if err != nil {
		logger.Warn("Failed to connect to NATS, events will be discarded", zap.Error(err))
		return eventbus.Discard{}
	}
	go func() {
		<-ctx.Done()
		bus.Close()
	}()

	breaker := resilience.NewCircuitBreaker(resilience.Settings{
		Name:             "event-bus",
		Interval:         cfg.Resilience.Interval(),
		Timeout:          cfg.Resilience.Timeout(),
		FailureThreshold: uint32(cfg.Resilience.FailureThreshold),
		SuccessThreshold: 1,
	}, nil)
	return eventbus.NewGuardedPublisher(bus, breaker)
}
