package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	billingapp "github.com/restaurant/backend/internal/application/billing"
	catalogapp "github.com/restaurant/backend/internal/application/catalog"
	"github.com/restaurant/backend/internal/domain/billing"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/cache"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/messaging"
	"github.com/restaurant/backend/internal/infrastructure/migration"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/storage"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/restaurant/backend/internal/interfaces/http/handler"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
	"github.com/restaurant/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/restaurant/backend/docs"
)

//	@title			Restaurant Backend API
//	@version		1.0
//	@description	Menu catalog and bill management API

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
	_ = logger.Sync(log)
}

func run(ctx context.Context, cfg *config.Config, baseLog *zap.Logger) error {
	tel, err := setupTelemetry(ctx, cfg, baseLog)
	if err != nil {
		return err
	}
	defer tel.shutdown(baseLog)
	log := tel.logger

	log.Info("Starting restaurant backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.Database.AutoMigrate {
		if err := autoMigrate(cfg.Database, log); err != nil {
			return err
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		return fmt.Errorf("register db tracing: %w", err)
	}

	meter := tel.meters.Meter("restaurant-backend")
	dbMetrics, err := telemetry.NewDBMetrics(meter, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		return fmt.Errorf("create db metrics: %w", err)
	}
	if err := dbMetrics.Register(db.DB); err != nil {
		return fmt.Errorf("register db metrics: %w", err)
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		dbMetrics.StartPoolStatsCollection(ctx, sqlDB)
	}
	defer dbMetrics.Stop()

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:     meter,
		Logger:    log,
		Snapshots: telemetry.NewGormSnapshotProvider(db.DB),
	})
	if err != nil {
		return fmt.Errorf("create business metrics: %w", err)
	}
	businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsPeriod)
	defer businessMetrics.Stop()

	menuCache, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).CreateCache(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := menuCache.Close(); err != nil {
			log.Error("Error closing menu item cache", zap.Error(err))
		}
	}()

	images, err := newImageStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	publisher, err := newEventPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Error closing event publisher", zap.Error(err))
		}
	}()

	txScope := persistence.NewGormTransactionScope(db.DB)
	menuItemRepo := persistence.NewGormMenuItemRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)

	menuItemService := catalogapp.NewMenuItemService(txScope, menuItemRepo, images)
	menuItemService.SetCache(menuCache)
	menuItemService.SetEventPublisher(publisher)
	menuItemService.SetBusinessMetrics(businessMetrics)

	policy := billing.NewDeletionPolicy(cfg.Billing.DeletionGraceDays)
	policy.Location = cfg.Billing.Location()
	billService := billingapp.NewBillService(txScope, billRepo, menuItemRepo, policy)
	billService.SetMenuItemCache(menuCache)
	billService.SetEventPublisher(publisher)
	billService.SetBusinessMetrics(businessMetrics)

	checks := map[string]handler.Pinger{"database": db}
	if cfg.Redis.Enabled {
		checks["redis"] = menuCache
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}

	security := middleware.DefaultSecurityConfig()
	if cfg.App.Env == "production" {
		security.HSTSMaxAge = 31536000
	}
	engine, err := router.NewEngine(router.Handlers{
		MenuItem: handler.NewMenuItemHandler(menuItemService),
		Bill:     handler.NewBillHandler(billService),
		Health:   handler.NewHealthHandler(checks),
	}, router.Options{
		Logger: log,
		Meter:  tel.meters,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		},
		Security:       security,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Swagger:        cfg.Swagger.Enabled,
		RateLimiter:    limiter,
		Profiling:      tel.profiler.IsEnabled(),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

type telemetryProviders struct {
	tracer   *telemetry.TracerProvider
	profiler *telemetry.Profiler
	meters   *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	logger   *zap.Logger
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryProviders, error) {
	t := cfg.Telemetry
	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           t.Enabled,
		CollectorEndpoint: t.CollectorEndpoint,
		SamplingRatio:     t.SamplingRatio,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init tracer provider: %w", err)
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         t.ProfilingEnabled,
		ServerAddress:   t.ProfilingServerAddress,
		ApplicationName: t.ServiceName,
		ProfileTypes:    t.ProfilingTypes,
		AuthUser:        t.ProfilingAuthUser,
		AuthPassword:    t.ProfilingAuthPassword,
	}, log)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("init profiler: %w", err)
	}
	if profiler.IsEnabled() {
		tracer.EnableSpanProfiles()
	}

	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           t.Enabled && t.MetricsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ExportInterval:    t.MetricsPeriod,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		_ = profiler.Stop()
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("init meter provider: %w", err)
	}

	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           t.Enabled && t.LogsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		_ = meters.Shutdown(ctx)
		_ = profiler.Stop()
		_ = tracer.Shutdown(ctx)
		return nil, fmt.Errorf("init logger provider: %w", err)
	}

	return &telemetryProviders{
		tracer:   tracer,
		profiler: profiler,
		meters:   meters,
		logs:     logs,
		logger:   telemetry.BridgeLogger(log, logs, t.ServiceName),
	}, nil
}

// shutdown flushes exporters in reverse start order
func (t *telemetryProviders) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := t.logs.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
	if err := t.meters.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := t.profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := t.tracer.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
}

// autoMigrate runs the embedded migrations on a dedicated connection;
// closing the migrator closes the connection it was given.
func autoMigrate(cfg config.DatabaseConfig, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	m, err := migration.NewEmbedded(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer m.Close()
	return m.Up()
}

func newImageStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (catalogapp.ImageStorage, error) {
	if !cfg.Enabled {
		log.Info("Object storage disabled, image uploads unavailable", zap.String("base_url", cfg.PublicBaseURL))
		return storage.NewStaticImageStorage(cfg.PublicBaseURL), nil
	}
	s3Storage, err := storage.NewS3ImageStorage(ctx, cfg, storage.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("init image storage: %w", err)
	}
	// S3-compatible stores (MinIO and friends) start empty in development
	if cfg.Endpoint != "" && cfg.Bucket != "" {
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Image bucket is not ready", zap.String("bucket", cfg.Bucket), zap.Error(err))
		}
	}
	log.Info("Using S3 image storage", zap.String("bucket", cfg.Bucket), zap.String("region", cfg.Region))
	return s3Storage, nil
}

type eventPublisher interface {
	shared.EventPublisher
	io.Closer
}

// newEventPublisher publishes to Kafka when enabled and to the log otherwise
func newEventPublisher(cfg config.KafkaConfig, log *zap.Logger) (eventPublisher, error) {
	if !cfg.Enabled {
		return messaging.NewLogEventPublisher(log), nil
	}
	return messaging.NewKafkaEventPublisher(cfg, log)
}
