package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/logger"
	"github.com/go-trellis/trellis/internal/services"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/version"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config
	Logger *zap.Logger

	// Core infrastructure
	DB                 *store.Store
	MetricsRecorder    core.Recorder
	MetricsCache       core.Cache[int64]
	MetricsCacheCloser func() error
	RedisClient        *redis.Client

	// Integrations and services
	Integrations    []*integration
	MerchantService *services.MerchantService
	ReviewService   *services.ReviewService

	// Background tasks
	Workers *workerSet

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	// Phase 1: Validate configuration
	if err := validateAllConfiguration(cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+version.App,
		zap.String("version", version.String()),
		zap.String("commit", version.ShortCommit()),
	)

	app := &Application{
		Config: cfg,
		Logger: log,
	}
	warnMissingCredentials(cfg, log)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		return err
	}

	// Phase 4: Initialize background tasks
	if err := app.initializeWorkers(); err != nil {
		return err
	}

	// Phase 5: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		return err
	}

	// Phase 6: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, cache, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config, app.Logger)
	app.MetricsCache, app.MetricsCacheCloser, err = initializeMetricsCache(
		ctx,
		app.Config,
		app.Logger,
	)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RedisClient, err = initializeRateLimitRedisClient(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up the upstream clients and services
func (app *Application) initializeBusinessLayer() error {
	httpClient, retryClient, err := createOAuthHTTPClients(app.Config, app.Logger)
	if err != nil {
		return err
	}

	app.Integrations, err = initializeIntegrations(
		app.Config,
		httpClient,
		retryClient,
		app.MetricsRecorder,
		app.Logger,
	)
	if err != nil {
		return err
	}

	app.MerchantService, app.ReviewService = initializeServices(
		app.Config,
		app.DB,
		app.MetricsRecorder,
		app.Logger,
	)
	return nil
}

// initializeWorkers sets up the task registry and, when enabled, the queue
// runtime and the signal consumer
func (app *Application) initializeWorkers() error {
	workers, err := initializeWorkers(
		app.Config,
		app.DB,
		app.Integrations,
		app.MetricsRecorder,
		app.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize workers: %w", err)
	}
	app.Workers = workers
	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	app.HandlerSet = initializeHandlers(
		app.Config,
		app.Integrations,
		app.MerchantService,
		app.ReviewService,
		app.Workers,
		app.Logger,
	)

	rateLimiters, err := setupRateLimiting(app.Config, app.RedisClient, app.Logger)
	if err != nil {
		return err
	}

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		rateLimiters,
		app.Logger,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Add jobs
	addServerRunningJob(m, app.Server, app.Logger)
	addServerShutdownJob(m, app.Server, app.Config, app.Logger)
	addWorkerRuntimeJob(m, app.Workers, app.Logger)
	addSignalConsumerJob(m, app.Workers, app.Logger)
	addRedisClientShutdownJob(m, app.RedisClient, app.Logger)
	addMetricsGaugeUpdateJob(
		m,
		app.Config,
		app.DB,
		app.Integrations,
		app.MetricsRecorder,
		app.MetricsCache,
		app.Logger,
	)
	addCacheCleanupJob(m, app.MetricsCacheCloser, app.Logger)
	addDatabaseShutdownJob(m, app.DB, app.Logger)

	// Wait for graceful shutdown
	<-m.Done()
}
