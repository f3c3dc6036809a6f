package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/metrics"
	"github.com/go-trellis/trellis/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server, log *zap.Logger) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("failed to start server", zap.Error(err))
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(
	m *graceful.Manager,
	srv *http.Server,
	cfg *config.Config,
	log *zap.Logger,
) {
	m.AddShutdownJob(func() error {
		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
			return err
		}

		log.Info("server exited")
		return nil
	})
}

// addWorkerRuntimeJob starts the task server and scheduler and stops them
// on shutdown
func addWorkerRuntimeJob(m *graceful.Manager, ws *workerSet, log *zap.Logger) {
	if ws == nil || ws.runtime == nil {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		if err := ws.runtime.Start(); err != nil {
			log.Error("failed to start background worker", zap.Error(err))
			return err
		}
		log.Info("background worker started")
		<-ctx.Done()
		return nil
	})

	m.AddShutdownJob(func() error {
		log.Info("stopping background worker")
		ws.runtime.Shutdown()
		return nil
	})
}

// addSignalConsumerJob runs the kafka consumer until shutdown
func addSignalConsumerJob(m *graceful.Manager, ws *workerSet, log *zap.Logger) {
	if ws == nil || ws.consumer == nil {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		log.Info("signal consumer started")
		if err := ws.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("signal consumer stopped", zap.Error(err))
			return err
		}
		return nil
	})

	m.AddShutdownJob(func() error {
		if err := ws.consumer.Close(); err != nil {
			log.Warn("error closing signal consumer", zap.Error(err))
		}
		if err := ws.queue.Close(); err != nil {
			log.Warn("error closing task queue client", zap.Error(err))
		}
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client, log *zap.Logger) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		log.Info("closing Redis connection")
		if err := redisClient.Close(); err != nil {
			log.Error("error closing Redis client", zap.Error(err))
			return err
		}
		return nil
	})
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	integrations []*integration,
	recorder core.Recorder,
	metricsCache core.Cache[int64],
	log *zap.Logger,
) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled || metricsCache == nil {
		return
	}

	names := make([]string, 0, len(integrations))
	for _, in := range integrations {
		names = append(names, in.name)
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.MetricsGaugeUpdateInterval)
		defer ticker.Stop()

		cacheWrapper := metrics.NewCacheWrapper(db, metricsCache)
		errLog := newErrorLogger(log)

		// Update immediately on startup
		updateGaugeMetricsWithCache(ctx, cacheWrapper, recorder, names,
			cfg.MetricsGaugeUpdateInterval, errLog)

		for {
			select {
			case <-ticker.C:
				updateGaugeMetricsWithCache(ctx, cacheWrapper, recorder, names,
					cfg.MetricsGaugeUpdateInterval, errLog)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addCacheCleanupJob adds cache cleanup on shutdown
func addCacheCleanupJob(m *graceful.Manager, metricsCacheCloser func() error, log *zap.Logger) {
	if metricsCacheCloser == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := metricsCacheCloser(); err != nil {
			log.Warn("error closing metrics cache", zap.Error(err))
		}
		return nil
	})
}

// addDatabaseShutdownJob closes the connection pool on shutdown
func addDatabaseShutdownJob(m *graceful.Manager, db *store.Store, log *zap.Logger) {
	m.AddShutdownJob(func() error {
		if err := db.Close(); err != nil {
			log.Warn("error closing database", zap.Error(err))
		}
		return nil
	})
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	mu              sync.Mutex
	log             *zap.Logger
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger(log *zap.Logger) *errorLogger {
	return &errorLogger{
		log:             log,
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute, // Log at most once per 5 minutes per operation
	}
}

// logIfNeeded logs an error only if rate limit allows
func (e *errorLogger) logIfNeeded(operation string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	lastTime, exists := e.lastErrorTimes[operation]
	if !exists || now.Sub(lastTime) >= e.rateLimitWindow {
		e.log.Warn("database query failed, further errors suppressed",
			zap.String("operation", operation),
			zap.Duration("suppressed_for", e.rateLimitWindow),
			zap.Error(err),
		)
		e.lastErrorTimes[operation] = now
	}
}

// updateGaugeMetricsWithCache updates the connected merchant gauges through
// the cache so replicas share one database query per interval.
func updateGaugeMetricsWithCache(
	ctx context.Context,
	cacheWrapper *metrics.CacheWrapper,
	recorder core.Recorder,
	integrations []string,
	cacheTTL time.Duration,
	errLog *errorLogger,
) {
	for _, name := range integrations {
		count, err := cacheWrapper.GetConnectedMerchantsCount(ctx, name, cacheTTL)
		if err != nil {
			recorder.RecordDatabaseQueryError("count_connected_merchants")
			errLog.logIfNeeded("count_connected_merchants:"+name, err)
			continue
		}
		recorder.SetConnectedMerchants(name, int(count))
	}
}
