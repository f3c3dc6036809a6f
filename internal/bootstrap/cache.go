package bootstrap

import (
	"context"
	"fmt"

	"github.com/go-trellis/trellis/internal/cache"
	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/metrics"

	"go.uber.org/zap"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config, log *zap.Logger) core.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Info("Prometheus metrics initialized")
	} else {
		log.Info("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// initializeMetricsCache initializes the metrics cache based on configuration
func initializeMetricsCache(
	ctx context.Context,
	cfg *config.Config,
	log *zap.Logger,
) (core.Cache[int64], func() error, error) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled {
		return nil, nil, nil
	}

	// Create timeout context for cache initialization
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cfg.MetricsCacheType {
	case config.MetricsCacheTypeRedis:
		c, err := cache.NewRueidisCache[int64](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			"trellis:metrics:",
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis metrics cache: %w", err)
		}
		log.Info("metrics cache: redis",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("db", cfg.RedisDB),
		)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[int64]()
		log.Info("metrics cache: memory (single instance only)")
		return c, c.Close, nil
	}
}
