package bootstrap

import (
	"fmt"

	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	login    gin.HandlerFunc
	callback gin.HandlerFunc
	webhook  gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
// Accepts an optional go-redis client
func setupRateLimiting(
	cfg *config.Config,
	redisClient *redis.Client,
	log *zap.Logger,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		noOp := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{login: noOp, callback: noOp, webhook: noOp}, nil
	}
	return createRateLimiters(cfg, redisClient, log)
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	redisClient *redis.Client,
	log *zap.Logger,
) (rateLimitMiddlewares, error) {
	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		log.Info("rate limiting enabled (store: redis, shared across instances)")
	} else {
		log.Info("rate limiting enabled (store: memory, single instance only)")
	}

	var firstErr error
	createLimiter := func(requestsPerMinute int, endpoint string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			StoreType:         storeType,
			RedisClient:       redisClient, // nil for memory store
			CleanupInterval:   cfg.RateLimitCleanupInterval,
			Prefix:            "trellis:ratelimit:" + endpoint,
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to create rate limiter for %s: %w", endpoint, err)
		}
		return limiter
	}

	limiters := rateLimitMiddlewares{
		login:    createLimiter(cfg.LoginRateLimit, "login"),
		callback: createLimiter(cfg.CallbackRateLimit, "callback"),
		webhook:  createLimiter(cfg.WebhookRateLimit, "webhook"),
	}
	if firstErr != nil {
		return rateLimitMiddlewares{}, firstErr
	}
	return limiters, nil
}
