package bootstrap

import (
	"net/http"

	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/metrics"
	"github.com/go-trellis/trellis/internal/middleware"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	recorder core.Recorder,
	rateLimiters rateLimitMiddlewares,
	log *zap.Logger,
) *gin.Engine {
	setupGinMode(cfg, log)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	// Setup session middleware
	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg, log)

	// Setup all routes
	setupAllRoutes(r, cfg, h, rateLimiters)

	log.Info("trellis server starting",
		zap.String("addr", cfg.ServerAddr),
		zap.String("base_url", cfg.BaseURL),
		zap.Strings("integrations", cfg.TrellisList),
	)

	return r
}

// setupSessionMiddleware configures the cookie session carrying the OAuth
// state nonce, the CSRF token and flash messages
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("oauth_session", sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config, log *zap.Logger) {
	switch {
	case !cfg.MetricsEnabled:
		log.Info("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Info("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Info("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	// Public routes
	r.GET("/", h.index)

	// Operator task endpoints
	tasks := r.Group("/tasks")
	tasks.Use(middleware.TasksAuthMiddleware(cfg.TasksToken))
	{
		tasks.POST("/crons/:name", h.tasks.RunCron)
		tasks.GET("/crons/:name/stats", h.tasks.CronStats)
		tasks.POST("/lambdas/:name", h.tasks.RunLambda)
	}

	for _, ih := range h.integrations {
		setupIntegrationRoutes(r, h, ih, rateLimiters)
	}
}

// setupIntegrationRoutes mounts the pages, review API and webhooks of one
// integration under /{integration}
func setupIntegrationRoutes(
	r *gin.Engine,
	h handlerSet,
	ih integrationHandlers,
	rateLimiters rateLimitMiddlewares,
) {
	requireMerchant := middleware.RequireMerchant(h.merchants, ih.name, h.log)
	requireConnected := middleware.RequireConnected(ih.name)
	requireAvailable := middleware.RequireAvailable(ih.name, ih.available)

	base := r.Group("/" + ih.name)
	base.GET("/", ih.pages.Root)

	// Pages (browser, CSRF protected)
	pages := base.Group("/pages")
	pages.Use(middleware.CSRFMiddleware())
	{
		pages.GET("/login/", rateLimiters.login, ih.oauth.Login)
		pages.GET("/beans-callback/", rateLimiters.callback, ih.oauth.BeansCallback)

		pages.GET("/connect/", requireMerchant, requireAvailable, ih.oauth.Connect)
		pages.GET(
			"/"+ih.provider+"-callback/",
			rateLimiters.callback,
			requireMerchant,
			ih.oauth.ThirdPartyCallback,
		)
		pages.POST("/disconnect/", requireMerchant, ih.oauth.Disconnect)
		pages.POST("/logout/", requireMerchant, ih.oauth.Logout)
		pages.GET("/maintenance/", requireMerchant, ih.pages.Maintenance)

		pages.GET("/example/", ih.pages.Example)
		pages.POST("/example/", rateLimiters.webhook, ih.pages.ExamplePost)
	}

	linked := pages.Group("")
	linked.Use(requireMerchant, requireConnected, requireAvailable)
	{
		linked.GET("/", ih.pages.Home)
		linked.GET("/status/", ih.pages.Status)
		linked.GET("/credentials/", ih.pages.Credentials)
		linked.GET("/logs/", ih.pages.Logs)
		linked.GET("/rules/", ih.pages.Rules)
	}

	// Review API and webhooks (machine callers, no CSRF)
	api := base.Group("/api")
	{
		api.GET("/review/", h.review.List)
		api.POST("/review/", rateLimiters.webhook, h.review.Create)
	}
	hooks := base.Group("/hooks")
	{
		hooks.POST("/review_created/", rateLimiters.webhook, h.review.ReviewCreated)
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config, log *zap.Logger) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Info("gin mode", zap.String("mode", ginModeLogMessage[cfg.IsProduction]))
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}
