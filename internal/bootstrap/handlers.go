package bootstrap

import (
	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/handlers"
	"github.com/go-trellis/trellis/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// integrationHandlers holds the page handlers of one integration
type integrationHandlers struct {
	name      string
	provider  string
	available bool
	oauth     *handlers.OAuthHandler
	pages     *handlers.PagesHandler
}

// handlerSet holds all HTTP handlers and required services
type handlerSet struct {
	integrations []integrationHandlers
	review       *handlers.ReviewHandler
	tasks        *handlers.TasksHandler
	index        gin.HandlerFunc
	merchants    *services.MerchantService
	log          *zap.Logger
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	integrations []*integration,
	merchantService *services.MerchantService,
	reviewService *services.ReviewService,
	workers *workerSet,
	log *zap.Logger,
) handlerSet {
	h := handlerSet{
		review:    handlers.NewReviewHandler(reviewService, log),
		tasks:     handlers.NewTasksHandler(workers.runner, workers.dispatcher, cfg.CronBatchSize, log),
		index:     handlers.IndexHandler(cfg.TrellisList),
		merchants: merchantService,
		log:       log,
	}

	for _, in := range integrations {
		h.integrations = append(h.integrations, integrationHandlers{
			name:      in.name,
			provider:  in.thirdParty.Name(),
			available: in.available,
			oauth: handlers.NewOAuthHandler(
				in.name,
				in.beans,
				in.thirdParty,
				merchantService,
				cfg,
				log,
			),
			pages: handlers.NewPagesHandler(in.name, reviewService, log),
		})
	}

	return h
}
