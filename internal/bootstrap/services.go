package bootstrap

import (
	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/services"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/token"

	"go.uber.org/zap"
)

// sessionIssuer is the issuer claim of merchant session credentials
const sessionIssuer = "trellis"

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	recorder core.Recorder,
	log *zap.Logger,
) (*services.MerchantService, *services.ReviewService) {
	sessions := token.NewSessionProvider(cfg.CryptoSecret, cfg.SessionExpiration, sessionIssuer)

	merchantService := services.NewMerchantService(db, sessions, recorder, log)
	reviewService := services.NewReviewService(db, recorder, log)

	return merchantService, reviewService
}
