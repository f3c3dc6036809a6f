package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"

	"go.uber.org/zap"
)

// AccountDeleteTopic is the signal sent when a loyalty membership is
// cancelled, for any program.
const AccountDeleteTopic = "stem.liana.*.account.delete"

// ErrMissingEmail is returned for account signals without an email
var ErrMissingEmail = errors.New("account_data.email is required")

// AccountSignal is the payload of an account signal.
type AccountSignal struct {
	AccountData struct {
		Email string `json:"email"`
	} `json:"account_data"`
}

// DeleteReviewsLambda removes the reviews a cancelled member left for the
// merchant.
type DeleteReviewsLambda struct {
	integration string
	store       *store.Store
	log         *zap.Logger
}

func NewDeleteReviewsLambda(integration string, s *store.Store, log *zap.Logger) *DeleteReviewsLambda {
	return &DeleteReviewsLambda{
		integration: integration,
		store:       s,
		log:         log.Named("delete_reviews").With(zap.String("integration", integration)),
	}
}

func (l *DeleteReviewsLambda) Name() string {
	return l.integration + "_delete_reviews"
}

func (l *DeleteReviewsLambda) Integration() string {
	return l.integration
}

func (l *DeleteReviewsLambda) Topic() string {
	return AccountDeleteTopic
}

// Handle deletes the merchant's reviews written with the signal's email.
// Deleting nothing is a success, so replayed signals are harmless.
func (l *DeleteReviewsLambda) Handle(ctx context.Context, m *models.Merchant, payload json.RawMessage) error {
	var signal AccountSignal
	if err := json.Unmarshal(payload, &signal); err != nil {
		return fmt.Errorf("invalid account payload: %w", err)
	}
	if signal.AccountData.Email == "" {
		return ErrMissingEmail
	}

	deleted, err := l.store.DeleteReviewsByEmail(ctx, m.ID, signal.AccountData.Email)
	if err != nil {
		return fmt.Errorf("failed to delete reviews: %w", err)
	}

	l.log.Info("member reviews deleted",
		zap.String("merchant_id", m.ID),
		zap.Int64("deleted", deleted),
	)
	return nil
}
