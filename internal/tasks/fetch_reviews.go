package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"

	"go.uber.org/zap"
)

// FetchReviewsCron imports the comments of a merchant's third-party account
// as reviews and advances the merchant's fetch cursor.
type FetchReviewsCron struct {
	integration string
	store       *store.Store
	source      core.ReviewSource
	log         *zap.Logger
	now         func() time.Time
}

func NewFetchReviewsCron(
	integration string,
	s *store.Store,
	source core.ReviewSource,
	log *zap.Logger,
) *FetchReviewsCron {
	return &FetchReviewsCron{
		integration: integration,
		store:       s,
		source:      source,
		log:         log.Named("fetch_reviews").With(zap.String("integration", integration)),
		now:         time.Now,
	}
}

func (c *FetchReviewsCron) Name() string {
	return c.integration + "_fetch_reviews"
}

func (c *FetchReviewsCron) Integration() string {
	return c.integration
}

// Process refreshes the long-lived token, imports new comments and moves
// the cursor. A failed refresh keeps the current token; a failed fetch
// leaves the cursor in place so the merchant is picked up again.
func (c *FetchReviewsCron) Process(ctx context.Context, m *models.Merchant) (int, error) {
	if !m.IsConnected() {
		// Nothing to fetch until an account is linked. The cursor still
		// advances so unlinked merchants do not fill every NEW batch; an
		// account linked later is first fetched once the cursor is stale.
		return 0, c.store.AdvanceFetchCursor(ctx, m.ID, c.now())
	}

	accessToken := *m.ThirdPartyAccessToken

	refreshed, err := c.source.RefreshToken(ctx, accessToken)
	switch {
	case err != nil:
		c.log.Warn("token refresh failed, keeping current token",
			zap.String("merchant_id", m.ID),
			zap.Error(err),
		)
	case refreshed.AccessToken != "" && refreshed.AccessToken != accessToken:
		if err := c.store.RefreshThirdPartyToken(ctx, m.ID, refreshed.AccessToken); err != nil {
			if errors.Is(err, store.ErrMerchantNotFound) {
				// Disconnected while the batch was running
				return 0, nil
			}
			return 0, fmt.Errorf("failed to store refreshed token: %w", err)
		}
		accessToken = refreshed.AccessToken
	}

	comments, err := c.source.FetchComments(ctx, accessToken)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch comments: %w", err)
	}

	reviews := make([]models.Review, 0, len(comments))
	for _, cm := range comments {
		if cm.ID == "" {
			continue
		}
		reviews = append(reviews, models.Review{
			MerchantID:   &m.ID,
			ReviewerName: cm.Username,
			ResourceID:   cm.ID,
			Body:         cm.Text,
		})
	}

	inserted, err := c.store.UpsertReviews(ctx, reviews)
	if err != nil {
		return 0, err
	}

	if err := c.store.AdvanceFetchCursor(ctx, m.ID, c.now()); err != nil {
		return int(inserted), fmt.Errorf("failed to advance cursor: %w", err)
	}

	c.log.Debug("reviews fetched",
		zap.String("merchant_id", m.ID),
		zap.Int("comments", len(comments)),
		zap.Int64("inserted", inserted),
	)
	return int(inserted), nil
}
