package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"

	"go.uber.org/zap"
)

// blockedEmailDomain is rejected for submitted reviews.
const blockedEmailDomain = "@example.com"

// Review sources reported to metrics
const (
	SourceAPI     = "api"
	SourceWebhook = "webhook"
	SourceExample = "example"
)

// CreateReviewInput is a review submitted through the API, webhook or
// example form.
type CreateReviewInput struct {
	MerchantID    *string
	ReviewerEmail string
	ReviewerName  string
	Body          string
}

// ReviewService stores and lists reviews.
type ReviewService struct {
	store   *store.Store
	metrics core.Recorder
	log     *zap.Logger
}

func NewReviewService(s *store.Store, m core.Recorder, log *zap.Logger) *ReviewService {
	return &ReviewService{
		store:   s,
		metrics: m,
		log:     log.Named("review"),
	}
}

// ValidateReview checks a submitted review without storing it.
func ValidateReview(in CreateReviewInput) error {
	email := models.NormalizeEmail(in.ReviewerEmail)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return fmt.Errorf("%w: reviewer_email is required", ErrInvalidReview)
	case strings.HasSuffix(email, blockedEmailDomain):
		return fmt.Errorf("%w: example.com emails are not allowed", ErrInvalidReview)
	case strings.TrimSpace(in.ReviewerName) == "":
		return fmt.Errorf("%w: reviewer_name is required", ErrInvalidReview)
	}
	return nil
}

// Create validates and stores a review.
func (s *ReviewService) Create(
	ctx context.Context,
	in CreateReviewInput,
	source string,
) (*models.Review, error) {
	if err := ValidateReview(in); err != nil {
		return nil, err
	}

	r := &models.Review{
		MerchantID:    in.MerchantID,
		ReviewerEmail: strings.TrimSpace(in.ReviewerEmail),
		ReviewerName:  strings.TrimSpace(in.ReviewerName),
		Body:          in.Body,
	}
	if err := s.store.CreateReview(ctx, r); err != nil {
		return nil, err
	}

	s.log.Debug("review created", zap.String("review_id", r.ID), zap.String("source", source))
	s.metrics.RecordReviewCreated(source)
	return r, nil
}

// List returns all stored reviews, newest first.
func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ListForMerchant returns the reviews collected for one merchant.
func (s *ReviewService) ListForMerchant(ctx context.Context, merchantID string) ([]models.Review, error) {
	reviews, err := s.store.ListMerchantReviews(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ListForMerchantPaginated returns one page of a merchant's reviews.
func (s *ReviewService) ListForMerchantPaginated(
	ctx context.Context,
	merchantID string,
	params store.PaginationParams,
) ([]models.Review, store.PaginationResult, error) {
	return s.store.ListMerchantReviewsPaginated(ctx, merchantID, params)
}
