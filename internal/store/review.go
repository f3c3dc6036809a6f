package store

import (
	"context"
	"fmt"

	"github.com/go-trellis/trellis/internal/models"

	"gorm.io/gorm/clause"
)

// CreateReview inserts a single review.
func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrReviewConflict
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// UpsertReviews inserts reviews whose resource id is not stored yet and
// returns how many rows were added. Re-importing the same reviews adds none.
func (s *Store) UpsertReviews(ctx context.Context, reviews []models.Review) (int64, error) {
	if len(reviews) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resource_id"}},
			DoNothing: true,
		}).
		Create(&reviews)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to upsert reviews: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListReviews returns all reviews, newest first.
func (s *Store) ListReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

// ListMerchantReviews returns the reviews of one merchant, newest first.
func (s *Store) ListMerchantReviews(ctx context.Context, merchantID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&reviews).
		Error
	return reviews, err
}

// DeleteReviewsByEmail removes a merchant's reviews written by email and
// returns the number of deleted rows.
func (s *Store) DeleteReviewsByEmail(
	ctx context.Context,
	merchantID, email string,
) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("merchant_id = ? AND LOWER(reviewer_email) = ?", merchantID, models.NormalizeEmail(email)).
		Delete(&models.Review{})
	return result.RowsAffected, result.Error
}

// ListMerchantReviewsPaginated returns one page of a merchant's reviews,
// newest first. Search matches the reviewer name or the body.
func (s *Store) ListMerchantReviewsPaginated(
	ctx context.Context,
	merchantID string,
	params PaginationParams,
) ([]models.Review, PaginationResult, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("merchant_id = ?", merchantID)
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("reviewer_name LIKE ? OR body LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, fmt.Errorf("failed to count reviews: %w", err)
	}

	pagination := CalculatePagination(total, params.Page, params.PageSize)
	offset := (pagination.CurrentPage - 1) * params.PageSize

	var reviews []models.Review
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(params.PageSize).
		Find(&reviews).
		Error
	if err != nil {
		return nil, PaginationResult{}, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, pagination, nil
}
