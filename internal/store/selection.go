package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-trellis/trellis/internal/models"

	"gorm.io/gorm"
)

// Strategy selects which merchants a batch run picks up.
type Strategy string

const (
	// StrategyNew selects merchants that were never fetched
	StrategyNew Strategy = "NEW"
	// StrategyOld selects merchants whose last fetch is stale
	StrategyOld Strategy = "OLD"
	// StrategyAll selects the union of NEW and OLD
	StrategyAll Strategy = "ALL"
)

// Strategies lists the strategies reported by batch statistics.
var Strategies = []Strategy{StrategyNew, StrategyOld}

// ParseStrategy maps user input to a Strategy. An empty string means ALL.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyNew, StrategyOld, StrategyAll:
		return Strategy(s), nil
	case "":
		return StrategyAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
}

// scopeStrategy narrows a merchant query to the active merchants of one
// integration matching strategy. staleBefore is the OLD cut-off.
func scopeStrategy(
	integration string,
	strategy Strategy,
	staleBefore time.Time,
) (func(*gorm.DB) *gorm.DB, error) {
	var pred func(*gorm.DB) *gorm.DB
	switch strategy {
	case StrategyNew:
		pred = func(db *gorm.DB) *gorm.DB {
			return db.Where("last_fetched_at IS NULL")
		}
	case StrategyOld:
		pred = func(db *gorm.DB) *gorm.DB {
			return db.Where("last_fetched_at IS NOT NULL AND last_fetched_at <= ?", staleBefore)
		}
	case StrategyAll:
		pred = func(db *gorm.DB) *gorm.DB {
			return db.Where("(last_fetched_at IS NULL OR last_fetched_at <= ?)", staleBefore)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}

	return func(db *gorm.DB) *gorm.DB {
		return pred(db.Where("integration = ? AND is_active = ?", integration, true))
	}, nil
}

// SelectBatch returns at most limit merchants matching strategy, never-fetched
// merchants first, then by oldest cursor.
func (s *Store) SelectBatch(
	ctx context.Context,
	integration string,
	strategy Strategy,
	limit int,
	staleBefore time.Time,
) ([]models.Merchant, error) {
	scope, err := scopeStrategy(integration, strategy, staleBefore)
	if err != nil {
		return nil, err
	}

	var merchants []models.Merchant
	err = s.db.WithContext(ctx).
		Scopes(scope).
		Order("CASE WHEN last_fetched_at IS NULL THEN 0 ELSE 1 END").
		Order("last_fetched_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&merchants).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to select %s batch: %w", strategy, err)
	}
	return merchants, nil
}

// CountByStrategy counts merchants matching strategy without loading them.
func (s *Store) CountByStrategy(
	ctx context.Context,
	integration string,
	strategy Strategy,
	staleBefore time.Time,
) (int64, error) {
	scope, err := scopeStrategy(integration, strategy, staleBefore)
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.db.WithContext(ctx).
		Model(&models.Merchant{}).
		Scopes(scope).
		Count(&count).
		Error
	return count, err
}
