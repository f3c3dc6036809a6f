package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-trellis/trellis/internal/models"

	"gorm.io/gorm"
)

// GetMerchantByID returns a merchant by primary key.
func (s *Store) GetMerchantByID(ctx context.Context, id string) (*models.Merchant, error) {
	var m models.Merchant
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetMerchantByCard returns the merchant of an integration by Beans card id.
func (s *Store) GetMerchantByCard(
	ctx context.Context,
	integration, cardID string,
) (*models.Merchant, error) {
	var m models.Merchant
	err := s.db.WithContext(ctx).
		Where("integration = ? AND beans_card_id = ?", integration, cardID).
		First(&m).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return &m, nil
}

// GetActiveMerchantByCard is GetMerchantByCard restricted to active merchants.
func (s *Store) GetActiveMerchantByCard(
	ctx context.Context,
	integration, cardID string,
) (*models.Merchant, error) {
	var m models.Merchant
	err := s.db.WithContext(ctx).
		Where("integration = ? AND beans_card_id = ? AND is_active = ?", integration, cardID, true).
		First(&m).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return &m, nil
}

// CreateMerchant inserts a new merchant. A merchant that already exists for
// the same integration and card yields ErrMerchantConflict.
func (s *Store) CreateMerchant(ctx context.Context, m *models.Merchant) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrMerchantConflict
		}
		return fmt.Errorf("failed to create merchant: %w", err)
	}
	return nil
}

// updateMerchantColumns writes only the given columns of one merchant.
func (s *Store) updateMerchantColumns(
	ctx context.Context,
	id string,
	cols map[string]any,
	conds ...any,
) error {
	tx := s.db.WithContext(ctx).Model(&models.Merchant{}).Where("id = ?", id)
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	result := tx.Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMerchantNotFound
	}
	return nil
}

// UpdateBeansCredentials refreshes the Beans token and reactivates the
// merchant. Third-party columns are not part of the statement.
func (s *Store) UpdateBeansCredentials(
	ctx context.Context,
	id, accessToken string,
	authorizedAt time.Time,
) error {
	return s.updateMerchantColumns(ctx, id, map[string]any{
		"beans_access_token":  accessToken,
		"beans_authorized_at": authorizedAt,
		"is_active":           true,
	})
}

// DisconnectBeans clears the Beans token and deactivates the merchant.
func (s *Store) DisconnectBeans(ctx context.Context, id string) error {
	return s.updateMerchantColumns(ctx, id, map[string]any{
		"beans_access_token": nil,
		"is_active":          false,
	})
}

// SetThirdParty links a third-party account in a single statement.
func (s *Store) SetThirdParty(
	ctx context.Context,
	id string,
	acc models.ThirdPartyAccount,
	authorizedAt time.Time,
) error {
	return s.updateMerchantColumns(ctx, id, models.ThirdPartyColumns(acc, authorizedAt))
}

// ClearThirdParty unlinks the third-party account in a single statement.
func (s *Store) ClearThirdParty(ctx context.Context, id string) error {
	return s.updateMerchantColumns(ctx, id, models.ClearedThirdPartyColumns())
}

// RefreshThirdPartyToken replaces the third-party token of a merchant that is
// still connected. A merchant disconnected meanwhile is left untouched and
// ErrMerchantNotFound is returned.
func (s *Store) RefreshThirdPartyToken(ctx context.Context, id, accessToken string) error {
	return s.updateMerchantColumns(ctx, id,
		map[string]any{"third_party_access_token": accessToken},
		"third_party_access_token IS NOT NULL",
	)
}

// AdvanceFetchCursor moves last_fetched_at forward to at. The cursor never
// moves backwards, so concurrent runs cannot rewind it.
func (s *Store) AdvanceFetchCursor(ctx context.Context, id string, at time.Time) error {
	err := s.updateMerchantColumns(ctx, id,
		map[string]any{"last_fetched_at": at},
		"(last_fetched_at IS NULL OR last_fetched_at < ?)", at,
	)
	if errors.Is(err, ErrMerchantNotFound) {
		// Either missing or already ahead
		if _, getErr := s.GetMerchantByID(ctx, id); getErr != nil {
			return getErr
		}
		return nil
	}
	return err
}

// CountConnectedMerchants counts active merchants with a linked third-party account.
func (s *Store) CountConnectedMerchants(ctx context.Context, integration string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Merchant{}).
		Where("integration = ? AND is_active = ? AND third_party_access_token IS NOT NULL", integration, true).
		Count(&count).
		Error
	return count, err
}
