package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/token"

	"go.uber.org/zap"
)

// Disconnect targets reported to metrics
const (
	targetBeans      = "beans"
	targetThirdParty = "third_party"
)

// MerchantService drives the identity-linking state machine of a merchant:
// anonymous, Beans linked, then third-party linked.
type MerchantService struct {
	store    *store.Store
	sessions *token.SessionProvider
	metrics  core.Recorder
	log      *zap.Logger
	now      func() time.Time
}

func NewMerchantService(
	s *store.Store,
	sessions *token.SessionProvider,
	m core.Recorder,
	log *zap.Logger,
) *MerchantService {
	return &MerchantService{
		store:    s,
		sessions: sessions,
		metrics:  m,
		log:      log.Named("merchant"),
		now:      time.Now,
	}
}

// LinkPrimary records a successful Beans exchange. A known card gets its
// token refreshed and is reactivated; an unknown card is created from its
// Beans profile. Third-party columns are never written here.
func (s *MerchantService) LinkPrimary(
	ctx context.Context,
	integration string,
	beans core.BeansClient,
	key *core.BeansKey,
) (*models.Merchant, error) {
	now := s.now()

	existing, err := s.store.GetMerchantByCard(ctx, integration, key.CardID)
	switch {
	case err == nil:
		if err := s.store.UpdateBeansCredentials(ctx, existing.ID, key.Secret, now); err != nil {
			return nil, fmt.Errorf("failed to update merchant %s: %w", existing.ID, err)
		}
		s.metrics.RecordLogin(integration, true)
		return s.store.GetMerchantByID(ctx, existing.ID)

	case errors.Is(err, store.ErrMerchantNotFound):
		profile, err := beans.FetchProfile(ctx, key.Secret)
		if err != nil {
			s.metrics.RecordLogin(integration, false)
			return nil, fmt.Errorf("failed to fetch beans profile: %w", err)
		}

		secret := key.Secret
		m := &models.Merchant{
			Integration:       integration,
			BeansCardID:       key.CardID,
			BeansCardAddress:  profile.Address,
			Website:           profile.Website,
			BeansAccessToken:  &secret,
			BeansAuthorizedAt: &now,
			IsActive:          true,
			Role:              models.RoleMerchant,
			Extension:         models.DefaultExtension(integration),
		}
		if err := s.store.CreateMerchant(ctx, m); err != nil {
			s.metrics.RecordLogin(integration, false)
			return nil, err
		}

		s.log.Info("merchant created",
			zap.String("merchant_id", m.ID),
			zap.String("integration", integration),
			zap.String("card_id", key.CardID),
		)
		s.metrics.RecordLogin(integration, true)
		return m, nil

	default:
		return nil, fmt.Errorf("failed to look up merchant: %w", err)
	}
}

// IssueSession signs a session credential for the merchant.
func (s *MerchantService) IssueSession(m *models.Merchant) (*token.Session, error) {
	return s.sessions.Issue(m.ID, m.Integration)
}

// Authenticate resolves a session cookie value to its merchant.
func (s *MerchantService) Authenticate(
	ctx context.Context,
	integration, rawCookie string,
) (*models.Merchant, error) {
	if rawCookie == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.sessions.Validate(rawCookie, integration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	m, err := s.store.GetMerchantByID(ctx, claims.MerchantID)
	if err != nil {
		if errors.Is(err, store.ErrMerchantNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load merchant: %w", err)
	}

	if m.Integration != integration || !m.HasBeansSession() {
		return nil, ErrUserNotFound
	}

	return m, nil
}

// LinkThirdParty runs the third-party code exchange and identity lookup,
// then links the account in a single write. Nothing is written when any
// upstream step fails.
func (s *MerchantService) LinkThirdParty(
	ctx context.Context,
	m *models.Merchant,
	client core.ThirdPartyClient,
	code string,
) (*models.Merchant, error) {
	short, err := client.ExchangeShortLived(ctx, code)
	if err != nil {
		s.metrics.RecordOAuthCallback(client.Name(), false)
		return nil, fmt.Errorf("short-lived token exchange: %w", err)
	}

	long, err := client.ExchangeLongLived(ctx, short.AccessToken)
	if err != nil {
		s.metrics.RecordOAuthCallback(client.Name(), false)
		return nil, fmt.Errorf("long-lived token exchange: %w", err)
	}

	identity, err := client.FetchIdentity(ctx, long.AccessToken)
	if err != nil {
		s.metrics.RecordOAuthCallback(client.Name(), false)
		return nil, fmt.Errorf("identity lookup: %w", err)
	}

	acc := models.ThirdPartyAccount{
		ID:          identity.ID,
		Username:    identity.Username,
		AccessToken: long.AccessToken,
	}
	if err := s.store.SetThirdParty(ctx, m.ID, acc, s.now()); err != nil {
		return nil, fmt.Errorf("failed to link third-party account: %w", err)
	}

	s.log.Info("third-party account linked",
		zap.String("merchant_id", m.ID),
		zap.String("provider", client.Name()),
		zap.String("third_party_id", identity.ID),
	)
	s.metrics.RecordOAuthCallback(client.Name(), true)
	return s.store.GetMerchantByID(ctx, m.ID)
}

// DisconnectThirdParty unlinks the third-party account. The Beans link and
// the session stay valid.
func (s *MerchantService) DisconnectThirdParty(ctx context.Context, m *models.Merchant) error {
	if err := s.store.ClearThirdParty(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to disconnect third-party account: %w", err)
	}
	s.metrics.RecordDisconnect(m.Integration, targetThirdParty)
	return nil
}

// DisconnectPrimary clears the Beans token and deactivates the merchant, so
// every outstanding session of the merchant stops authenticating.
func (s *MerchantService) DisconnectPrimary(ctx context.Context, m *models.Merchant) error {
	if err := s.store.DisconnectBeans(ctx, m.ID); err != nil {
		return fmt.Errorf("failed to disconnect beans account: %w", err)
	}
	s.metrics.RecordDisconnect(m.Integration, targetBeans)
	s.metrics.RecordLogout(m.Integration)
	return nil
}
