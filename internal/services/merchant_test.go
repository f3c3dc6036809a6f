package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/metrics"
	"github.com/go-trellis/trellis/internal/mocks"
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"
	"github.com/go-trellis/trellis/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIntegration = "instagram"

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMerchantService(t *testing.T, s *store.Store) *MerchantService {
	t.Helper()
	sessions := token.NewSessionProvider("test-crypto-secret", 6*time.Hour, "trellis")
	return NewMerchantService(s, sessions, metrics.NewNoopMetrics(), zap.NewNop())
}

func linkPrimary(t *testing.T, svc *MerchantService, ctrl *gomock.Controller, cardID, secret string) *models.Merchant {
	t.Helper()
	beans := mocks.NewMockBeansClient(ctrl)
	beans.EXPECT().
		FetchProfile(gomock.Any(), secret).
		Return(&core.BeansProfile{Address: "addr-" + cardID, Website: "https://shop.test"}, nil).
		MaxTimes(1)

	m, err := svc.LinkPrimary(context.Background(), testIntegration, beans, &core.BeansKey{
		CardID: cardID,
		Secret: secret,
	})
	require.NoError(t, err)
	return m
}

func TestLinkPrimary_CreatesMerchant(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)

	m := linkPrimary(t, svc, ctrl, "card_1", "sk_1")

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, testIntegration, m.Integration)
	assert.Equal(t, "card_1", m.BeansCardID)
	assert.Equal(t, "addr-card_1", m.BeansCardAddress)
	assert.Equal(t, "https://shop.test", m.Website)
	assert.True(t, m.IsActive)
	assert.Equal(t, models.RoleMerchant, m.Role)
	require.NotNil(t, m.BeansAccessToken)
	assert.Equal(t, "sk_1", *m.BeansAccessToken)
	assert.NotNil(t, m.BeansAuthorizedAt)
	assert.False(t, m.IsConnected())
	assert.NotNil(t, m.Extension.Data().Instagram)
}

func TestLinkPrimary_Idempotent(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	first := linkPrimary(t, svc, ctrl, "card_1", "sk_1")
	require.NoError(t, db.SetThirdParty(ctx, first.ID, models.ThirdPartyAccount{
		ID: "ig_1", Username: "shop", AccessToken: "long",
	}, time.Now()))

	// A returning merchant must not trigger a profile fetch.
	beans := mocks.NewMockBeansClient(ctrl)
	second, err := svc.LinkPrimary(ctx, testIntegration, beans, &core.BeansKey{
		CardID: "card_1",
		Secret: "sk_2",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.BeansAccessToken)
	assert.Equal(t, "sk_2", *second.BeansAccessToken)
	assert.True(t, second.IsActive)
	assert.True(t, second.IsConnected(), "third-party link must survive a primary login")
	assert.Equal(t, "ig_1", *second.ThirdPartyID)

	var count int64
	require.NoError(t, db.DB().Model(&models.Merchant{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLinkPrimary_ReactivatesDisconnectedMerchant(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	m := linkPrimary(t, svc, ctrl, "card_1", "sk_1")
	require.NoError(t, svc.DisconnectPrimary(ctx, m))

	again := linkPrimary(t, svc, ctrl, "card_1", "sk_3")
	assert.Equal(t, m.ID, again.ID)
	assert.True(t, again.IsActive)
	assert.Equal(t, "sk_3", *again.BeansAccessToken)
}

func TestLinkPrimary_ProfileFailure(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)

	upstream := errors.New("beans down")
	beans := mocks.NewMockBeansClient(ctrl)
	beans.EXPECT().FetchProfile(gomock.Any(), "sk_1").Return(nil, upstream)

	_, err := svc.LinkPrimary(context.Background(), testIntegration, beans, &core.BeansKey{
		CardID: "card_1",
		Secret: "sk_1",
	})
	require.ErrorIs(t, err, upstream)

	_, err = db.GetMerchantByCard(context.Background(), testIntegration, "card_1")
	assert.ErrorIs(t, err, store.ErrMerchantNotFound)
}

func TestLinkPrimary_ConcurrentCreateConflicts(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	// Another login for the same card lands between lookup and create
	var racer *models.Merchant
	beans := mocks.NewMockBeansClient(ctrl)
	beans.EXPECT().FetchProfile(gomock.Any(), "sk_1").
		DoAndReturn(func(ctx context.Context, _ string) (*core.BeansProfile, error) {
			racer = &models.Merchant{
				Integration: testIntegration,
				BeansCardID: "card_1",
				IsActive:    true,
				Extension:   models.DefaultExtension(testIntegration),
			}
			require.NoError(t, db.CreateMerchant(ctx, racer))
			return &core.BeansProfile{Address: "addr"}, nil
		})

	_, err := svc.LinkPrimary(ctx, testIntegration, beans, &core.BeansKey{
		CardID: "card_1",
		Secret: "sk_1",
	})
	require.ErrorIs(t, err, store.ErrMerchantConflict)

	got, err := db.GetMerchantByCard(ctx, testIntegration, "card_1")
	require.NoError(t, err)
	assert.Equal(t, racer.ID, got.ID)
	assert.Nil(t, got.BeansAccessToken)
}

func TestAuthenticate(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	m := linkPrimary(t, svc, ctrl, "card_1", "sk_1")
	sess, err := svc.IssueSession(m)
	require.NoError(t, err)

	t.Run("valid session", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, testIntegration, sess.TokenString)
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
	})

	t.Run("missing cookie", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, testIntegration, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, testIntegration, "not-a-jwt")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("other integration", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "tiktok", sess.TokenString)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("other signing key", func(t *testing.T) {
		other := token.NewSessionProvider("another-secret", time.Hour, "trellis")
		forged, err := other.Issue(m.ID, testIntegration)
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, testIntegration, forged.TokenString)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired session", func(t *testing.T) {
		short := token.NewSessionProvider("test-crypto-secret", -time.Minute, "trellis")
		expired, err := short.Issue(m.ID, testIntegration)
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, testIntegration, expired.TokenString)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("unknown merchant", func(t *testing.T) {
		ghost, err := svc.sessions.Issue("00000000-0000-0000-0000-000000000000", testIntegration)
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, testIntegration, ghost.TokenString)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("after primary disconnect", func(t *testing.T) {
		require.NoError(t, svc.DisconnectPrimary(ctx, m))
		_, err := svc.Authenticate(ctx, testIntegration, sess.TokenString)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestLinkThirdParty_Success(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	m := linkPrimary(t, svc, ctrl, "card_1", "sk_1")

	client := mocks.NewMockThirdPartyClient(ctrl)
	client.EXPECT().Name().Return("instagram").AnyTimes()
	gomock.InOrder(
		client.EXPECT().ExchangeShortLived(gomock.Any(), "code").
			Return(&core.ThirdPartyToken{AccessToken: "short", UserID: "1"}, nil),
		client.EXPECT().ExchangeLongLived(gomock.Any(), "short").
			Return(&core.ThirdPartyToken{AccessToken: "long", ExpiresIn: time.Hour}, nil),
		client.EXPECT().FetchIdentity(gomock.Any(), "long").
			Return(&core.ThirdPartyIdentity{ID: "ig_1", Username: "shop"}, nil),
	)

	linked, err := svc.LinkThirdParty(ctx, m, client, "code")
	require.NoError(t, err)

	assert.True(t, linked.IsConnected())
	assert.Equal(t, "ig_1", *linked.ThirdPartyID)
	assert.Equal(t, "shop", *linked.ThirdPartyUsername)
	assert.Equal(t, "long", *linked.ThirdPartyAccessToken)
	assert.NotNil(t, linked.ThirdPartyAuthorizedAt)
	assert.Equal(t, "sk_1", *linked.BeansAccessToken)
}

func TestLinkThirdParty_FailureLeavesRecordUntouched(t *testing.T) {
	upstream := errors.New("upstream failed")

	tests := []struct {
		name   string
		expect func(c *mocks.MockThirdPartyClient)
	}{
		{
			name: "short-lived exchange",
			expect: func(c *mocks.MockThirdPartyClient) {
				c.EXPECT().ExchangeShortLived(gomock.Any(), "code").Return(nil, upstream)
			},
		},
		{
			name: "long-lived exchange",
			expect: func(c *mocks.MockThirdPartyClient) {
				c.EXPECT().ExchangeShortLived(gomock.Any(), "code").
					Return(&core.ThirdPartyToken{AccessToken: "short"}, nil)
				c.EXPECT().ExchangeLongLived(gomock.Any(), "short").Return(nil, upstream)
			},
		},
		{
			name: "identity lookup",
			expect: func(c *mocks.MockThirdPartyClient) {
				c.EXPECT().ExchangeShortLived(gomock.Any(), "code").
					Return(&core.ThirdPartyToken{AccessToken: "short"}, nil)
				c.EXPECT().ExchangeLongLived(gomock.Any(), "short").
					Return(&core.ThirdPartyToken{AccessToken: "long"}, nil)
				c.EXPECT().FetchIdentity(gomock.Any(), "long").Return(nil, upstream)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestStore(t)
			svc := newMerchantService(t, db)
			ctrl := gomock.NewController(t)
			ctx := context.Background()

			m := linkPrimary(t, svc, ctrl, "card_1", "sk_1")
			before, err := db.GetMerchantByID(ctx, m.ID)
			require.NoError(t, err)

			client := mocks.NewMockThirdPartyClient(ctrl)
			client.EXPECT().Name().Return("instagram").AnyTimes()
			tt.expect(client)

			_, err = svc.LinkThirdParty(ctx, m, client, "code")
			require.ErrorIs(t, err, upstream)

			after, err := db.GetMerchantByID(ctx, m.ID)
			require.NoError(t, err)
			assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
			assert.False(t, after.IsConnected())
			assert.Nil(t, after.ThirdPartyID)
			assert.Nil(t, after.ThirdPartyUsername)
			assert.Nil(t, after.ThirdPartyAuthorizedAt)
		})
	}
}

func TestDisconnectThirdParty(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	m := linkPrimary(t, svc, ctrl, "card_1", "sk_1")
	require.NoError(t, db.SetThirdParty(ctx, m.ID, models.ThirdPartyAccount{
		ID: "ig_1", Username: "shop", AccessToken: "long",
	}, time.Now()))

	require.NoError(t, svc.DisconnectThirdParty(ctx, m))

	got, err := db.GetMerchantByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.IsConnected())
	assert.Nil(t, got.ThirdPartyID)
	assert.Nil(t, got.ThirdPartyUsername)
	assert.Nil(t, got.ThirdPartyAuthorizedAt)
	assert.True(t, got.IsActive, "third-party disconnect keeps the Beans link")
	assert.True(t, got.HasBeansSession())
}

func TestDisconnectPrimary(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	m := linkPrimary(t, svc, ctrl, "card_1", "sk_1")
	require.NoError(t, svc.DisconnectPrimary(ctx, m))

	got, err := db.GetMerchantByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Nil(t, got.BeansAccessToken)
}

func TestDisconnect_UnknownMerchant(t *testing.T) {
	db := setupTestStore(t)
	svc := newMerchantService(t, db)
	ghost := &models.Merchant{ID: "missing", Integration: testIntegration}

	assert.ErrorIs(t, svc.DisconnectThirdParty(context.Background(), ghost), store.ErrMerchantNotFound)
	assert.ErrorIs(t, svc.DisconnectPrimary(context.Background(), ghost), store.ErrMerchantNotFound)
}
