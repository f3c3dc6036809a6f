package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/mocks"
	"github.com/go-trellis/trellis/internal/models"
	"github.com/go-trellis/trellis/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const testIntegration = "instagram"

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func connectedMerchant(t *testing.T, s *store.Store, cardID, accessToken string) *models.Merchant {
	t.Helper()
	ctx := context.Background()
	beans := "sk-" + cardID
	m := &models.Merchant{
		Integration:      testIntegration,
		BeansCardID:      cardID,
		BeansAccessToken: &beans,
		IsActive:         true,
		Extension:        models.DefaultExtension(testIntegration),
	}
	require.NoError(t, s.CreateMerchant(ctx, m))
	require.NoError(t, s.SetThirdParty(ctx, m.ID, models.ThirdPartyAccount{
		ID:          "ig-" + cardID,
		Username:    "shop_" + cardID,
		AccessToken: accessToken,
	}, time.Now()))

	got, err := s.GetMerchantByID(ctx, m.ID)
	require.NoError(t, err)
	return got
}

func comments() []core.Comment {
	return []core.Comment{
		{ID: "c1", MediaID: "m1", Text: "Best latte in town", Username: "jane"},
		{ID: "c2", MediaID: "m1", Text: "Friendly staff", Username: "joe"},
		{ID: "", MediaID: "m2", Text: "dropped"},
	}
}

func TestFetchReviewsCron_Process(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	m := connectedMerchant(t, s, "card_1", "long-1")

	ctrl := gomock.NewController(t)
	source := mocks.NewMockReviewSource(ctrl)
	source.EXPECT().RefreshToken(gomock.Any(), "long-1").
		Return(&core.ThirdPartyToken{AccessToken: "long-2"}, nil)
	source.EXPECT().FetchComments(gomock.Any(), "long-2").Return(comments(), nil)

	cron := NewFetchReviewsCron(testIntegration, s, source, zap.NewNop())
	assert.Equal(t, "instagram_fetch_reviews", cron.Name())
	assert.Equal(t, testIntegration, cron.Integration())

	units, err := cron.Process(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 2, units)

	got, err := s.GetMerchantByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "long-2", *got.ThirdPartyAccessToken)
	require.NotNil(t, got.LastFetchedAt)

	reviews, err := s.ListMerchantReviews(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestFetchReviewsCron_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	m := connectedMerchant(t, s, "card_1", "long-1")

	ctrl := gomock.NewController(t)
	source := mocks.NewMockReviewSource(ctrl)
	source.EXPECT().RefreshToken(gomock.Any(), "long-1").
		Return(&core.ThirdPartyToken{AccessToken: "long-1"}, nil).Times(2)
	source.EXPECT().FetchComments(gomock.Any(), "long-1").Return(comments(), nil).Times(2)

	cron := NewFetchReviewsCron(testIntegration, s, source, zap.NewNop())

	units, err := cron.Process(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 2, units)

	units, err = cron.Process(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 0, units)
}

func TestFetchReviewsCron_RefreshFailureKeepsToken(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	m := connectedMerchant(t, s, "card_1", "long-1")

	ctrl := gomock.NewController(t)
	source := mocks.NewMockReviewSource(ctrl)
	source.EXPECT().RefreshToken(gomock.Any(), "long-1").Return(nil, errors.New("expired"))
	source.EXPECT().FetchComments(gomock.Any(), "long-1").Return(comments()[:1], nil)

	units, err := NewFetchReviewsCron(testIntegration, s, source, zap.NewNop()).Process(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 1, units)

	got, err := s.GetMerchantByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "long-1", *got.ThirdPartyAccessToken)
}

func TestFetchReviewsCron_FetchFailureKeepsCursor(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	m := connectedMerchant(t, s, "card_1", "long-1")

	ctrl := gomock.NewController(t)
	source := mocks.NewMockReviewSource(ctrl)
	source.EXPECT().RefreshToken(gomock.Any(), "long-1").
		Return(&core.ThirdPartyToken{AccessToken: "long-1"}, nil)
	source.EXPECT().FetchComments(gomock.Any(), "long-1").Return(nil, errors.New("rate limited"))

	_, err := NewFetchReviewsCron(testIntegration, s, source, zap.NewNop()).Process(ctx, m)
	require.Error(t, err)

	got, err := s.GetMerchantByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastFetchedAt)
}

func TestFetchReviewsCron_NotConnected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	beans := "sk"
	m := &models.Merchant{
		Integration:      testIntegration,
		BeansCardID:      "card_2",
		BeansAccessToken: &beans,
		IsActive:         true,
	}
	require.NoError(t, s.CreateMerchant(ctx, m))

	ctrl := gomock.NewController(t)
	source := mocks.NewMockReviewSource(ctrl)

	units, err := NewFetchReviewsCron(testIntegration, s, source, zap.NewNop()).Process(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 0, units)

	got, err := s.GetMerchantByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastFetchedAt)

	// Linking later does not move the cursor back: the first fetch waits
	// for the OLD strategy once the cursor is stale
	require.NoError(t, s.SetThirdParty(ctx, m.ID, models.ThirdPartyAccount{
		ID: "ig-2", Username: "shop_2", AccessToken: "long-2",
	}, time.Now()))

	batch, err := s.SelectBatch(ctx, testIntegration, store.StrategyNew, 10, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, batch)

	batch, err = s.SelectBatch(ctx, testIntegration, store.StrategyOld, 10, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, batch)

	batch, err = s.SelectBatch(ctx, testIntegration, store.StrategyOld, 10, got.LastFetchedAt.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, m.ID, batch[0].ID)
}

func TestDeleteReviewsLambda(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	m := connectedMerchant(t, s, "card_1", "long-1")
	other := connectedMerchant(t, s, "card_2", "long-2")

	_, err := s.UpsertReviews(ctx, []models.Review{
		{MerchantID: &m.ID, ReviewerEmail: "member@shop.io", ResourceID: "r1"},
		{MerchantID: &m.ID, ReviewerEmail: "member@shop.io", ResourceID: "r2"},
		{MerchantID: &m.ID, ReviewerEmail: "someone@shop.io", ResourceID: "r3"},
		{MerchantID: &other.ID, ReviewerEmail: "member@shop.io", ResourceID: "r4"},
	})
	require.NoError(t, err)

	lambda := NewDeleteReviewsLambda(testIntegration, s, zap.NewNop())
	assert.Equal(t, "instagram_delete_reviews", lambda.Name())
	assert.Equal(t, AccountDeleteTopic, lambda.Topic())

	payload := json.RawMessage(`{"account_data":{"email":"member@shop.io"}}`)
	require.NoError(t, lambda.Handle(ctx, m, payload))
	// Replayed signal
	require.NoError(t, lambda.Handle(ctx, m, payload))

	left, err := s.ListMerchantReviews(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "someone@shop.io", left[0].ReviewerEmail)

	untouched, err := s.ListMerchantReviews(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, untouched, 1)

	assert.ErrorIs(t, lambda.Handle(ctx, m, json.RawMessage(`{"account_data":{}}`)), ErrMissingEmail)
	assert.Error(t, lambda.Handle(ctx, m, json.RawMessage(`not json`)))
}
