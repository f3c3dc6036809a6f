package services

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/go-trellis/trellis/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReview(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateReviewInput
		wantErr bool
	}{
		{
			name: "valid",
			in:   CreateReviewInput{ReviewerEmail: "jane@shop.io", ReviewerName: "Jane"},
		},
		{
			name:    "example.com rejected",
			in:      CreateReviewInput{ReviewerEmail: "jane@example.com", ReviewerName: "Jane"},
			wantErr: true,
		},
		{
			name:    "example.com rejected regardless of case",
			in:      CreateReviewInput{ReviewerEmail: "Jane@Example.COM", ReviewerName: "Jane"},
			wantErr: true,
		},
		{
			name: "subdomain of example.com allowed",
			in:   CreateReviewInput{ReviewerEmail: "jane@mail.notexample.com", ReviewerName: "Jane"},
		},
		{
			name:    "missing email",
			in:      CreateReviewInput{ReviewerName: "Jane"},
			wantErr: true,
		},
		{
			name:    "missing name",
			in:      CreateReviewInput{ReviewerEmail: "jane@shop.io"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReview(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReview)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReviewService_CreateAndList(t *testing.T) {
	db := setupTestStore(t)
	svc := NewReviewService(db, metrics.NewNoopMetrics(), zap.NewNop())
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateReviewInput{
		ReviewerEmail: " jane@shop.io ",
		ReviewerName:  "Jane",
	}, SourceAPI)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.NotEmpty(t, r.ResourceID)
	assert.Equal(t, "jane@shop.io", r.ReviewerEmail)

	_, err = svc.Create(ctx, CreateReviewInput{
		ReviewerEmail: "bob@example.com",
		ReviewerName:  "Bob",
	}, SourceWebhook)
	require.ErrorIs(t, err, ErrInvalidReview)

	reviews, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, r.ID, reviews[0].ID)

	none, err := svc.ListForMerchant(ctx, "someone")
	require.NoError(t, err)
	assert.Empty(t, none)
}
