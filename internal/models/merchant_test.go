package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestMerchant_IsConnected(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		merchant Merchant
		want     bool
	}{
		{
			name:     "no third-party fields",
			merchant: Merchant{},
			want:     false,
		},
		{
			name: "fully linked",
			merchant: Merchant{
				ThirdPartyID:           strPtr("17841"),
				ThirdPartyUsername:     strPtr("shop"),
				ThirdPartyAccessToken:  strPtr("IGQ..."),
				ThirdPartyAuthorizedAt: &now,
			},
			want: true,
		},
		{
			name:     "token alone decides",
			merchant: Merchant{ThirdPartyAccessToken: strPtr("")},
			want:     true,
		},
		{
			name: "identity without token",
			merchant: Merchant{
				ThirdPartyID:       strPtr("17841"),
				ThirdPartyUsername: strPtr("shop"),
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.merchant.IsConnected())
		})
	}
}

func TestMerchant_HasBeansSession(t *testing.T) {
	assert.False(t, (&Merchant{}).HasBeansSession())
	assert.False(t, (&Merchant{BeansAccessToken: strPtr("")}).HasBeansSession())
	assert.True(t, (&Merchant{BeansAccessToken: strPtr("secret")}).HasBeansSession())
}

func TestThirdPartyColumns(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cols := ThirdPartyColumns(ThirdPartyAccount{ID: "1", Username: "u", AccessToken: "t"}, at)
	assert.Len(t, cols, 4)
	assert.Equal(t, "t", cols["third_party_access_token"])
	assert.Equal(t, at, cols["third_party_authorized_at"])

	cleared := ClearedThirdPartyColumns()
	assert.Len(t, cleared, 4)
	for k, v := range cleared {
		assert.Nil(t, v, k)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@shop.io", NormalizeEmail("  Jane@Shop.IO "))
}

func TestMerchant_BeforeCreate(t *testing.T) {
	m := &Merchant{}
	assert.NoError(t, m.BeforeCreate(nil))
	assert.Len(t, m.ID, 36)
	assert.Equal(t, RoleMerchant, m.Role)

	kept := &Merchant{ID: "fixed", Role: "admin"}
	assert.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.ID)
	assert.Equal(t, "admin", kept.Role)
}

func TestDefaultExtension(t *testing.T) {
	ext := DefaultExtension("instagram").Data()
	assert.NotNil(t, ext.Instagram)
	assert.Empty(t, ext.Instagram.ShopDomain)

	assert.Nil(t, DefaultExtension("other").Data().Instagram)
}

func TestReview_BeforeCreate(t *testing.T) {
	r := &Review{}
	assert.NoError(t, r.BeforeCreate(nil))
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "local:"+r.ID, r.ResourceID)

	external := &Review{ResourceID: "ig:123"}
	assert.NoError(t, external.BeforeCreate(nil))
	assert.Equal(t, "ig:123", external.ResourceID)
}
