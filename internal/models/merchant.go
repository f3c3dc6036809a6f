package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Merchant roles
const (
	RoleMerchant = "merchant"
)

// InstagramExtension holds the Instagram-only merchant values.
type InstagramExtension struct {
	ShopDomain string `json:"shop_domain,omitempty"`
}

// Extension carries the integration-specific value set of a merchant.
// Exactly one member is set, matching Merchant.Integration.
type Extension struct {
	Instagram *InstagramExtension `json:"instagram,omitempty"`
}

// Merchant is one merchant linked to one integration. The Beans card id is
// unique per integration; third-party fields are all set or all nil.
type Merchant struct {
	ID          string `gorm:"primaryKey"`
	Integration string `gorm:"not null;uniqueIndex:idx_merchant_integration_card,priority:1"`
	BeansCardID string `gorm:"not null;uniqueIndex:idx_merchant_integration_card,priority:2"`

	BeansCardAddress  string
	Website           string
	BeansAccessToken  *string `gorm:"type:text"`
	BeansAuthorizedAt *time.Time
	IsActive          bool   `gorm:"not null;default:false;index"`
	Role              string `gorm:"not null;default:'merchant'"`

	// Third-party account, written only as a group
	ThirdPartyID           *string
	ThirdPartyUsername     *string
	ThirdPartyAccessToken  *string `gorm:"type:text"`
	ThirdPartyAuthorizedAt *time.Time

	// Background fetch cursor
	LastFetchedAt *time.Time `gorm:"index"`

	Extension datatypes.JSONType[Extension]

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Merchant) TableName() string {
	return "merchants"
}

// BeforeCreate assigns the id and role when they are not set yet.
func (m *Merchant) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Role == "" {
		m.Role = RoleMerchant
	}
	return nil
}

// DefaultExtension returns the empty extension of an integration.
func DefaultExtension(integration string) datatypes.JSONType[Extension] {
	var ext Extension
	if integration == "instagram" {
		ext.Instagram = &InstagramExtension{}
	}
	return datatypes.NewJSONType(ext)
}

// IsConnected reports whether the third-party account is linked.
func (m *Merchant) IsConnected() bool {
	return m.ThirdPartyAccessToken != nil
}

// HasBeansSession reports whether the merchant holds a usable Beans token.
func (m *Merchant) HasBeansSession() bool {
	return m.BeansAccessToken != nil && *m.BeansAccessToken != ""
}

// ThirdPartyAccount is the identity and credential of a linked third-party account.
type ThirdPartyAccount struct {
	ID          string
	Username    string
	AccessToken string
}

// ThirdPartyColumns returns the column map that sets the third-party group.
func ThirdPartyColumns(acc ThirdPartyAccount, authorizedAt time.Time) map[string]any {
	return map[string]any{
		"third_party_id":            acc.ID,
		"third_party_username":      acc.Username,
		"third_party_access_token":  acc.AccessToken,
		"third_party_authorized_at": authorizedAt,
	}
}

// ClearedThirdPartyColumns returns the column map that clears the third-party group.
func ClearedThirdPartyColumns() map[string]any {
	return map[string]any{
		"third_party_id":            nil,
		"third_party_username":      nil,
		"third_party_access_token":  nil,
		"third_party_authorized_at": nil,
	}
}
