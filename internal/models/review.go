package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a customer review collected from a third-party account.
// ResourceID is the external id and makes repeated imports idempotent.
type Review struct {
	ID            string  `gorm:"primaryKey"`
	MerchantID    *string `gorm:"index"`
	ReviewerEmail string  `gorm:"index"`
	ReviewerName  string
	ResourceID    string `gorm:"not null;uniqueIndex"`
	Body          string `gorm:"type:text"`
	CreatedAt     time.Time
}

func (Review) TableName() string {
	return "reviews"
}

// BeforeCreate assigns the id and, for reviews without an external id, a
// generated resource id.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.ResourceID == "" {
		r.ResourceID = "local:" + r.ID
	}
	return nil
}

// NormalizeEmail lower-cases and trims an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
