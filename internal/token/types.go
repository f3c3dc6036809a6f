package token

import "time"

// Session is a freshly issued merchant session credential.
type Session struct {
	TokenString string
	ExpiresAt   time.Time
}

// SessionClaims is the validated content of a session credential.
type SessionClaims struct {
	MerchantID  string
	Integration string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}
