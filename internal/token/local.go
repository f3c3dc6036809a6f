package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionProvider signs and verifies merchant session credentials (HS256).
// Credentials are not stored; expiry is the only way they end.
type SessionProvider struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	now      func() time.Time
}

// NewSessionProvider creates a provider signing with secret.
func NewSessionProvider(secret string, lifetime time.Duration, issuer string) *SessionProvider {
	return &SessionProvider{
		secret:   []byte(secret),
		lifetime: lifetime,
		issuer:   issuer,
		now:      time.Now,
	}
}

// Issue creates a credential binding merchantID within integration.
func (p *SessionProvider) Issue(merchantID, integration string) (*Session, error) {
	issuedAt := p.now()
	expiresAt := issuedAt.Add(p.lifetime)

	claims := jwt.MapClaims{
		"sub":         merchantID,
		"integration": integration,
		"iat":         issuedAt.Unix(),
		"exp":         expiresAt.Unix(),
		"iss":         p.issuer,
		"jti":         uuid.New().String(),
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &Session{
		TokenString: tokenString,
		ExpiresAt:   expiresAt,
	}, nil
}

// Validate verifies signature, expiry and issuer and that the credential
// belongs to integration. An empty issuer disables the issuer check.
func (p *SessionProvider) Validate(tokenString, integration string) (*SessionClaims, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return p.secret, nil
		},
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(p.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	merchantID, _ := claims["sub"].(string)
	if merchantID == "" {
		return nil, ErrInvalidToken
	}
	if got, _ := claims["integration"].(string); got != integration {
		return nil, ErrWrongIntegration
	}

	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, ErrInvalidToken
	}
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, ErrInvalidToken
	}

	return &SessionClaims{
		MerchantID:  merchantID,
		Integration: integration,
		IssuedAt:    issuedAt.Time,
		ExpiresAt:   expiresAt.Time,
	}, nil
}
