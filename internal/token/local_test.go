package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing"

func TestSessionProvider_IssueAndValidate(t *testing.T) {
	provider := NewSessionProvider(testSecret, 6*time.Hour, "http://localhost:8080")

	session, err := provider.Issue("merchant-1", "instagram")
	require.NoError(t, err)
	assert.NotEmpty(t, session.TokenString)
	assert.WithinDuration(t, time.Now().Add(6*time.Hour), session.ExpiresAt, 5*time.Second)

	claims, err := provider.Validate(session.TokenString, "instagram")
	require.NoError(t, err)
	assert.Equal(t, "merchant-1", claims.MerchantID)
	assert.Equal(t, "instagram", claims.Integration)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
	assert.Equal(t, 6*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestSessionProvider_Expired(t *testing.T) {
	provider := NewSessionProvider(testSecret, 6*time.Hour, "")
	issued := time.Now().Add(-7 * time.Hour)
	provider.now = func() time.Time { return issued }

	session, err := provider.Issue("merchant-1", "instagram")
	require.NoError(t, err)

	provider.now = time.Now
	_, err = provider.Validate(session.TokenString, "instagram")
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestSessionProvider_WrongSecret(t *testing.T) {
	issuer := NewSessionProvider(testSecret, time.Hour, "")
	verifier := NewSessionProvider("another-secret", time.Hour, "")

	session, err := issuer.Issue("merchant-1", "instagram")
	require.NoError(t, err)

	_, err = verifier.Validate(session.TokenString, "instagram")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionProvider_WrongIntegration(t *testing.T) {
	provider := NewSessionProvider(testSecret, time.Hour, "")

	session, err := provider.Issue("merchant-1", "instagram")
	require.NoError(t, err)

	_, err = provider.Validate(session.TokenString, "tiktok")
	assert.ErrorIs(t, err, ErrWrongIntegration)
}

func TestSessionProvider_Malformed(t *testing.T) {
	provider := NewSessionProvider(testSecret, time.Hour, "")

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := provider.Validate(raw, "instagram")
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestSessionProvider_RejectsNoneAlgorithm(t *testing.T) {
	provider := NewSessionProvider(testSecret, time.Hour, "")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":         "merchant-1",
		"integration": "instagram",
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = provider.Validate(unsigned, "instagram")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionProvider_MissingSubject(t *testing.T) {
	provider := NewSessionProvider(testSecret, time.Hour, "")

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"integration": "instagram",
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = provider.Validate(raw, "instagram")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionProvider_WrongIssuer(t *testing.T) {
	staging := NewSessionProvider(testSecret, time.Hour, "trellis-staging")
	provider := NewSessionProvider(testSecret, time.Hour, "trellis")

	session, err := staging.Issue("merchant-1", "instagram")
	require.NoError(t, err)

	_, err = provider.Validate(session.TokenString, "instagram")
	assert.ErrorIs(t, err, ErrInvalidToken)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":         "merchant-1",
		"integration": "instagram",
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = provider.Validate(raw, "instagram")
	assert.ErrorIs(t, err, ErrInvalidToken, "a credential without iss is rejected")
}
