package services

import "errors"

var (
	// ErrUnauthenticated is returned when the session cookie is missing,
	// malformed, signed with another key, or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUserNotFound is returned for a valid session whose merchant is gone,
	// belongs to another integration, or has no Beans token.
	ErrUserNotFound = errors.New("merchant not found")

	ErrNotConnected  = errors.New("third-party account not connected")
	ErrInvalidReview = errors.New("invalid review")
)
