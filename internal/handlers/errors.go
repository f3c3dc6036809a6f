package handlers

import "errors"

// ErrStateMismatch is returned when the OAuth callback state does not match
// the nonce stored in the session
var ErrStateMismatch = errors.New("oauth state mismatch")
