package auth

import "errors"

var (
	// ErrUpstreamExchange covers transport failures and rejected requests
	// during an OAuth exchange or a graph read.
	ErrUpstreamExchange = errors.New("upstream exchange failed")

	// ErrUpstreamResponse is returned when the upstream answered 2xx with a
	// body that cannot be used.
	ErrUpstreamResponse = errors.New("invalid response from upstream")
)
