package core

import (
	"context"
	"time"
)

// BeansKey is the result of a Beans authorization code exchange.
type BeansKey struct {
	CardID string
	Secret string
}

// BeansProfile is the public card information of a merchant on Beans.
type BeansProfile struct {
	Address string
	Website string
}

// BeansClient performs the primary platform OAuth exchange for one integration.
type BeansClient interface {
	AuthorizeURL() string
	Exchange(ctx context.Context, code string) (*BeansKey, error)
	FetchProfile(ctx context.Context, secret string) (*BeansProfile, error)
}

// ThirdPartyToken is an access token issued by the third-party provider.
type ThirdPartyToken struct {
	AccessToken string
	UserID      string
	ExpiresIn   time.Duration
}

// ThirdPartyIdentity identifies the linked third-party account.
type ThirdPartyIdentity struct {
	ID       string
	Username string
}

// ThirdPartyClient performs the third-party OAuth exchange.
type ThirdPartyClient interface {
	Name() string
	AuthorizeURL(state string) string
	ExchangeShortLived(ctx context.Context, code string) (*ThirdPartyToken, error)
	ExchangeLongLived(ctx context.Context, shortLived string) (*ThirdPartyToken, error)
	FetchIdentity(ctx context.Context, accessToken string) (*ThirdPartyIdentity, error)
}

// Comment is a customer comment read from the third-party account.
type Comment struct {
	ID       string
	MediaID  string
	Text     string
	Username string
}

// ReviewSource reads reviews from a linked third-party account.
type ReviewSource interface {
	RefreshToken(ctx context.Context, accessToken string) (*ThirdPartyToken, error)
	FetchComments(ctx context.Context, accessToken string) ([]Comment, error)
}
