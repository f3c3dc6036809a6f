package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-trellis/trellis/internal/core"

	retry "github.com/appleboy/go-httpretry"
	"golang.org/x/oauth2"
)

const providerInstagram = "instagram"

var (
	_ core.ThirdPartyClient = (*InstagramProvider)(nil)
	_ core.ReviewSource     = (*InstagramProvider)(nil)
)

// InstagramConfig configures the Instagram business login client.
type InstagramConfig struct {
	AppID        string
	AppSecret    string
	RedirectURL  string
	AuthorizeURL string // https://www.instagram.com/oauth/authorize/
	APIURL       string // https://api.instagram.com
	GraphURL     string // https://graph.instagram.com
	Scopes       []string
}

// InstagramProvider runs the Instagram OAuth exchange and graph reads.
type InstagramProvider struct {
	oauth       *oauth2.Config
	scope       string
	graphURL    string
	httpClient  *http.Client
	retryClient *retry.Client
	metrics     core.Recorder
}

// NewInstagramProvider creates an Instagram client.
func NewInstagramProvider(
	cfg InstagramConfig,
	httpClient *http.Client,
	retryClient *retry.Client,
	metrics core.Recorder,
) *InstagramProvider {
	return &InstagramProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  strings.TrimRight(cfg.APIURL, "/") + "/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		// Instagram expects a comma separated scope list.
		scope:       strings.Join(cfg.Scopes, ","),
		graphURL:    strings.TrimRight(cfg.GraphURL, "/"),
		httpClient:  httpClient,
		retryClient: retryClient,
		metrics:     metrics,
	}
}

// Name returns the provider name
func (p *InstagramProvider) Name() string {
	return providerInstagram
}

// AuthorizeURL returns the Instagram authorize URL bound to state.
func (p *InstagramProvider) AuthorizeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("scope", p.scope))
}

// ExchangeShortLived trades an authorization code for a short-lived token.
func (p *InstagramProvider) ExchangeShortLived(
	ctx context.Context,
	code string,
) (*core.ThirdPartyToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	start := time.Now()
	tok, err := p.oauth.Exchange(ctx, code)
	p.metrics.RecordExternalAPICall(providerInstagram, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamExchange, err)
	}

	return &core.ThirdPartyToken{
		AccessToken: tok.AccessToken,
		UserID:      extraString(tok.Extra("user_id")),
	}, nil
}

type graphTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (r graphTokenResponse) toToken() (*core.ThirdPartyToken, error) {
	if r.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrUpstreamResponse)
	}
	return &core.ThirdPartyToken{
		AccessToken: r.AccessToken,
		ExpiresIn:   time.Duration(r.ExpiresIn) * time.Second,
	}, nil
}

// ExchangeLongLived extends a short-lived token to a long-lived one.
func (p *InstagramProvider) ExchangeLongLived(
	ctx context.Context,
	shortLived string,
) (*core.ThirdPartyToken, error) {
	q := url.Values{
		"grant_type":    {"ig_exchange_token"},
		"client_secret": {p.oauth.ClientSecret},
		"access_token":  {shortLived},
	}

	var resp graphTokenResponse
	if err := p.graphGet(ctx, "/access_token", q, &resp); err != nil {
		return nil, err
	}
	return resp.toToken()
}

// RefreshToken extends the validity of a long-lived token.
func (p *InstagramProvider) RefreshToken(
	ctx context.Context,
	accessToken string,
) (*core.ThirdPartyToken, error) {
	q := url.Values{
		"grant_type":   {"ig_refresh_token"},
		"access_token": {accessToken},
	}

	var resp graphTokenResponse
	if err := p.graphGet(ctx, "/refresh_access_token", q, &resp); err != nil {
		return nil, err
	}
	return resp.toToken()
}

type graphMe struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// FetchIdentity reads the id and username of the token owner.
func (p *InstagramProvider) FetchIdentity(
	ctx context.Context,
	accessToken string,
) (*core.ThirdPartyIdentity, error) {
	q := url.Values{
		"fields":       {"id,username"},
		"access_token": {accessToken},
	}

	var me graphMe
	if err := p.graphGet(ctx, "/me", q, &me); err != nil {
		return nil, err
	}
	if me.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrUpstreamResponse)
	}

	return &core.ThirdPartyIdentity{ID: me.ID, Username: me.Username}, nil
}

type graphMediaPage struct {
	Data []struct {
		ID       string `json:"id"`
		Comments struct {
			Data []struct {
				ID       string `json:"id"`
				Text     string `json:"text"`
				Username string `json:"username"`
				From     struct {
					ID       string `json:"id"`
					Username string `json:"username"`
				} `json:"from"`
			} `json:"data"`
		} `json:"comments"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// maxMediaPages bounds how many media pages one fetch walks.
const maxMediaPages = 10

// FetchComments returns the comments on the account's media, newest media first.
func (p *InstagramProvider) FetchComments(
	ctx context.Context,
	accessToken string,
) ([]core.Comment, error) {
	q := url.Values{
		"fields":       {"id,comments{id,text,username,from}"},
		"access_token": {accessToken},
	}
	next := p.graphURL + "/me/media?" + q.Encode()

	var comments []core.Comment
	for page := 0; next != "" && page < maxMediaPages; page++ {
		var media graphMediaPage
		if err := getJSON(ctx, p.retryClient, p.metrics, providerInstagram, next, &media); err != nil {
			return nil, err
		}

		for _, m := range media.Data {
			for _, c := range m.Comments.Data {
				username := c.Username
				if username == "" {
					username = c.From.Username
				}
				comments = append(comments, core.Comment{
					ID:       c.ID,
					MediaID:  m.ID,
					Text:     c.Text,
					Username: username,
				})
			}
		}
		next = media.Paging.Next
	}

	return comments, nil
}

func (p *InstagramProvider) graphGet(ctx context.Context, path string, q url.Values, out any) error {
	return getJSON(
		ctx,
		p.retryClient,
		p.metrics,
		providerInstagram,
		p.graphURL+path+"?"+q.Encode(),
		out,
	)
}

// extraString renders a token response extra field. Numeric ids arrive as
// float64 from the JSON decoder.
func extraString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
