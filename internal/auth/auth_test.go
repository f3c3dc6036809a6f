package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-trellis/trellis/internal/client"
	"github.com/go-trellis/trellis/internal/metrics"

	retry "github.com/appleboy/go-httpretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClients(t *testing.T) (*http.Client, *retry.Client) {
	t.Helper()
	hc := client.CreateHTTPClient(5*time.Second, false)
	rc, err := client.CreateRetryClient(hc, 1, 5*time.Millisecond, 10*time.Millisecond)
	require.NoError(t, err)
	return hc, rc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newBeans(t *testing.T, apiURL string) *BeansProvider {
	t.Helper()
	hc, rc := newClients(t)
	return NewBeansProvider(BeansConfig{
		ClientID:     "beans-public",
		ClientSecret: "beans-secret",
		RedirectURL:  "https://trellis.test/instagram/pages/beans-callback/",
		AuthorizeURL: "https://connect.trybeans.com/oauth/authorize/",
		APIURL:       apiURL,
	}, hc, rc, metrics.NewNoopMetrics())
}

func TestBeansProvider_AuthorizeURL(t *testing.T) {
	p := newBeans(t, "https://api.trybeans.com/v3")

	u, err := url.Parse(p.AuthorizeURL())
	require.NoError(t, err)

	assert.Equal(t, "connect.trybeans.com", u.Host)
	assert.Equal(t, "/oauth/authorize/", u.Path)
	assert.Equal(t, "beans-public", u.Query().Get("client_id"))
	assert.Equal(
		t,
		"https://trellis.test/instagram/pages/beans-callback/",
		u.Query().Get("redirect_uri"),
	)
	assert.Equal(t, "code", u.Query().Get("response_type"))
}

func TestBeansProvider_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "beans-public", r.PostForm.Get("client_id"))
		assert.Equal(t, "beans-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))

		writeJSON(w, http.StatusOK, map[string]string{"card": "card_123", "secret": "sk_abc"})
	}))
	defer srv.Close()

	key, err := newBeans(t, srv.URL).Exchange(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "card_123", key.CardID)
	assert.Equal(t, "sk_abc", key.Secret)
}

func TestBeansProvider_Exchange_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
	}))
	defer srv.Close()

	_, err := newBeans(t, srv.URL).Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamExchange)
}

func TestBeansProvider_Exchange_MissingSecret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"card": "card_123"})
	}))
	defer srv.Close()

	_, err := newBeans(t, srv.URL).Exchange(context.Background(), "auth-code")
	assert.ErrorIs(t, err, ErrUpstreamResponse)
}

func TestBeansProvider_FetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ultimate/card/current", r.URL.Path)
		assert.Equal(t, "Bearer sk_abc", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{
			"address": "shop-address",
			"website": "https://shop.test",
		})
	}))
	defer srv.Close()

	profile, err := newBeans(t, srv.URL+"/").FetchProfile(context.Background(), "sk_abc")
	require.NoError(t, err)
	assert.Equal(t, "shop-address", profile.Address)
	assert.Equal(t, "https://shop.test", profile.Website)
}

func newInstagram(t *testing.T, apiURL, graphURL string) *InstagramProvider {
	t.Helper()
	hc, rc := newClients(t)
	return NewInstagramProvider(InstagramConfig{
		AppID:        "ig-app",
		AppSecret:    "ig-secret",
		RedirectURL:  "https://trellis.test/instagram/pages/instagram-callback/",
		AuthorizeURL: "https://www.instagram.com/oauth/authorize/",
		APIURL:       apiURL,
		GraphURL:     graphURL,
		Scopes:       []string{"business_basic", "business_manage_comments"},
	}, hc, rc, metrics.NewNoopMetrics())
}

func TestInstagramProvider_AuthorizeURL(t *testing.T) {
	p := newInstagram(t, "https://api.instagram.com", "https://graph.instagram.com")
	assert.Equal(t, "instagram", p.Name())

	u, err := url.Parse(p.AuthorizeURL("nonce-1"))
	require.NoError(t, err)

	assert.Equal(t, "www.instagram.com", u.Host)
	q := u.Query()
	assert.Equal(t, "ig-app", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "nonce-1", q.Get("state"))
	assert.Equal(t, "business_basic,business_manage_comments", q.Get("scope"))
	assert.Equal(t, "https://trellis.test/instagram/pages/instagram-callback/", q.Get("redirect_uri"))
}

func TestInstagramProvider_ExchangeShortLived(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/access_token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ig-app", r.PostForm.Get("client_id"))
		assert.Equal(t, "ig-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "ig-code", r.PostForm.Get("code"))
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "short", "user_id": 1784})
	}))
	defer srv.Close()

	tok, err := newInstagram(t, srv.URL, srv.URL).ExchangeShortLived(context.Background(), "ig-code")
	require.NoError(t, err)
	assert.Equal(t, "short", tok.AccessToken)
	assert.Equal(t, "1784", tok.UserID)
}

func TestInstagramProvider_ExchangeShortLived_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error_type":    "OAuthException",
			"error_message": "Invalid authorization code",
		})
	}))
	defer srv.Close()

	_, err := newInstagram(t, srv.URL, srv.URL).ExchangeShortLived(context.Background(), "used")
	assert.ErrorIs(t, err, ErrUpstreamExchange)
}

func TestInstagramProvider_ExchangeLongLivedAndRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/access_token":
			assert.Equal(t, "ig_exchange_token", q.Get("grant_type"))
			assert.Equal(t, "ig-secret", q.Get("client_secret"))
			assert.Equal(t, "short", q.Get("access_token"))
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "long",
				"token_type":   "bearer",
				"expires_in":   5184000,
			})
		case "/refresh_access_token":
			assert.Equal(t, "ig_refresh_token", q.Get("grant_type"))
			assert.Equal(t, "long", q.Get("access_token"))
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "long-2", "expires_in": 60})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := newInstagram(t, srv.URL, srv.URL)

	long, err := p.ExchangeLongLived(context.Background(), "short")
	require.NoError(t, err)
	assert.Equal(t, "long", long.AccessToken)
	assert.Equal(t, 60*24*time.Hour, long.ExpiresIn)

	refreshed, err := p.RefreshToken(context.Background(), long.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "long-2", refreshed.AccessToken)
	assert.Equal(t, time.Minute, refreshed.ExpiresIn)
}

func TestInstagramProvider_FetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "id,username", r.URL.Query().Get("fields"))
		if r.URL.Query().Get("access_token") != "long" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"message": "Invalid OAuth access token", "code": 190},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "17841400", "username": "shop"})
	}))
	defer srv.Close()

	p := newInstagram(t, srv.URL, srv.URL)

	id, err := p.FetchIdentity(context.Background(), "long")
	require.NoError(t, err)
	assert.Equal(t, "17841400", id.ID)
	assert.Equal(t, "shop", id.Username)

	_, err = p.FetchIdentity(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamExchange))
	assert.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestInstagramProvider_FetchComments(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/media", r.URL.Path)
		if r.URL.Query().Get("after") == "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"data": []any{
					map[string]any{
						"id": "m1",
						"comments": map[string]any{"data": []any{
							map[string]any{"id": "c1", "text": "great", "username": "alice"},
							map[string]any{
								"id":   "c2",
								"text": "love it",
								"from": map[string]any{"id": "u2", "username": "bob"},
							},
						}},
					},
				},
				"paging": map[string]any{"next": srv.URL + "/me/media?after=cursor&access_token=long"},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []any{
				map[string]any{"id": "m2"},
			},
		})
	}))
	defer srv.Close()

	comments, err := newInstagram(t, srv.URL, srv.URL).FetchComments(context.Background(), "long")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "m1", comments[0].MediaID)
	assert.Equal(t, "alice", comments[0].Username)
	assert.Equal(t, "bob", comments[1].Username)
}

func TestExtraString(t *testing.T) {
	assert.Equal(t, "abc", extraString("abc"))
	assert.Equal(t, "17841400", extraString(float64(17841400)))
	assert.Empty(t, extraString(nil))
}
