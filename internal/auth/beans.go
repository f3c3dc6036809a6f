package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-trellis/trellis/internal/core"

	retry "github.com/appleboy/go-httpretry"
	"golang.org/x/oauth2"
)

const providerBeans = "beans"

var _ core.BeansClient = (*BeansProvider)(nil)

// BeansConfig configures the primary platform client of one integration.
type BeansConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthorizeURL string
	APIURL       string
}

// BeansProvider exchanges Beans authorization codes for an integration key
// and reads the card profile.
type BeansProvider struct {
	oauth       *oauth2.Config
	apiURL      string
	httpClient  *http.Client
	retryClient *retry.Client
	metrics     core.Recorder
}

// NewBeansProvider creates a Beans client. httpClient is used for the code
// exchange and retryClient for profile reads.
func NewBeansProvider(
	cfg BeansConfig,
	httpClient *http.Client,
	retryClient *retry.Client,
	metrics core.Recorder,
) *BeansProvider {
	return &BeansProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL: cfg.AuthorizeURL,
			},
		},
		apiURL:      strings.TrimRight(cfg.APIURL, "/"),
		httpClient:  httpClient,
		retryClient: retryClient,
		metrics:     metrics,
	}
}

// AuthorizeURL returns the Beans authorize URL carrying the client id and
// the integration's callback.
func (p *BeansProvider) AuthorizeURL() string {
	return p.oauth.AuthCodeURL("")
}

type beansKeyResponse struct {
	Card   string `json:"card"`
	Secret string `json:"secret"`
}

// Exchange trades an authorization code for the merchant's card id and secret.
func (p *BeansProvider) Exchange(ctx context.Context, code string) (*core.BeansKey, error) {
	form := url.Values{
		"client_id":     {p.oauth.ClientID},
		"client_secret": {p.oauth.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {p.oauth.RedirectURL},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.apiURL+"/oauth/token/",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	p.metrics.RecordExternalAPICall(providerBeans, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamExchange, err)
	}

	var key beansKeyResponse
	if err := decodeResponse(resp, &key); err != nil {
		return nil, err
	}
	if key.Card == "" || key.Secret == "" {
		return nil, fmt.Errorf("%w: missing card or secret", ErrUpstreamResponse)
	}

	return &core.BeansKey{CardID: key.Card, Secret: key.Secret}, nil
}

type beansCardResponse struct {
	Address string `json:"address"`
	Website string `json:"website"`
}

// FetchProfile reads the public card profile with the merchant's secret.
func (p *BeansProvider) FetchProfile(ctx context.Context, secret string) (*core.BeansProfile, error) {
	var card beansCardResponse
	if err := getJSON(
		ctx,
		p.retryClient,
		p.metrics,
		providerBeans,
		p.apiURL+"/ultimate/card/current",
		&card,
		retry.WithHeader("Authorization", "Bearer "+secret),
	); err != nil {
		return nil, err
	}

	return &core.BeansProfile{Address: card.Address, Website: card.Website}, nil
}
