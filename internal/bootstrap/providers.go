package bootstrap

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-trellis/trellis/internal/auth"
	"github.com/go-trellis/trellis/internal/config"
	"github.com/go-trellis/trellis/internal/core"
	"github.com/go-trellis/trellis/internal/middleware"

	retry "github.com/appleboy/go-httpretry"
	"go.uber.org/zap"
)

// integration bundles the upstream clients of one enabled integration
type integration struct {
	name       string
	available  bool
	beans      core.BeansClient
	thirdParty core.ThirdPartyClient
	reviews    core.ReviewSource
}

// callbackURL is the absolute URL of a callback page of an integration
func callbackURL(cfg *config.Config, integration, page string) string {
	return strings.TrimRight(cfg.BaseURL, "/") + middleware.PagePath(integration, page)
}

// initializeIntegrations builds the Beans and third-party clients of every
// integration named in TRELLIS_LIST
func initializeIntegrations(
	cfg *config.Config,
	httpClient *http.Client,
	retryClient *retry.Client,
	recorder core.Recorder,
	log *zap.Logger,
) ([]*integration, error) {
	integrations := make([]*integration, 0, len(cfg.TrellisList))

	for _, name := range cfg.TrellisList {
		ic, ok := cfg.Integration(name)
		if !ok {
			return nil, fmt.Errorf("integration %q is not configured", name)
		}

		beans := auth.NewBeansProvider(auth.BeansConfig{
			ClientID:     ic.BeansPublic,
			ClientSecret: ic.BeansSecret,
			RedirectURL:  callbackURL(cfg, name, "beans-callback"),
			AuthorizeURL: cfg.BeansOAuthURL,
			APIURL:       cfg.BeansAPIURL,
		}, httpClient, retryClient, recorder)

		switch name {
		case config.IntegrationInstagram:
			instagram := auth.NewInstagramProvider(auth.InstagramConfig{
				AppID:        ic.ThirdPartyPublic,
				AppSecret:    ic.ThirdPartySecret,
				RedirectURL:  callbackURL(cfg, name, "instagram-callback"),
				AuthorizeURL: cfg.InstagramAuthorizeURL,
				APIURL:       cfg.InstagramAPIURL,
				GraphURL:     cfg.InstagramGraphURL,
				Scopes:       cfg.InstagramScopes,
			}, httpClient, retryClient, recorder)

			integrations = append(integrations, &integration{
				name:       name,
				available:  ic.IsStatusAvailable,
				beans:      beans,
				thirdParty: instagram,
				reviews:    instagram,
			})
		default:
			return nil, fmt.Errorf("unsupported integration %q", name)
		}

		log.Info("integration configured",
			zap.String("integration", name),
			zap.Bool("available", ic.IsStatusAvailable),
		)
	}

	return integrations, nil
}
