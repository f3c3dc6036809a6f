package bootstrap

import (
	"net/http"

	"github.com/go-trellis/trellis/internal/client"
	"github.com/go-trellis/trellis/internal/config"

	retry "github.com/appleboy/go-httpretry"
	"go.uber.org/zap"
)

// createOAuthHTTPClients creates the plain client used for code exchanges
// and the retrying client used for idempotent upstream reads
func createOAuthHTTPClients(
	cfg *config.Config,
	log *zap.Logger,
) (*http.Client, *retry.Client, error) {
	if cfg.OAuthInsecureSkipVerify {
		log.Warn("OAuth TLS verification is disabled (OAUTH_INSECURE_SKIP_VERIFY=true)")
	}

	httpClient := client.CreateHTTPClient(cfg.OAuthTimeout, cfg.OAuthInsecureSkipVerify)

	retryClient, err := client.CreateRetryClient(
		httpClient,
		cfg.OAuthMaxRetries,
		cfg.OAuthRetryDelay,
		cfg.OAuthMaxRetryDelay,
	)
	if err != nil {
		return nil, nil, err
	}

	return httpClient, retryClient, nil
}
