package bootstrap

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-trellis/trellis/internal/config"

	"go.uber.org/zap"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.IsProduction {
		if missing := missingCredentials(cfg); len(missing) > 0 {
			return fmt.Errorf(
				"invalid configuration: missing credentials: %s",
				strings.Join(missing, ", "),
			)
		}
	}
	return nil
}

// missingCredentials lists the unset OAuth credential variables of every
// enabled integration
func missingCredentials(cfg *config.Config) []string {
	var missing []string
	for _, name := range cfg.TrellisList {
		ic, _ := cfg.Integration(name)
		prefix := strings.ToUpper(name) + "_"
		for key, value := range map[string]string{
			"BEANS_PUBLIC":       ic.BeansPublic,
			"BEANS_SECRET":       ic.BeansSecret,
			"THIRD_PARTY_PUBLIC": ic.ThirdPartyPublic,
			"THIRD_PARTY_SECRET": ic.ThirdPartySecret,
		} {
			if value == "" {
				missing = append(missing, prefix+key)
			}
		}
	}
	slices.Sort(missing)
	return missing
}

// warnMissingCredentials logs unset credentials outside production, where
// they are not fatal
func warnMissingCredentials(cfg *config.Config, log *zap.Logger) {
	if missing := missingCredentials(cfg); len(missing) > 0 {
		log.Warn("integration credentials missing, OAuth exchanges will fail",
			zap.Strings("variables", missing))
	}
}
