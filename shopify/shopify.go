// Package shopify holds the configuration shared by every function that talks
// to the Shopify Admin REST API.
package shopify

import (
	"fmt"
	"os"
)

type Config struct {
	Domain      string
	AccessToken string
	CronSecret  string
	Tags        string
	CleanupTag  string
}

func envWithAlias(name, alias string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return os.Getenv(alias)
}

// ConfigFromEnv loads and validates the Shopify configuration once per
// invocation. The returned Config is always non-nil so callers that only
// report presence (the health function) can inspect partial values even when
// a required variable is missing.
func ConfigFromEnv() (*Config, error) {
	config := &Config{
		Domain:      envWithAlias("SHOPIFY_STORE_DOMAIN", "SHOPIFY_STORE"),
		AccessToken: envWithAlias("SHOPIFY_ADMIN_ACCESS_TOKEN", "SHOPIFY_ACCESS_TOKEN"),
		CronSecret:  os.Getenv("CRON_SECRET"),
		Tags:        os.Getenv("DRAFT_ORDER_TAGS"),
		CleanupTag:  os.Getenv("CLEANUP_TAG"),
	}
	if config.Domain == "" {
		return config, fmt.Errorf("missing SHOPIFY_STORE_DOMAIN environment variable")
	}
	if config.AccessToken == "" {
		return config, fmt.Errorf("missing SHOPIFY_ADMIN_ACCESS_TOKEN environment variable")
	}
	return config, nil
}
