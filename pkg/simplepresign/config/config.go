// Package config loads server configuration for the presign service from
// the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/simple-presign/pkg/simplepresign/api"
	"github.com/tendant/simple-presign/pkg/simplepresign/b2"
)

// ServerConfig represents server configuration for the presign service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// B2 account credentials used when a request carries none of its own
	B2AccountID    string `env:"B2_ACCOUNT_ID"`
	B2AccountKey   string `env:"B2_ACCOUNT_KEY"`
	B2SessionToken string `env:"B2_SESSION_TOKEN"`

	// B2 API base URL; override for proxies or tests
	B2APIURL string `env:"B2_API_URL" env-default:"https://api.backblazeb2.com"`

	// Optional fixed endpoint/region that bypasses account authorization.
	// When only the endpoint is set the region is derived from its host.
	S3Endpoint string `env:"S3_ENDPOINT"`
	S3Region   string `env:"S3_REGION"`

	DefaultExpirySeconds uint32 `env:"DEFAULT_EXPIRY_SECONDS" env-default:"3600"`
}

// Load reads configuration from the environment and validates it.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *ServerConfig) normalize() error {
	if c.S3Endpoint != "" && c.S3Region == "" {
		region, err := b2.RegionFromHost(c.S3Endpoint)
		if err != nil {
			return fmt.Errorf("cannot derive S3_REGION from S3_ENDPOINT %q: %w", c.S3Endpoint, err)
		}
		c.S3Region = region
	}
	return nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DefaultExpirySeconds == 0 {
		return errors.New("default expiry must be positive")
	}
	if c.S3Region != "" && c.S3Endpoint == "" {
		return errors.New("S3_REGION requires S3_ENDPOINT")
	}
	return nil
}

// HandlerConfig converts the server configuration into the API handler's view.
func (c *ServerConfig) HandlerConfig() api.Config {
	return api.Config{
		AccountID:            c.B2AccountID,
		AccountKey:           c.B2AccountKey,
		SessionToken:         c.B2SessionToken,
		Endpoint:             c.S3Endpoint,
		Region:               c.S3Region,
		DefaultExpirySeconds: c.DefaultExpirySeconds,
	}
}

// Resolver builds the endpoint resolver for the configured B2 API base URL.
func (c *ServerConfig) Resolver() *b2.Resolver {
	return b2.NewResolver(b2.WithAPIURL(c.B2APIURL))
}
