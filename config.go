// config.go
// ----------
// Config is read once at startup from the environment and never re-read. Only
// the API base URL is required; everything else has a default. Mode only
// changes log verbosity.
package portalbridge

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// DefaultPageLimit and MaxPageLimit bound pagination. MaxPageLimit is
// advisory; the server enforces it.
const (
	DefaultPage      = 1
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type Config struct {
	BaseURL string `env:"PORTAL_API_URL,required,notEmpty"`
	Mode    Mode   `env:"PORTAL_MODE" envDefault:"production"`
	Version string `env:"PORTAL_VERSION" envDefault:"dev"`

	Timeout        time.Duration `env:"PORTAL_TIMEOUT" envDefault:"30s"`
	MaxRetries     int           `env:"PORTAL_MAX_RETRIES" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"PORTAL_RETRY_BASE_DELAY" envDefault:"1s"`
	RetryMaxDelay  time.Duration `env:"PORTAL_RETRY_MAX_DELAY" envDefault:"10s"`

	// LogLevel overrides the level implied by Mode when set.
	LogLevel string `env:"PORTAL_LOG_LEVEL"`
}

// DefaultConfig returns the defaults for baseURL without touching the environment.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:        baseURL,
		Mode:           ModeProduction,
		Version:        "dev",
		Timeout:        30 * time.Second,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
		RetryMaxDelay:  DefaultRetryMaxDelay,
	}
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid PORTAL_API_URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid PORTAL_API_URL %q: scheme must be http or https", c.BaseURL)
	}
	switch c.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("invalid PORTAL_MODE %q", c.Mode)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("PORTAL_MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryBaseDelay <= 0 || c.RetryMaxDelay <= 0 {
		return fmt.Errorf("retry delays must be positive")
	}
	if c.RetryBaseDelay > c.RetryMaxDelay {
		return fmt.Errorf("PORTAL_RETRY_BASE_DELAY (%v) exceeds PORTAL_RETRY_MAX_DELAY (%v)", c.RetryBaseDelay, c.RetryMaxDelay)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Mode == ModeDevelopment
}
