package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/voicemap/resilience"
	"github.com/kbukum/voicemap/security"
)

const defaultTimeout = 30 * time.Second

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the base URL prepended to relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds a single request. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// RateLimit spaces outgoing requests. A zero rate disables it.
	RateLimit resilience.RateLimiterConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// TLS customizes certificate verification for HTTPS endpoints.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Auth is applied to every request that does not override it.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.RateLimit.Rate < 0 {
		return fmt.Errorf("httpclient: rate_limit.rate must not be negative")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}
