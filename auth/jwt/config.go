package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names an HMAC algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

var methods = map[SigningMethod]gojwt.SigningMethod{
	HS256: gojwt.SigningMethodHS256,
	HS384: gojwt.SigningMethodHS384,
	HS512: gojwt.SigningMethodHS512,
}

// minSecret is the shortest HMAC key accepted.
const minSecret = 16

// Config holds the signing key and token lifetime. Issuer, when set, is
// stamped on every token and required when parsing.
type Config struct {
	Secret string        `yaml:"secret" mapstructure:"secret"`
	Method SigningMethod `yaml:"method" mapstructure:"method"`
	Issuer string        `yaml:"issuer" mapstructure:"issuer"`
	TTL    time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults selects HS256 and a 24h lifetime.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
}

func (c *Config) Validate() error {
	if _, ok := methods[c.Method]; !ok {
		return fmt.Errorf("jwt: unsupported signing method %q", c.Method)
	}
	if len(c.Secret) < minSecret {
		return fmt.Errorf("jwt: secret must be at least %d bytes", minSecret)
	}
	if c.TTL < 0 {
		return fmt.Errorf("jwt: ttl must not be negative")
	}
	return nil
}

func (c *Config) method() gojwt.SigningMethod { return methods[c.Method] }
