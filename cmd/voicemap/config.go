package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/kbukum/voicemap/auth/jwt"
	"github.com/kbukum/voicemap/config"
	"github.com/kbukum/voicemap/diarization"
	"github.com/kbukum/voicemap/explorer"
	"github.com/kbukum/voicemap/media"
	"github.com/kbukum/voicemap/observability"
	"github.com/kbukum/voicemap/server"
	"github.com/kbukum/voicemap/storage"
)

// AppConfig is the voicemap service configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Diarization   diarization.Config   `yaml:"diarization" mapstructure:"diarization"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Media         media.Config         `yaml:"media" mapstructure:"media"`
	Session       SessionConfig        `yaml:"session" mapstructure:"session"`
	Explorer      explorer.Config      `yaml:"explorer" mapstructure:"explorer"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// SessionConfig controls how sessions are identified and how provider
// credentials are kept while a session lives.
type SessionConfig struct {
	// Token signs the sid cookie. An empty secret is replaced by a random
	// one, which is enough because sessions do not outlive the process.
	Token jwt.Config `yaml:"token" mapstructure:"token"`
	// Secret derives the key sealing provider tokens. Empty uses a random key.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// SecureCookie sets the Secure flag on the sid cookie.
	SecureCookie bool `yaml:"secure_cookie" mapstructure:"secure_cookie"`
}

// ApplyDefaults fills zero fields across every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "voicemap"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Diarization.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Media.ApplyDefaults()
	c.Explorer.ApplyDefaults()
	c.Observability.ApplyDefaults()

	c.Session.Token.ApplyDefaults()
	if c.Session.Token.Issuer == "" {
		c.Session.Token.Issuer = c.Name
	}
	if c.Session.Token.Secret == "" {
		c.Session.Token.Secret = randomSecret()
	}
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Diarization.Validate(); err != nil {
		return fmt.Errorf("diarization: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Session.Token.Validate(); err != nil {
		return fmt.Errorf("session.token: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return hex.EncodeToString(b)
}
