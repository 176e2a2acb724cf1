package diarization

import (
	"fmt"
	"time"

	"github.com/kbukum/voicemap/resilience"
	"github.com/kbukum/voicemap/security"
)

const (
	DefaultBaseURL = "https://api.pyannote.ai/v1"
	DefaultModel   = "precision-2"
)

// Config configures the diarization backend.
type Config struct {
	// Provider names the registered backend.
	Provider string `yaml:"provider" mapstructure:"provider"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds each HTTP request, not a whole job.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Model is the diarization model requested.
	Model string `yaml:"model" mapstructure:"model"`
	// TLS customizes verification of the provider's certificate.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
	// RateLimit spaces requests to the provider.
	RateLimit resilience.RateLimiterConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	// DiarizePoll bounds waiting for a diarization job.
	DiarizePoll resilience.PollConfig `yaml:"diarize_poll" mapstructure:"diarize_poll"`
	// VoiceprintPoll bounds waiting for a voiceprint job.
	VoiceprintPoll resilience.PollConfig `yaml:"voiceprint_poll" mapstructure:"voiceprint_poll"`
}

// ApplyDefaults fills zero fields: 45 polls every 2s for diarization and
// 15 polls every second for voiceprints.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "pyannote"
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.DiarizePoll.MaxAttempts <= 0 {
		c.DiarizePoll.MaxAttempts = 45
	}
	if c.DiarizePoll.Interval <= 0 {
		c.DiarizePoll.Interval = 2 * time.Second
	}
	if c.VoiceprintPoll.MaxAttempts <= 0 {
		c.VoiceprintPoll.MaxAttempts = 15
	}
	if c.VoiceprintPoll.Interval <= 0 {
		c.VoiceprintPoll.Interval = time.Second
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("diarization.base_url is required")
	}
	if c.DiarizePoll.MaxAttempts < 1 || c.VoiceprintPoll.MaxAttempts < 1 {
		return fmt.Errorf("diarization poll max_attempts must be at least 1")
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("diarization: %w", err)
	}
	return nil
}
