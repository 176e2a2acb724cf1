package config

import (
	"fmt"

	"github.com/kbukum/voicemap/logger"
)

var environments = map[string]bool{"development": true, "staging": true, "production": true}

// ServiceConfig is the block shared by every binary. Embed it squashed so its
// keys sit at the top level of the YAML file:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Storage storage.Config `yaml:"storage" mapstructure:"storage"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig is promoted to the embedding struct, which then satisfies
// bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig { return c }

// ApplyDefaults assumes development, and development implies Debug.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	c.Debug = c.Debug || c.Environment == "development"
	c.Logging.ApplyDefaults()
}

func (c *ServiceConfig) Validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("config.name is required")
	case !environments[c.Environment]:
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
