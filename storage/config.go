package storage

import (
	"errors"
	"fmt"
)

const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "uploads"
	DefaultRegion   = "us-east-1"
)

// Config selects where uploaded recordings and extracted clips live. Local
// keeps them under BasePath; S3 keeps them under Prefix in Bucket.
type Config struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	BasePath string `yaml:"base_path" mapstructure:"base_path"`

	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	Region string `yaml:"region" mapstructure:"region"`
	// Endpoint points at an S3-compatible server such as MinIO.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// AccessKey and SecretKey go together; leave both empty for the AWS
	// default credential chain.
	AccessKey      string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey      string `yaml:"secret_key" mapstructure:"secret_key"`
	ForcePathStyle bool   `yaml:"force_path_style" mapstructure:"force_path_style"`
}

func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate reports every problem with the selected provider at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			errs = append(errs, errors.New("base_path is required"))
		}
	case ProviderS3:
		if c.Bucket == "" {
			errs = append(errs, errors.New("bucket is required"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("region is required"))
		}
		if (c.AccessKey == "") != (c.SecretKey == "") {
			errs = append(errs, errors.New("access_key and secret_key must be set together"))
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	if len(errs) > 0 {
		return fmt.Errorf("storage: invalid %s config: %w", c.Provider, errors.Join(errs...))
	}
	return nil
}
