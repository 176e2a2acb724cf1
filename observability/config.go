package observability

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config configures telemetry export.
type Config struct {
	// Enabled turns on OTLP export. Disabled keeps the global no-op providers.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain HTTP export (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// MetricInterval is the metric export interval.
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ServiceInfo identifies the service in exported telemetry.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}

// ApplyDefaults fills zero fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = 15 * time.Second
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability.sample_rate must be within [0, 1] (got: %v)", c.SampleRate)
	}
	return nil
}

// Setup installs tracer and meter providers when cfg.Enabled. The returned
// function flushes and shuts both down; it is a no-op when disabled.
func Setup(ctx context.Context, cfg Config, svc ServiceInfo) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return noop, err
	}

	tp, err := InitTracer(ctx, cfg, svc)
	if err != nil {
		return noop, err
	}
	mp, err := InitMeter(ctx, cfg, svc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return noop, err
	}
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
