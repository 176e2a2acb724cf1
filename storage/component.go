package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/voicemap/component"
	"github.com/kbukum/voicemap/logger"
)

// probeKey is never written; Exists on it round-trips the backend.
const probeKey = ".health"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component opens the configured backend on Start. Storage is nil until then,
// so consumers fetch it from their own Start.
type Component struct {
	cfg     Config
	log     *logger.Logger
	backend Storage
}

func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log}
}

func (c *Component) Name() string { return "storage" }

// Storage returns the open backend, or nil before Start.
func (c *Component) Storage() Storage { return c.backend }

func (c *Component) Start(context.Context) error {
	backend, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.backend = backend
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.backend = nil
	return nil
}

func (c *Component) Health(ctx context.Context) component.Health {
	if c.backend == nil {
		return component.Unhealthy(c.Name(), "not started")
	}
	if _, err := c.backend.Exists(ctx, probeKey); err != nil {
		return component.Unhealthy(c.Name(), "probe failed: "+err.Error())
	}
	return component.Healthy(c.Name())
}

func (c *Component) Describe() component.Description {
	where := "path=" + c.cfg.BasePath
	if c.cfg.Provider == ProviderS3 {
		where = "bucket=" + c.cfg.Bucket
		if c.cfg.Prefix != "" {
			where += " prefix=" + c.cfg.Prefix
		}
	}
	return component.Description{
		Name:    "Storage",
		Type:    "storage",
		Details: fmt.Sprintf("provider=%s %s", c.cfg.Provider, where),
	}
}
