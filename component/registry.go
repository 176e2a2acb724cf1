package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/voicemap/logger"
)

// StopTimeout bounds each component's Stop call.
const StopTimeout = 10 * time.Second

type entry struct {
	c       Component
	started bool
}

// Registry starts components in registration order and stops them in
// reverse, so dependencies must be registered first.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	names   map[string]bool
	log     *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool), log: logger.Get("component")}
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.names[c.Name()] {
		return fmt.Errorf("component %s already registered", c.Name())
	}
	r.names[c.Name()] = true
	r.entries = append(r.entries, &entry{c: c})
	return nil
}

// StartAll starts every component in order. If one fails, those already
// started are stopped again before the error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		start := time.Now()
		if err := e.c.Start(ctx); err != nil {
			r.log.Error("Component failed to start", logger.Fields(
				"component", e.c.Name(),
				logger.FieldError, err.Error(),
			))
			if stopErr := r.stopStarted(ctx); stopErr != nil {
				err = errors.Join(err, stopErr)
			}
			return fmt.Errorf("start %s: %w", e.c.Name(), err)
		}
		e.started = true
		r.log.Debug("Component started", logger.Fields(
			"component", e.c.Name(),
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
	}
	r.log.Info("Components started", logger.Fields("count", len(r.entries)))
	return nil
}

// StopAll stops started components in reverse order. Every component is
// asked to stop even if an earlier one fails.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopStarted(ctx)
}

func (r *Registry) stopStarted(ctx context.Context) error {
	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		stopCtx, cancel := context.WithTimeout(ctx, StopTimeout)
		err := e.c.Stop(stopCtx)
		cancel()
		e.started = false
		if err != nil {
			r.log.Error("Component failed to stop", logger.Fields(
				"component", e.c.Name(),
				logger.FieldError, err.Error(),
			))
			errs = append(errs, fmt.Errorf("stop %s: %w", e.c.Name(), err))
			continue
		}
		r.log.Debug("Component stopped", logger.Fields("component", e.c.Name()))
	}
	return errors.Join(errs...)
}

// HealthAll collects every component's health in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.c.Health(ctx)
	}
	return out
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Component, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.c
	}
	return out
}
