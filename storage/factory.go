package storage

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/voicemap/logger"
)

// Factory creates a Storage backend from configuration.
type Factory func(cfg Config, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a storage backend factory for the given provider name.
// Backend packages call this from an init function.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Providers lists the registered provider names.
func Providers() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

// New creates the Storage selected by cfg.Provider. The backend package must
// have been imported so its factory is registered.
func New(cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", logger.Fields("provider", cfg.Provider))
	return f(cfg, l)
}
