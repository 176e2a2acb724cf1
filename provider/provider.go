package provider

import "context"

// Provider is what every registered backend exposes to health reporting.
type Provider interface {
	Name() string
	// IsAvailable probes the backend without side effects.
	IsAvailable(ctx context.Context) bool
}

// Factory turns configuration of type C into a backend of type T.
type Factory[T Provider, C any] func(cfg C) (T, error)
