package main

import (
	"context"
	"fmt"

	"github.com/kbukum/voicemap/api"
	"github.com/kbukum/voicemap/component"
	"github.com/kbukum/voicemap/diarization"
	"github.com/kbukum/voicemap/diarization/pyannote"
	"github.com/kbukum/voicemap/encryption"
	"github.com/kbukum/voicemap/explorer"
	"github.com/kbukum/voicemap/logger"
	"github.com/kbukum/voicemap/media"
	"github.com/kbukum/voicemap/observability"
	"github.com/kbukum/voicemap/resilience"
	"github.com/kbukum/voicemap/server"
	"github.com/kbukum/voicemap/session"
	"github.com/kbukum/voicemap/storage"
)

// explorerComponent builds the explorer once storage is up and mounts its
// routes before the HTTP server starts listening.
type explorerComponent struct {
	cfg      *AppConfig
	store    *storage.Component
	server   *server.Server
	metrics  *observability.Metrics
	log      *logger.Logger
	sessions *session.Registry
	gateway  diarization.Provider
}

var _ component.Component = (*explorerComponent)(nil)

func (e *explorerComponent) Name() string { return "explorer" }

func (e *explorerComponent) Start(ctx context.Context) error {
	sealer, err := newSealer(e.cfg.Session.Secret)
	if err != nil {
		return fmt.Errorf("session sealer: %w", err)
	}
	e.sessions = session.NewRegistry(sealer)

	e.gateway, err = newGateway(e.cfg.Diarization, e.metrics)
	if err != nil {
		return fmt.Errorf("diarization provider: %w", err)
	}

	extractor := media.NewExtractor(e.cfg.Media, e.store.Storage(), nil)
	if err := extractor.Available(); err != nil {
		e.log.Warn("Segment extraction unavailable", logger.Fields(logger.FieldError, err.Error()))
	}

	tokens, err := api.NewTokens(e.cfg.Session.Token, e.cfg.Session.SecureCookie)
	if err != nil {
		return fmt.Errorf("session tokens: %w", err)
	}

	svc := explorer.New(e.sessions, e.store.Storage(), e.gateway, extractor, e.cfg.Explorer,
		explorer.WithMetrics(e.metrics),
		explorer.WithLogger(e.log),
	)
	api.NewHandler(svc, tokens, e.log).RegisterRoutes(e.server.GinEngine())
	return nil
}

func (e *explorerComponent) Stop(context.Context) error { return nil }

func (e *explorerComponent) Health(ctx context.Context) component.Health {
	if e.sessions == nil {
		return component.Unhealthy(e.Name(), "not started")
	}
	if !e.gateway.IsAvailable(ctx) {
		return component.Degraded(e.Name(), e.gateway.Name()+" unreachable")
	}
	return component.Healthy(e.Name())
}

func (e *explorerComponent) Describe() component.Description {
	return component.Description{
		Name:    "Explorer",
		Type:    "diarization",
		Details: fmt.Sprintf("provider=%s clusters=%d", e.cfg.Diarization.Provider, explorer.DefaultClusters),
	}
}

// gauges reports live session counts on /metrics.
func (e *explorerComponent) gauges(context.Context) map[string]any {
	n := 0
	if e.sessions != nil {
		n = e.sessions.Len()
	}
	return map[string]any{"sessions": n}
}

func newSealer(secret string) (*encryption.Sealer, error) {
	if secret == "" {
		return encryption.NewRandom()
	}
	return encryption.New(secret, encryption.AlgorithmChaCha20)
}

// newGateway creates the configured diarization backend. The pyannote
// backend reports job polls to metrics.
func newGateway(cfg diarization.Config, metrics *observability.Metrics) (diarization.Provider, error) {
	if cfg.Provider != pyannote.ProviderName {
		return diarization.Registry.Create(cfg.Provider, cfg)
	}
	return pyannote.New(cfg, pyannote.WithPollObserver(func(kind string, _ int, state resilience.JobState) {
		metrics.RecordPoll(context.Background(), kind, state.String())
	}))
}
