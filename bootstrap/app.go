package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/voicemap/component"
	"github.com/kbukum/voicemap/logger"
)

// App owns the component registry and the process lifecycle of a service
// whose configuration type is C.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(storageComponent)
//	app.OnStop(flushTelemetry)
//	err = app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onReady         []Hook
	onStop          []Hook
	signals         []os.Signal
}

// NewApp applies defaults to cfg, validates it and initializes logging from
// its Logging section unless WithLogger is given.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(base.Logging)
		log = logger.GetGlobalLogger()
	}

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          log,
		Summary:         NewSummary(base.Name, base.Version),
		gracefulTimeout: o.gracefulTimeout,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
	if o.summaryOut != nil {
		app.Summary.out = o.summaryOut
	}
	return app, nil
}

// RegisterComponent adds c. Components start in registration order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck returns an error naming every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		entry := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			entry += " (" + h.Message + ")"
		}
		bad = append(bad, entry)
	}
	if len(bad) > 0 {
		return fmt.Errorf("components not healthy: %v", bad)
	}
	return nil
}

// Start brings the application up: components, ready check, OnReady hooks
// and the startup summary. A failed ready check is logged, not fatal.
func (a *App[C]) Start(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting application", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return err
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		_ = a.stop()
		return fmt.Errorf("onReady: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.DisplaySummary(ctx, a.Components)
	return nil
}

// Run starts the application, blocks until SIGINT, SIGTERM or ctx is done,
// then shuts down within the graceful timeout.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	sigCtx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()
	a.Logger.Info("Application ready")
	<-sigCtx.Done()
	a.Logger.Info("Shutdown requested", logger.Fields("reason", context.Cause(sigCtx).Error()))

	return a.stop()
}

// Shutdown stops the application. Use it with Start when the caller owns
// the wait.
func (a *App[C]) Shutdown() error {
	return a.stop()
}

func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	hookErr := runHooks(ctx, a.onStop)
	if hookErr != nil {
		a.Logger.Error("OnStop hook failed", logger.Fields(logger.FieldError, hookErr.Error()))
	}
	stopErr := a.Components.StopAll(ctx)
	if stopErr != nil {
		a.Logger.Error("Components stopped with errors", logger.Fields(logger.FieldError, stopErr.Error()))
	}

	a.Logger.Info("Application stopped")
	if hookErr != nil {
		return hookErr
	}
	return stopErr
}
