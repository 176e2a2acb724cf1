// Command voicemap serves the speaker-embedding explorer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/voicemap/bootstrap"
	"github.com/kbukum/voicemap/config"
	"github.com/kbukum/voicemap/logger"
	"github.com/kbukum/voicemap/observability"
	"github.com/kbukum/voicemap/server"
	"github.com/kbukum/voicemap/storage"
	_ "github.com/kbukum/voicemap/storage/local"
	_ "github.com/kbukum/voicemap/storage/s3"
	"github.com/kbukum/voicemap/util"
	"github.com/kbukum/voicemap/version"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	if err := run(context.Background(), *configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "voicemap: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile, envFile string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &AppConfig{}
	if err := config.LoadConfig("voicemap", cfg, opts...); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().String()
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}
	log := app.Logger

	log.Info("Configuration loaded", logger.Fields(
		"environment", cfg.Environment,
		"diarization", cfg.Diarization.Provider,
		"storage", cfg.Storage.Provider,
		"storage_secret", util.MaskSecret(cfg.Storage.SecretKey, 2),
		"session_secret", util.MaskSecret(cfg.Session.Secret, 2),
	))

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	app.OnStop(shutdownTelemetry)

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	srv := server.New(cfg.Server, log)
	store := storage.NewComponent(cfg.Storage, log)
	exp := &explorerComponent{
		cfg:     cfg,
		store:   store,
		server:  srv,
		metrics: metrics,
		log:     log,
	}
	srv.ApplyDefaults(cfg.Name, app.Components.HealthAll, exp.gauges)

	if err := app.RegisterComponent(store); err != nil {
		return err
	}
	if err := app.RegisterComponent(exp); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	return app.Run(ctx)
}
