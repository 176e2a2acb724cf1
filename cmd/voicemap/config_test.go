package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/voicemap/config"
)

func TestAppConfig_Defaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Name != "voicemap" {
		t.Errorf("expected name voicemap, got %q", cfg.Name)
	}
	if len(cfg.Session.Token.Secret) < 16 {
		t.Error("expected a generated token secret")
	}
	if cfg.Session.Token.Issuer != "voicemap" {
		t.Errorf("expected issuer voicemap, got %q", cfg.Session.Token.Issuer)
	}
	if cfg.Diarization.DiarizePoll.MaxAttempts != 45 || cfg.Diarization.VoiceprintPoll.MaxAttempts != 15 {
		t.Errorf("unexpected poll budgets %+v %+v", cfg.Diarization.DiarizePoll, cfg.Diarization.VoiceprintPoll)
	}
	if budget := cfg.Diarization.DiarizePoll.Budget(); time.Duration(cfg.Server.WriteTimeout)*time.Second <= budget {
		t.Errorf("write timeout %ds does not cover the diarization poll budget %s", cfg.Server.WriteTimeout, budget)
	}
}

func TestAppConfig_GeneratedSecretsDiffer(t *testing.T) {
	a, b := &AppConfig{}, &AppConfig{}
	a.ApplyDefaults()
	b.ApplyDefaults()
	if a.Session.Token.Secret == b.Session.Token.Secret {
		t.Error("generated secrets should differ")
	}
}

func TestAppConfig_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	data := []byte("name: voicemap\nserver:\n  port: 8080\ndiarization:\n  diarize_poll:\n    interval: 500ms\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VOICEMAP_STORAGE_BASE_PATH", "/tmp/voicemap-test")

	cfg := &AppConfig{}
	if err := config.LoadConfig("voicemap", cfg, config.WithConfigFile(path), config.WithEnvFile(filepath.Join(dir, ".env"))); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.ApplyDefaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Diarization.DiarizePoll.Interval != 500*time.Millisecond {
		t.Errorf("expected 500ms interval, got %s", cfg.Diarization.DiarizePoll.Interval)
	}
	if cfg.Storage.BasePath != "/tmp/voicemap-test" {
		t.Errorf("expected env override, got %q", cfg.Storage.BasePath)
	}
}

func TestAppConfig_InvalidEnvironment(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Environment = "qa"
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}
}
