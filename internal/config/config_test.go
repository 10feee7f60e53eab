package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Quality.MinLength != 2500 {
		t.Errorf("MinLength = %d, want 2500", cfg.Quality.MinLength)
	}
	if cfg.Publish.CaptionLimit != 1024 {
		t.Errorf("CaptionLimit = %d, want 1024", cfg.Publish.CaptionLimit)
	}
	if got := len(cfg.Scheduler.Times); got != 2 {
		t.Errorf("scheduler slots = %d, want 2", got)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("provider = %q, want openai", cfg.LLM.Provider)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env-host/db")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Database.DSN != "postgres://env-host/db" {
		t.Errorf("DSN = %q, env override lost", cfg.Database.DSN)
	}
	if cfg.Telegram.BotToken != "token-from-env" {
		t.Errorf("BotToken = %q, env override lost", cfg.Telegram.BotToken)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("quality:\n  minLength: 1800\n  maxLength: 3000\n  minScore: 0.6\n  maxTags: 7\nscheduler:\n  times: [\"09:30\"]\n  timezone: Europe/Moscow\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ZENBOT_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Quality.MinLength != 1800 {
		t.Errorf("MinLength = %d, want 1800", cfg.Quality.MinLength)
	}
	if len(cfg.Scheduler.Times) != 1 || cfg.Scheduler.Times[0] != "09:30" {
		t.Errorf("scheduler times = %v, want [09:30]", cfg.Scheduler.Times)
	}
	if cfg.Scheduler.Location().String() != "Europe/Moscow" {
		t.Errorf("location = %s, want Europe/Moscow", cfg.Scheduler.Location())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("quality:\n  minLength: -5\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ZENBOT_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for negative minLength")
	}
}
