package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
  cors_origins: ["http://localhost:3000"]
postgres:
  url: postgres://quiz@localhost/quizdb
  migrate: false
quiz:
  ttl: 30s
auth:
  jwt_secret: s3cret
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Postgres.Migrate || cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("expected defaults to survive partial files, got %q", cfg.Log.Format)
	}
	if len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("expected one cors origin, got %v", cfg.Server.CORSOrigins)
	}
	if got := TTLDuration(cfg.Quiz.TTL, time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s ttl, got %v", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Quiz.TTL != "10m" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected a missing secret to fail validation")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"PORT":         "7000",
		"DATABASE_URL": "postgres://env",
		"REDIS_ADDR":   "redis:6379",
		"JWT_SECRET":   "from-env",
		"CORS_ORIGINS": "http://a,http://b",
	}
	cfg.applyEnv(func(key string) string { return env[key] })

	if cfg.Server.Port != "7000" || cfg.Postgres.URL != "postgres://env" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.Auth.JWTSecret != "from-env" || len(cfg.Server.CORSOrigins) != 2 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for garbage, got %v", got)
	}
}
