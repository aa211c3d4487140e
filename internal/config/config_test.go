package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.StorageBackend != "file" {
		t.Errorf("expected default storage backend file, got %s", cfg.StorageBackend)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected default session TTL 24h, got %s", cfg.SessionTTL)
	}
	if cfg.HistoryLimit != 5 {
		t.Errorf("expected default history limit 5, got %d", cfg.HistoryLimit)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("expected default LLM timeout 30s, got %s", cfg.LLMTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("HISTORY_LIMIT", "10")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.StorageBackend != "redis" {
		t.Errorf("expected storage backend normalized to redis, got %s", cfg.StorageBackend)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("expected session TTL 1h, got %s", cfg.SessionTTL)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("expected history limit 10, got %d", cfg.HistoryLimit)
	}
	if !cfg.RedisTLS {
		t.Error("expected redis TLS enabled")
	}
	if cfg.LLMTemperature != 0.2 {
		t.Errorf("expected LLM temperature 0.2, got %f", cfg.LLMTemperature)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("HISTORY_LIMIT", "banana")

	cfg := Load()

	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected fallback TTL 24h, got %s", cfg.SessionTTL)
	}
	if cfg.HistoryLimit != 5 {
		t.Errorf("expected fallback history limit 5, got %d", cfg.HistoryLimit)
	}
}
