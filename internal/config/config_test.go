package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected default max upload 10MiB, got %d", cfg.MaxUploadBytes)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default session ttl 24h, got %s", cfg.SessionTTL)
	}
	if cfg.ProviderTimeout != 30*time.Second {
		t.Fatalf("expected default provider timeout 30s, got %s", cfg.ProviderTimeout)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected default cors origins [*], got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg := Load()
	if cfg.MaxUploadBytes != 1<<20 {
		t.Fatalf("expected max upload override 1MiB, got %d", cfg.MaxUploadBytes)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected two cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("expected model override, got %q", cfg.OpenAIModel)
	}
}

func TestValidateRequiresProviderKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error without provider key")
	}

	cfg.OpenAIAPIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}
