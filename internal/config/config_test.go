package config

import (
	"testing"
	"time"
)

func TestLoadRequiresTokens(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() without REPLICATE_API_TOKEN should fail")
	}

	t.Setenv("REPLICATE_API_TOKEN", "r8_test")
	if _, err := Load(); err == nil {
		t.Fatal("Load() without TELEGRAM_BOT_TOKEN should fail")
	}
}

func TestLoadDefaultsAndClamps(t *testing.T) {
	t.Setenv("REPLICATE_API_TOKEN", " r8_test ")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-5")
	t.Setenv("LOG_LEVEL", " DEBUG ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ReplicateAPIToken != "r8_test" {
		t.Errorf("ReplicateAPIToken = %q, want trimmed token", cfg.ReplicateAPIToken)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want clamp to 1", cfg.MaxConcurrent)
	}
	if cfg.RequestTimeout != 180*time.Second {
		t.Errorf("RequestTimeout = %v, want 180s fallback", cfg.RequestTimeout)
	}
	if cfg.ReplicateBaseURL != "https://api.replicate.com" {
		t.Errorf("ReplicateBaseURL = %q", cfg.ReplicateBaseURL)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want 1s default", cfg.PollInterval)
	}
}
