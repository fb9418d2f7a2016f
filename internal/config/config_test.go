package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.RegistryAPIURL != "https://receitaws.com.br/v1" {
		t.Errorf("unexpected registry url: %s", cfg.RegistryAPIURL)
	}
	if cfg.ActivationTokenTTL != 15*time.Minute {
		t.Errorf("expected 15m activation token TTL, got %s", cfg.ActivationTokenTTL)
	}
	if cfg.JWTAccessTTL != 15*time.Minute {
		t.Errorf("expected 15m access token TTL, got %s", cfg.JWTAccessTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_RETRIES", "7")
	t.Setenv("ACTIVATION_TOKEN_TTL", "30m")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("expected 7 retries, got %d", cfg.MaxRetries)
	}
	if cfg.ActivationTokenTTL != 30*time.Minute {
		t.Errorf("expected 30m TTL, got %s", cfg.ActivationTokenTTL)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("HTTP_TIMEOUT", "forever")

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("expected fallback port 8080, got %d", cfg.Port)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("expected fallback 10s timeout, got %s", cfg.HTTPTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nSMTP_HOST=smtp.example.com\nexport SMTP_PORT=465\nQUOTED=\"hello\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("SMTP_HOST", "")
	os.Unsetenv("SMTP_HOST")
	defer func() {
		os.Unsetenv("SMTP_PORT")
		os.Unsetenv("QUOTED")
	}()

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load .env: %v", err)
	}

	if got := os.Getenv("SMTP_HOST"); got != "smtp.example.com" {
		t.Errorf("expected SMTP_HOST from .env, got %q", got)
	}
	if got := os.Getenv("SMTP_PORT"); got != "465" {
		t.Errorf("expected export-prefixed var to load, got %q", got)
	}
	if got := os.Getenv("QUOTED"); got != "hello" {
		t.Errorf("expected quotes to be stripped, got %q", got)
	}
}
