package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-test-secret-of-decent-length")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("UploadDir = %q, want uploads", cfg.UploadDir)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
}

func TestNewRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := New(); err == nil {
		t.Error("New() without JWT_SECRET: error = nil, want failure")
	}
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-test-secret-of-decent-length")
	t.Setenv("PORT", "9000")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("GITHUB_CLIENT_ID", "client-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "client-secret")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.TokenTTL)
	}
	if cfg.GitHub.ClientID != "client-id" {
		t.Errorf("GitHub.ClientID = %q", cfg.GitHub.ClientID)
	}
	// Callback defaults relative to the configured port.
	if cfg.GitHub.CallbackURL != "http://localhost:9000/auth/github/callback" {
		t.Errorf("GitHub.CallbackURL = %q", cfg.GitHub.CallbackURL)
	}
}
