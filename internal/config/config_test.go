package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:8000/api" {
		t.Errorf("expected default API URL, got %s", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 30 {
		t.Errorf("expected default timeout 30, got %d", cfg.HTTPTimeout)
	}
	if !cfg.IsDev() {
		t.Error("expected default ENV to be development")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("REGISTRY_API_URL", "https://registry.meghalaya.test/api")
	t.Setenv("REGISTRY_HTTP_TIMEOUT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://registry.meghalaya.test/api" {
		t.Errorf("expected env API URL, got %s", cfg.APIBaseURL)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", cfg.Timeout())
	}
}

func TestLoad_RejectsRelativeURL(t *testing.T) {
	t.Setenv("REGISTRY_API_URL", "/api")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for relative REGISTRY_API_URL")
	}
}

func TestValidate_RejectsBadScheme(t *testing.T) {
	c := &Config{APIBaseURL: "ftp://host/api", HTTPTimeout: 30}
	if err := c.Validate(); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestValidate_RejectsNonPositiveTimeout(t *testing.T) {
	c := &Config{APIBaseURL: "http://localhost:8000/api", HTTPTimeout: 0}
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}
