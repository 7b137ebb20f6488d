package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BCASCO_ADMIN_EMAILS", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.AdminEmails) != len(DefaultAdminEmails) {
		t.Fatalf("expected default admin list, got %#v", cfg.AdminEmails)
	}
	if cfg.SavedIndicatorTTL != 3*time.Second {
		t.Fatalf("expected 3s saved indicator ttl, got %s", cfg.SavedIndicatorTTL)
	}
	if cfg.RelayMaxAttempts != 5 {
		t.Fatalf("expected 5 relay attempts, got %d", cfg.RelayMaxAttempts)
	}
	if cfg.WorkspaceIdleTTL != 2*time.Hour {
		t.Fatalf("expected 2h workspace idle ttl, got %s", cfg.WorkspaceIdleTTL)
	}
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("BCASCO_ADMIN_EMAILS", " a@example.com , ,B@example.com")
	t.Setenv("PORT", "9090")
	t.Setenv("RELAY_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[0] != "a@example.com" || cfg.AdminEmails[1] != "B@example.com" {
		t.Fatalf("unexpected admin emails: %#v", cfg.AdminEmails)
	}
	if cfg.Addr() != ":9090" {
		t.Fatalf("expected :9090, got %s", cfg.Addr())
	}
	if cfg.RelayInterval != 30*time.Second {
		t.Fatalf("expected 30s, got %s", cfg.RelayInterval)
	}
}
