package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Tenant.Default != "main" {
		t.Fatalf("unexpected default tenant: %s", cfg.Tenant.Default)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Fatalf("unexpected access ttl: %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 14*24*time.Hour {
		t.Fatalf("unexpected refresh ttl: %v", cfg.RefreshTTL())
	}
	if len(cfg.Audit.MaskFields) == 0 {
		t.Fatal("expected default mask fields")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
retention:
  interval_hours: 6
  policies:
    - collection: leads
      days: 90
    - collection: inventory
      days: 365
audit:
  retention_days: 30
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEALER_ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env override lost: %s", cfg.Server.Addr)
	}
	if len(cfg.Retention.Policies) != 2 || cfg.Retention.Policies[0].Collection != "leads" {
		t.Fatalf("unexpected policies: %+v", cfg.Retention.Policies)
	}
	if cfg.Audit.RetentionDays != 30 {
		t.Fatalf("unexpected audit retention: %d", cfg.Audit.RetentionDays)
	}
	if cfg.RetentionInterval() != 6*time.Hour {
		t.Fatalf("unexpected interval: %v", cfg.RetentionInterval())
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr == "" {
		t.Fatal("defaults not applied")
	}
}
