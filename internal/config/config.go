// Package config loads service configuration from an optional YAML file with
// environment variable overrides. Secrets (JWT secret, admin credentials,
// Postgres DSN) are read from the environment only and never live in the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Tenant    TenantConfig    `yaml:"tenant"`
	Storage   StorageConfig   `yaml:"storage"`
	Audit     AuditConfig     `yaml:"audit"`
	Retention RetentionConfig `yaml:"retention"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	RateBurst      int      `yaml:"rate_burst"`
	RatePerSecond  int      `yaml:"rate_per_second"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type AuthConfig struct {
	Issuer           string `yaml:"issuer"`
	AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
	RefreshTTLDays   int    `yaml:"refresh_ttl_days"`
}

type TenantConfig struct {
	Default string `yaml:"default"`
}

type StorageConfig struct {
	Root string `yaml:"root"`
}

type AuditConfig struct {
	LogPath       string   `yaml:"log_path"`
	MaskFields    []string `yaml:"mask_fields"`
	RetentionDays int      `yaml:"retention_days"`
}

type RetentionConfig struct {
	IntervalHours int               `yaml:"interval_hours"`
	Policies      []RetentionPolicy `yaml:"policies"`
}

type RetentionPolicy struct {
	Collection string `yaml:"collection"`
	Days       int    `yaml:"days"`
}

// Load reads the YAML file at path (when it exists), applies environment
// overrides and fills in defaults. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DEALER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DEALER_STORAGE_ROOT"); v != "" {
		c.Storage.Root = v
	}
	if v := os.Getenv("DEALER_DEFAULT_TENANT"); v != "" {
		c.Tenant.Default = v
	}
	if v := os.Getenv("DEALER_AUDIT_LOG"); v != "" {
		c.Audit.LogPath = v
	}
	if n := envInt("DEALER_ACCESS_TTL_MINUTES"); n > 0 {
		c.Auth.AccessTTLMinutes = n
	}
	if n := envInt("DEALER_REFRESH_TTL_DAYS"); n > 0 {
		c.Auth.RefreshTTLDays = n
	}
	if n := envInt("DEALER_RETENTION_INTERVAL_HOURS"); n > 0 {
		c.Retention.IntervalHours = n
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = 20
	}
	if c.Server.RatePerSecond <= 0 {
		c.Server.RatePerSecond = 10
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "sewell-dealer-api"
	}
	if c.Auth.AccessTTLMinutes <= 0 {
		c.Auth.AccessTTLMinutes = 15
	}
	if c.Auth.RefreshTTLDays <= 0 {
		c.Auth.RefreshTTLDays = 14
	}
	if c.Tenant.Default == "" {
		c.Tenant.Default = "main"
	}
	if c.Storage.Root == "" {
		c.Storage.Root = "data"
	}
	if c.Audit.LogPath == "" {
		c.Audit.LogPath = "data/audit.log"
	}
	if len(c.Audit.MaskFields) == 0 {
		c.Audit.MaskFields = []string{"password", "passwordHash", "email", "phone", "ssn", "creditScore"}
	}
	if c.Audit.RetentionDays <= 0 {
		c.Audit.RetentionDays = 180
	}
	if c.Retention.IntervalHours <= 0 {
		c.Retention.IntervalHours = 24
	}
}

// AccessTTL returns the configured access token lifetime.
func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.Auth.AccessTTLMinutes) * time.Minute
}

// RefreshTTL returns the configured refresh token lifetime.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTTLDays) * 24 * time.Hour
}

// RetentionInterval returns the sweep interval.
func (c Config) RetentionInterval() time.Duration {
	return time.Duration(c.Retention.IntervalHours) * time.Hour
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
