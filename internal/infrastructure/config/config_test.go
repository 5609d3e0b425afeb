package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// testJWTSecret is a valid-length secret for tests.
const testJWTSecret = "test-secret-0123456789abcdef0123456789abcdef"

// writeTestConfig writes a config file to a temp dir and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTestConfig(t, `
security:
  jwt:
    secret: "`+testJWTSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "./data/argus.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Sync.Interval != 15 {
		t.Errorf("Sync.Interval = %d, want 15", cfg.Sync.Interval)
	}
	if cfg.Sync.HTTPTimeout != 30 {
		t.Errorf("Sync.HTTPTimeout = %d, want 30", cfg.Sync.HTTPTimeout)
	}
	if !cfg.MQTT.Enabled {
		t.Error("MQTT.Enabled = false, want true by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeTestConfig(t, `
database:
  path: /var/lib/argus/argus.db
api:
  port: 9090
sync:
  interval: 5
  http_timeout: 10
security:
  jwt:
    secret: "`+testJWTSecret+`"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "/var/lib/argus/argus.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if got := cfg.GetSyncInterval(); got != 5*time.Minute {
		t.Errorf("GetSyncInterval() = %v, want 5m", got)
	}
	if got := cfg.GetSyncHTTPTimeout(); got != 10*time.Second {
		t.Errorf("GetSyncHTTPTimeout() = %v, want 10s", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTestConfig(t, `
database:
  path: /from/file.db
security:
  jwt:
    secret: "`+testJWTSecret+`"
`)

	t.Setenv("ARGUS_DATABASE_PATH", "/from/env.db")
	t.Setenv("ARGUS_API_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "/from/env.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port = %d, want 7070", cfg.API.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() with missing file should return error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTestConfig(t, "database:\n  path: [unclosed")

	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid YAML should return error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(_ *Config) {},
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "negative sync interval",
			mutate:  func(c *Config) { c.Sync.Interval = -1 },
			wantErr: "sync.interval",
		},
		{
			name:    "zero http timeout",
			mutate:  func(c *Config) { c.Sync.HTTPTimeout = 0 },
			wantErr: "sync.http_timeout",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: "security.jwt.secret",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "short" },
			wantErr: "at least 32 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.JWT.Secret = testJWTSecret
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
