package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
api:
  host: "127.0.0.1"
  port: 9090
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
storage:
  endpoint: "https://storage.example.com/storage/v1"
  bucket: "device-models"
  service_key: "svc-key"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Storage.Bucket != "device-models" {
		t.Errorf("Storage.Bucket = %q, want %q", cfg.Storage.Bucket, "device-models")
	}
	// Defaults survive a partial file
	if cfg.Storage.PreloadPrefix != "ready-use-object" {
		t.Errorf("Storage.PreloadPrefix = %q, want default %q", cfg.Storage.PreloadPrefix, "ready-use-object")
	}
	if cfg.Storage.SignedURLTTL != 600 {
		t.Errorf("Storage.SignedURLTTL = %d, want default 600", cfg.Storage.SignedURLTTL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
storage:
  endpoint: "https://storage.example.com/storage/v1"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Error("Load() expected validation error for missing jwt secret, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
database:
  path: "/tmp/test.db"
storage:
  endpoint: "https://storage.example.com/storage/v1"
security:
  jwt:
    secret: "from-file"
`
	t.Setenv("RACKDASH_JWT_SECRET", "from-env")
	t.Setenv("RACKDASH_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("RACKDASH_API_PORT", "7070")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Security.JWT.Secret != "from-env" {
		t.Errorf("JWT.Secret = %q, want %q", cfg.Security.JWT.Secret, "from-env")
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/override.db")
	}
	if cfg.API.Port != 7070 {
		t.Errorf("API.Port = %d, want 7070", cfg.API.Port)
	}
}

func TestValidate_BadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.API.Port = 0 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"empty storage endpoint", func(c *Config) { c.Storage.Endpoint = "" }},
		{"zero signed url ttl", func(c *Config) { c.Storage.SignedURLTTL = 0 }},
		{"bad qos", func(c *Config) { c.Events.Enabled = true; c.Events.QoS = 3 }},
		{"zero token ttl", func(c *Config) { c.Security.JWT.AccessTokenTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Storage.Endpoint = "https://storage.example.com/storage/v1"
			cfg.Security.JWT.Secret = "secret"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}
