package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the dashboard backend.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Events   EventsConfig   `yaml:"events"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// StorageConfig contains blob storage (3D model bucket) settings.
type StorageConfig struct {
	// Endpoint is the base URL of the storage API, e.g.
	// https://project.supabase.co/storage/v1
	Endpoint string `yaml:"endpoint"`

	// Bucket is the bucket holding device model objects.
	Bucket string `yaml:"bucket"`

	// ServiceKey authenticates server-side storage calls.
	ServiceKey string `yaml:"service_key"`

	// PreloadPrefix is the shared library directory for reusable assets.
	PreloadPrefix string `yaml:"preload_prefix"`

	// SignedURLTTL is the lifetime of signed upload URLs in seconds.
	SignedURLTTL int `yaml:"signed_url_ttl"`
}

// EventsConfig contains the optional MQTT change-event publisher settings.
type EventsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	TLS         bool   `yaml:"tls"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	QoS         int    `yaml:"qos"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"` // minutes
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: RACKDASH_SECTION_KEY
// For example: RACKDASH_DATABASE_PATH, RACKDASH_STORAGE_SERVICE_KEY
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/rackdash.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Storage: StorageConfig{
			Bucket:        "device-models",
			PreloadPrefix: "ready-use-object",
			SignedURLTTL:  600,
		},
		Events: EventsConfig{
			Host:        "localhost",
			Port:        1883,
			ClientID:    "rackdash-core",
			QoS:         1,
			TopicPrefix: "rackdash",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RACKDASH_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("RACKDASH_API_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = n
		}
	}
	if v := os.Getenv("RACKDASH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RACKDASH_STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("RACKDASH_STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("RACKDASH_STORAGE_SERVICE_KEY"); v != "" {
		cfg.Storage.ServiceKey = v
	}
	if v := os.Getenv("RACKDASH_EVENTS_HOST"); v != "" {
		cfg.Events.Host = v
	}
	if v := os.Getenv("RACKDASH_EVENTS_USERNAME"); v != "" {
		cfg.Events.Username = v
	}
	if v := os.Getenv("RACKDASH_EVENTS_PASSWORD"); v != "" {
		cfg.Events.Password = v
	}
	if v := os.Getenv("RACKDASH_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port must be between 1 and 65535, got %d", c.API.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout must not be negative")
	}
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("storage.endpoint is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}
	if c.Storage.SignedURLTTL <= 0 {
		return fmt.Errorf("storage.signed_url_ttl must be positive")
	}
	if c.Events.Enabled {
		if c.Events.Host == "" {
			return fmt.Errorf("events.host is required when events are enabled")
		}
		if c.Events.QoS < 0 || c.Events.QoS > 2 {
			return fmt.Errorf("events.qos must be 0, 1 or 2, got %d", c.Events.QoS)
		}
	}
	if c.Security.JWT.Secret == "" {
		return fmt.Errorf("security.jwt.secret is required (set RACKDASH_JWT_SECRET)")
	}
	if c.Security.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("security.jwt.access_token_ttl must be positive")
	}
	return nil
}
