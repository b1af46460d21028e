// Package config loads the service configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Test        Environment = "test"
)

// Config is the full service configuration.
type Config struct {
	Environment Environment    `yaml:"environment" validate:"required,oneof=development production test"`
	Server      ServerConfig   `yaml:"server"`
	Upstream    UpstreamConfig `yaml:"upstream"`
	Cache       CacheConfig    `yaml:"cache"`
	State       StateConfig    `yaml:"state"`
	Session     SessionConfig  `yaml:"session"`
	Tracing     TracingConfig  `yaml:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// UpstreamConfig configures the knowledge-graph API client.
type UpstreamConfig struct {
	BaseURL   string        `yaml:"base_url" validate:"required,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"min=1s"`
	RateLimit float64       `yaml:"rate_limit" validate:"gt=0"`
	UserID    string        `yaml:"user_id"`
}

// CacheConfig configures the node detail cache.
type CacheConfig struct {
	Backend   string        `yaml:"backend" validate:"oneof=memory redis"`
	RedisURL  string        `yaml:"redis_url" validate:"required_if=Backend redis"`
	DetailTTL time.Duration `yaml:"detail_ttl" validate:"min=1m"`
	MaxItems  int           `yaml:"max_items" validate:"min=1"`
}

// StateConfig configures the local session state database.
type StateConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// SessionConfig configures session lifecycle handling.
type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" validate:"min=1m"`
	SweepInterval time.Duration `yaml:"sweep_interval" validate:"min=1s"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint" validate:"required_if=Enabled true"`
}

// Default returns the built-in development defaults.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Upstream: UpstreamConfig{
			BaseURL:   "http://localhost:9000/api",
			Timeout:   15 * time.Second,
			RateLimit: 10,
			UserID:    "user123",
		},
		Cache: CacheConfig{
			Backend:   "memory",
			DetailTTL: 24 * time.Hour,
			MaxItems:  10000,
		},
		State: StateConfig{
			Path: "kgexplorer.db",
		},
		Session: SessionConfig{
			IdleTTL:       2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
	}
}

// Load builds the configuration from defaults, the file named by
// KGEXPLORER_CONFIG (if set) and environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("KGEXPLORER_CONFIG"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = Environment(v)
	}
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	cfg.Upstream.BaseURL = getEnv("UPSTREAM_BASE_URL", cfg.Upstream.BaseURL)
	cfg.Upstream.Timeout = getEnvDuration("UPSTREAM_TIMEOUT", cfg.Upstream.Timeout)
	cfg.Upstream.RateLimit = getEnvFloat("UPSTREAM_RATE_LIMIT", cfg.Upstream.RateLimit)
	cfg.Upstream.UserID = getEnv("UPSTREAM_USER_ID", cfg.Upstream.UserID)

	cfg.Cache.Backend = getEnv("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.RedisURL = getEnv("REDIS_URL", cfg.Cache.RedisURL)
	cfg.Cache.DetailTTL = getEnvDuration("DETAIL_CACHE_TTL", cfg.Cache.DetailTTL)
	cfg.Cache.MaxItems = getEnvInt("CACHE_MAX_ITEMS", cfg.Cache.MaxItems)

	cfg.State.Path = getEnv("STATE_DB_PATH", cfg.State.Path)

	cfg.Session.IdleTTL = getEnvDuration("SESSION_IDLE_TTL", cfg.Session.IdleTTL)
	cfg.Session.SweepInterval = getEnvDuration("SESSION_SWEEP_INTERVAL", cfg.Session.SweepInterval)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = getEnv("OTLP_ENDPOINT", cfg.Tracing.Endpoint)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
