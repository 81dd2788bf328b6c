// Package config provides configuration loading with hot-reload support.
// It uses fsnotify to watch for file changes and atomic pointer swaps for
// zero-downtime updates.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modelmux/modelmux/pkg/types"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Providers []ProviderEntry `yaml:"providers"`
	Models    ModelsConfig    `yaml:"models"`
	Routing   RoutingConfig   `yaml:"routing"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// CatalogConfig selects where the model catalog comes from.
type CatalogConfig struct {
	// Mode is "static" (catalog assembled from the models section) or
	// "http" (catalog fetched from URL).
	Mode    string        `yaml:"mode"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	TTL     time.Duration `yaml:"ttl"`
}

// ProviderEntry defines a single provider binding.
type ProviderEntry struct {
	Name    string            `yaml:"name"`
	Type    string            `yaml:"type"`
	APIKey  string            `yaml:"api_key"`
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers"`
	Timeout int               `yaml:"timeout_seconds"`
}

// ModelsConfig declares the static catalog content.
type ModelsConfig struct {
	DefaultModel string       `yaml:"default_model"`
	Entries      []ModelEntry `yaml:"entries"`
}

// ModelEntry is one static catalog row.
type ModelEntry struct {
	ID            string `yaml:"id"`
	DisplayName   string `yaml:"name"`
	Provider      string `yaml:"provider"`
	Category      string `yaml:"category"`
	ContextLength int    `yaml:"context_length"`
	Description   string `yaml:"description"`
}

// Descriptor converts the entry to a catalog descriptor.
func (e ModelEntry) Descriptor() types.ModelDescriptor {
	name := e.DisplayName
	if name == "" {
		name = e.ID
	}
	return types.ModelDescriptor{
		ID:            e.ID,
		DisplayName:   name,
		ProviderName:  e.Provider,
		Category:      types.Category(e.Category),
		ContextLength: e.ContextLength,
		Description:   e.Description,
	}
}

// RoutingConfig contains resolution policy settings.
type RoutingConfig struct {
	// UseOpenRouter gates the OpenRouter binding: when false the binding
	// is not constructed, so OpenRouter-only models resolve to
	// no_provider_configured and the factory falls back.
	UseOpenRouter bool `yaml:"use_openrouter"`

	// FallbackModel is the model the task factory diverts to when the
	// configured model fails to resolve.
	FallbackModel string `yaml:"fallback_model"`

	// Task model overrides.
	QueryGenerationModel string `yaml:"query_generation_model"`
	ReflectionModel      string `yaml:"reflection_model"`
	AnsweringModel       string `yaml:"answering_model"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RateLimitConfig defines per-client rate limiting for the HTTP surface.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	BurstSize         int  `yaml:"burst_size"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Catalog: CatalogConfig{
			Mode:    "static",
			Timeout: 10 * time.Second,
			TTL:     5 * time.Minute,
		},
		Routing: RoutingConfig{
			UseOpenRouter: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 60,
			BurstSize:         10,
		},
	}
}

// LoadFromFile reads and parses a YAML configuration file.
// Environment variables in the format ${VAR_NAME} are expanded.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Catalog.Mode {
	case "static":
		if len(c.Models.Entries) == 0 {
			return fmt.Errorf("catalog.mode static requires models.entries")
		}
	case "http":
		if c.Catalog.URL == "" {
			return fmt.Errorf("catalog.mode http requires catalog.url")
		}
	default:
		return fmt.Errorf("catalog.mode must be static or http, got %q", c.Catalog.Mode)
	}

	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider[%d]: name is required", i)
		}
		if p.Type == "" {
			return fmt.Errorf("provider[%d] %q: type is required", i, p.Name)
		}
		if p.Timeout < 0 {
			return fmt.Errorf("provider[%d] %q: timeout cannot be negative", i, p.Name)
		}
	}

	for i, m := range c.Models.Entries {
		if err := m.Descriptor().Validate(); err != nil {
			return fmt.Errorf("models.entries[%d]: %w", i, err)
		}
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute cannot be negative")
	}

	return nil
}

// Descriptors returns the static catalog rows as descriptors.
func (c *Config) Descriptors() []types.ModelDescriptor {
	out := make([]types.ModelDescriptor, 0, len(c.Models.Entries))
	for _, e := range c.Models.Entries {
		out = append(out, e.Descriptor())
	}
	return out
}
