package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.Mode != "static" {
		t.Errorf("default catalog mode = %s, want static", cfg.Catalog.Mode)
	}
	if !cfg.Routing.UseOpenRouter {
		t.Error("use_openrouter should default to true")
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("default allowed origins = %v, want [*]", cfg.Server.AllowedOrigins)
	}
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Models = ModelsConfig{
		DefaultModel: "gpt-oss-20b",
		Entries: []ModelEntry{
			{ID: "gpt-oss-20b", Provider: "OpenRouter", Category: "Free", ContextLength: 8192},
		},
	}
	return cfg
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"static without entries", func(c *Config) { c.Models.Entries = nil }, true},
		{"http without url", func(c *Config) { c.Catalog.Mode = "http" }, true},
		{"http with url", func(c *Config) {
			c.Catalog.Mode = "http"
			c.Catalog.URL = "http://localhost:8000/api/models"
		}, false},
		{"unknown mode", func(c *Config) { c.Catalog.Mode = "grpc" }, true},
		{"provider without name", func(c *Config) {
			c.Providers = []ProviderEntry{{Type: "openrouter"}}
		}, true},
		{"provider without type", func(c *Config) {
			c.Providers = []ProviderEntry{{Name: "OpenRouter"}}
		}, true},
		{"bad model entry", func(c *Config) {
			c.Models.Entries = append(c.Models.Entries, ModelEntry{ID: "x", Provider: "P", Category: "Free", ContextLength: 0})
		}, true},
		{"negative rpm", func(c *Config) { c.RateLimit.RequestsPerMinute = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_OPENROUTER_KEY", "sk-or-test")

	content := `
server:
  port: 9090
  allowed_origins: ["http://localhost:5173"]
catalog:
  mode: static
  ttl: 30s
providers:
  - name: OpenRouter
    type: openrouter
    api_key: ${TEST_OPENROUTER_KEY}
models:
  default_model: gpt-oss-20b
  entries:
    - id: gpt-oss-20b
      provider: OpenRouter
      category: Free
      context_length: 8192
routing:
  use_openrouter: true
  fallback_model: gemini-2.0-flash
  reflection_model: gpt-oss-20b
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Catalog.TTL != 30*time.Second {
		t.Errorf("ttl = %v, want 30s", cfg.Catalog.TTL)
	}
	if cfg.Providers[0].APIKey != "sk-or-test" {
		t.Errorf("api key = %q, env expansion failed", cfg.Providers[0].APIKey)
	}
	if cfg.Routing.FallbackModel != "gemini-2.0-flash" {
		t.Errorf("fallback model = %s", cfg.Routing.FallbackModel)
	}
	if cfg.Routing.ReflectionModel != "gpt-oss-20b" {
		t.Errorf("reflection model = %s", cfg.Routing.ReflectionModel)
	}

	descs := cfg.Descriptors()
	if len(descs) != 1 || descs[0].DisplayName != "gpt-oss-20b" {
		t.Errorf("Descriptors() = %+v; display name should default to id", descs)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("missing file should error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("malformed yaml should error")
	}
}
