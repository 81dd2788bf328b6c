package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const managerTestConfig = `
server:
  port: 8080
models:
  default_model: gpt-oss-20b
  entries:
    - id: gpt-oss-20b
      provider: OpenRouter
      category: Free
      context_length: 8192
`

func TestManagerGet(t *testing.T) {
	path := writeConfigFile(t, managerTestConfig)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mgr, err := NewManager(path, logger)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	cfg := mgr.Get()
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Models.DefaultModel != "gpt-oss-20b" {
		t.Errorf("default model = %s", cfg.Models.DefaultModel)
	}
}

func TestManagerRejectsInvalidInitialConfig(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 0\n")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := NewManager(path, logger); err == nil {
		t.Error("invalid initial config should fail")
	}
}

func TestManagerReloadKeepsCurrentOnError(t *testing.T) {
	path := writeConfigFile(t, managerTestConfig)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mgr, err := NewManager(path, logger)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	// Break the file then trigger a reload directly.
	if err := os.WriteFile(path, []byte("server: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	mgr.reload()

	if mgr.Get().Server.Port != 8080 {
		t.Error("reload of a broken file must keep the current config")
	}
}

func TestManagerReloadNotifiesListeners(t *testing.T) {
	path := writeConfigFile(t, managerTestConfig)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mgr, err := NewManager(path, logger)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	notified := make(chan *Config, 1)
	mgr.OnChange(func(c *Config) { notified <- c })

	updated := `
server:
  port: 9090
models:
  default_model: gpt-oss-20b
  entries:
    - id: gpt-oss-20b
      provider: OpenRouter
      category: Free
      context_length: 8192
`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}
	mgr.reload()

	select {
	case cfg := <-notified:
		if cfg.Server.Port != 9090 {
			t.Errorf("listener got port %d, want 9090", cfg.Server.Port)
		}
	case <-time.After(time.Second):
		t.Fatal("listener not notified")
	}

	if mgr.Get().Server.Port != 9090 {
		t.Error("Get() should observe the swapped config")
	}
}
