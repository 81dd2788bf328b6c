// Package main is the entry point for the modelmux resolution server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	modelmux "github.com/modelmux/modelmux"
	"github.com/modelmux/modelmux/internal/catalog"
	"github.com/modelmux/modelmux/internal/config"
	"github.com/modelmux/modelmux/internal/factory"
	"github.com/modelmux/modelmux/internal/observability"
	"github.com/modelmux/modelmux/internal/provider"
	"github.com/modelmux/modelmux/internal/provider/gemini"
	"github.com/modelmux/modelmux/internal/provider/openrouter"
	"github.com/modelmux/modelmux/internal/selector"
	rerrors "github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfgManager, err := config.NewManager(*configPath, slog.Default())
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting modelmux", "version", modelmux.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cfgManager.Watch(ctx); err != nil {
		logger.Warn("config hot-reload disabled", "error", err)
	}

	registry := provider.NewRegistry()
	registry.RegisterFactory("openrouter", openrouter.New)
	registry.RegisterFactory("gemini", gemini.New)

	bindings, err := buildBindings(cfg, registry, logger)
	if err != nil {
		logger.Error("failed to build provider bindings", "error", err)
		os.Exit(1)
	}

	source, cached := buildSource(cfg, cfgManager)
	sel := selector.New(source, bindings, logger)
	defer sel.Close()

	refreshCtx, refreshCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := sel.Refresh(refreshCtx); err != nil {
		logger.Warn("initial catalog refresh failed, serving degraded", "error", err)
	}
	refreshCancel()

	fac := factory.New(sel, factory.Config{
		QueryGenerationModel: cfg.Routing.QueryGenerationModel,
		ReflectionModel:      cfg.Routing.ReflectionModel,
		AnsweringModel:       cfg.Routing.AnsweringModel,
		FallbackModel:        cfg.Routing.FallbackModel,
	}, logger)

	cfgManager.OnChange(func(next *config.Config) {
		if cached != nil {
			cached.Invalidate()
		}
		rctx, rcancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer rcancel()
		if err := sel.Refresh(rctx); err != nil {
			logger.Warn("catalog refresh after config change failed", "error", err)
		}
	})

	srv := newServer(sel, fac, bindings, logger)
	mux := buildMux(cfg, srv)

	handler := buildMiddlewareStack(cfg, logger)(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	cfgManager.Close()
	logger.Info("server stopped")
}

// buildBindings constructs one chat client per configured provider. A
// provider without an API key is skipped rather than failing startup, so
// models bound to it resolve to no_provider_configured and the task factory
// can divert. The OpenRouter binding additionally honors the
// routing.use_openrouter switch.
func buildBindings(cfg *config.Config, registry *provider.Registry, logger *slog.Logger) (*provider.Bindings, error) {
	clients := make([]provider.ChatClient, 0, len(cfg.Providers))
	for _, entry := range cfg.Providers {
		if entry.Type == "openrouter" && !cfg.Routing.UseOpenRouter {
			logger.Info("provider disabled by routing.use_openrouter", "name", entry.Name)
			continue
		}
		if entry.APIKey == "" {
			logger.Warn("provider has no API key, skipping binding", "name", entry.Name, "type", entry.Type)
			continue
		}
		client, err := registry.Create(provider.Config{
			Name:    entry.Name,
			Type:    entry.Type,
			APIKey:  entry.APIKey,
			BaseURL: entry.BaseURL,
			Headers: entry.Headers,
			Timeout: entry.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", entry.Name, err)
		}
		logger.Info("provider bound", "name", client.Name(), "type", entry.Type)
		clients = append(clients, client)
	}
	return provider.NewBindings(clients...)
}

// buildSource picks the catalog source per config. HTTP sources are wrapped
// in a TTL cache; the cache handle is returned so config reloads can
// invalidate it. Static sources re-read the live config on each fetch so a
// reloaded models section takes effect on the next refresh.
func buildSource(cfg *config.Config, mgr *config.Manager) (catalog.Source, *catalog.CachedSource) {
	if cfg.Catalog.Mode == "http" {
		httpSrc := catalog.NewHTTPSource(cfg.Catalog.URL, cfg.Catalog.Timeout)
		cached := catalog.NewCachedSource(httpSrc, cfg.Catalog.TTL)
		return cached, cached
	}
	return catalog.SourceFunc(func(ctx context.Context) (*types.Catalog, error) {
		current := mgr.Get()
		src, err := catalog.NewStaticSource(current.Descriptors(), current.Models.DefaultModel)
		if err != nil {
			return nil, rerrors.NewCatalogUnavailable(err.Error())
		}
		return src.Fetch(ctx)
	}), nil
}
