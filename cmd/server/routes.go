package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modelmux/modelmux/internal/config"
)

func buildMux(cfg *config.Config, srv *server) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", srv.handleLiveness)
	mux.HandleFunc("GET /health/ready", srv.handleReadiness)

	mux.HandleFunc("GET /api/models", srv.handleListModels)
	mux.HandleFunc("GET /api/models/resolve", srv.handleResolve)
	mux.HandleFunc("POST /api/catalog/refresh", srv.handleRefreshCatalog)
	mux.HandleFunc("GET /api/tasks/{task}/model", srv.handleTaskModel)
	mux.HandleFunc("POST /api/factory/reset-credits", srv.handleResetCredits)

	mux.HandleFunc("POST /v1/chat/completions", srv.handleChatCompletions)

	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.Handler())
	}

	return mux
}
