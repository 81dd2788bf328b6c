package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/modelmux/modelmux/internal/config"
	"github.com/modelmux/modelmux/internal/metrics"
	"github.com/modelmux/modelmux/internal/observability"
)

func buildMiddlewareStack(cfg *config.Config, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := newClientLimiter(cfg.RateLimit)

	return func(next http.Handler) http.Handler {
		handler := next
		handler = loggingMiddleware(logger, handler)
		handler = observability.RequestIDMiddleware(handler)
		if limiter != nil {
			handler = limiter.Middleware(handler)
		}
		handler = corsMiddleware(cfg.Server.AllowedOrigins, handler)
		return handler
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		metrics.HTTPRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.status)).Inc()
		logger.Info("request",
			"request_id", observability.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
