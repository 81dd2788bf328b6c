package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	modelmux "github.com/modelmux/modelmux"
	"github.com/modelmux/modelmux/internal/factory"
	"github.com/modelmux/modelmux/internal/observability"
	"github.com/modelmux/modelmux/internal/provider"
	"github.com/modelmux/modelmux/internal/selector"
	rerrors "github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

type server struct {
	sel      *selector.Selector
	fac      *factory.Factory
	bindings *provider.Bindings
	logger   *slog.Logger
}

func newServer(sel *selector.Selector, fac *factory.Factory, bindings *provider.Bindings, logger *slog.Logger) *server {
	return &server{sel: sel, fac: fac, bindings: bindings, logger: logger}
}

type errorBody struct {
	Reason   rerrors.Reason `json:"reason"`
	Model    string         `json:"model,omitempty"`
	Provider string         `json:"provider,omitempty"`
	Message  string         `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var resErr *rerrors.ResolutionError
	if errors.As(err, &resErr) {
		s.logger.Warn("request failed",
			"request_id", observability.RequestIDFromContext(r.Context()),
			"reason", string(resErr.Reason),
			"model", resErr.Model,
			"provider", resErr.Provider,
		)
		s.writeJSON(w, resErr.HTTPStatusCode(), errorEnvelope{Error: errorBody{
			Reason:   resErr.Reason,
			Model:    resErr.Model,
			Provider: resErr.Provider,
			Message:  resErr.Message,
		}})
		return
	}

	s.logger.Error("request failed",
		"request_id", observability.RequestIDFromContext(r.Context()),
		"error", err,
	)
	s.writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{
		Reason:  "internal_error",
		Message: "internal server error",
	}})
}

func (s *server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness reports ready once a catalog snapshot exists. A degraded
// snapshot (last refresh failed) still serves traffic.
func (s *server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	cat, degraded := s.sel.Current()
	if cat == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no catalog"})
		return
	}
	status := "ok"
	if degraded {
		status = "degraded"
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// handleListModels serves the current catalog snapshot.
func (s *server) handleListModels(w http.ResponseWriter, r *http.Request) {
	cat, degraded := s.sel.Current()
	if cat == nil {
		s.writeError(w, r, rerrors.NewCatalogUnavailable("no catalog snapshot available"))
		return
	}
	if degraded {
		w.Header().Set("X-Catalog-Degraded", "true")
	}
	s.writeJSON(w, http.StatusOK, cat)
}

type resolveResponse struct {
	Model    types.ModelDescriptor `json:"model"`
	Provider string                `json:"provider"`
}

// handleResolve exposes raw resolution without any fallback: the outcome is
// exactly what the policy decides for the requested id.
func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	cat, _ := s.sel.Current()
	res, err := modelmux.Resolve(r.URL.Query().Get("model"), cat, s.bindings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resolveResponse{Model: res.Descriptor, Provider: res.Provider})
}

type taskModelResponse struct {
	Task     string                `json:"task"`
	Model    types.ModelDescriptor `json:"model"`
	Provider string                `json:"provider"`
}

// handleTaskModel reports which model the factory would hand to a task,
// fallback included.
func (s *server) handleTaskModel(w http.ResponseWriter, r *http.Request) {
	task := factory.Task(r.PathValue("task"))
	if !task.Valid() {
		s.writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
			Reason:  "unknown_task",
			Message: "task must be one of query_generation, reflection, answering",
		}})
		return
	}
	res, err := s.fac.ClientFor(task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, taskModelResponse{
		Task:     string(task),
		Model:    res.Descriptor,
		Provider: res.Provider,
	})
}

func (s *server) handleResetCredits(w http.ResponseWriter, _ *http.Request) {
	s.fac.ResetCreditFlag()
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if err := s.sel.Refresh(ctx); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleChatCompletions resolves the requested model and forwards the chat
// request to the bound provider. Provider failures are reported to the
// factory so credit exhaustion trips the divert flag.
func (s *server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
			Reason:  "invalid_request",
			Message: "malformed request body",
		}})
		return
	}
	if err := types.ValidateModelName(req.Model); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
			Reason:  "invalid_request",
			Message: err.Error(),
		}})
		return
	}

	res, err := s.sel.Choose(req.Model)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req.Model = res.Descriptor.ID
	resp, err := res.Client.ChatCompletion(r.Context(), &req)
	if err != nil {
		s.fac.ReportProviderError(err)
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
