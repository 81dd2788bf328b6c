// Package factory chooses a chat client for a pipeline task. Each task
// (query generation, reflection, answering) can be pinned to its own model
// through configuration; when the pinned model cannot be served, or when a
// provider has reported exhausted credits, the factory diverts to a
// configured fallback model instead of failing the task.
package factory

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	modelmux "github.com/modelmux/modelmux"
	"github.com/modelmux/modelmux/internal/provider/openrouter"
	"github.com/modelmux/modelmux/internal/selector"
	rerrors "github.com/modelmux/modelmux/pkg/errors"
)

// DefaultFallbackModel is used when no fallback is configured.
const DefaultFallbackModel = "gemini-2.0-flash"

// Task identifies a pipeline stage that needs its own model choice.
type Task string

const (
	TaskQueryGeneration Task = "query_generation"
	TaskReflection      Task = "reflection"
	TaskAnswering       Task = "answering"
)

// Valid reports whether the task is one of the known stages.
func (t Task) Valid() bool {
	switch t {
	case TaskQueryGeneration, TaskReflection, TaskAnswering:
		return true
	}
	return false
}

// Config pins models to tasks. Empty fields fall through to the catalog
// default via the selector.
type Config struct {
	QueryGenerationModel string
	ReflectionModel      string
	AnsweringModel       string
	FallbackModel        string
}

// Factory resolves task-specific chat clients on top of a Selector.
type Factory struct {
	selector *selector.Selector
	cfg      Config
	logger   *slog.Logger

	// skipCredits is set when a provider reports exhausted credits (HTTP
	// 402). While set, resolutions landing on OpenRouter are diverted to
	// the fallback model.
	skipCredits atomic.Bool
}

// New builds a Factory. The logger may be nil.
func New(sel *selector.Selector, cfg Config, logger *slog.Logger) *Factory {
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = DefaultFallbackModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{selector: sel, cfg: cfg, logger: logger}
}

// taskModel returns the configured model id for a task, or "" to use the
// catalog default.
func (f *Factory) taskModel(task Task) string {
	switch task {
	case TaskQueryGeneration:
		return f.cfg.QueryGenerationModel
	case TaskReflection:
		return f.cfg.ReflectionModel
	case TaskAnswering:
		return f.cfg.AnsweringModel
	}
	return ""
}

// ClientFor resolves the model bound to the given task. If the task's model
// cannot be served, or resolution lands on OpenRouter while credits are
// reported exhausted, the fallback model is tried before giving up.
func (f *Factory) ClientFor(task Task) (modelmux.Resolution, error) {
	if !task.Valid() {
		return modelmux.Resolution{}, fmt.Errorf("unknown task %q", task)
	}

	res, err := f.selector.Choose(f.taskModel(task))
	if err != nil {
		switch rerrors.ReasonOf(err) {
		case rerrors.ReasonUnknownModel, rerrors.ReasonNoProviderConfigured:
			return f.divert(task, err)
		}
		return modelmux.Resolution{}, err
	}

	if f.skipCredits.Load() && res.Provider == openrouter.ProviderName {
		f.logger.Warn("diverting task away from provider with exhausted credits",
			"task", string(task),
			"model", res.Descriptor.ID,
			"provider", res.Provider,
		)
		return f.divert(task, rerrors.NewNoProviderConfigured(res.Descriptor.ID, res.Provider))
	}

	return res, nil
}

// divert retries resolution with the fallback model. The original error is
// returned when the fallback cannot be served either.
func (f *Factory) divert(task Task, cause error) (modelmux.Resolution, error) {
	fb, err := f.selector.Choose(f.cfg.FallbackModel)
	if err != nil {
		return modelmux.Resolution{}, cause
	}
	f.logger.Info("task diverted to fallback model",
		"task", string(task),
		"fallback_model", fb.Descriptor.ID,
		"provider", fb.Provider,
	)
	return fb, nil
}

// ReportProviderError records a provider failure observed by a caller. A
// credit-exhaustion error (HTTP 402) sets the skip flag so later task
// resolutions avoid OpenRouter until ResetCreditFlag is called. It returns
// true when the flag transitions from clear to set.
func (f *Factory) ReportProviderError(err error) bool {
	if !rerrors.IsCreditExhausted(err) {
		return false
	}
	if f.skipCredits.Swap(true) {
		return false
	}
	f.logger.Warn("provider credits exhausted, diverting future tasks", "error", err)
	return true
}

// ResetCreditFlag clears the credit-exhaustion flag so OpenRouter models
// become eligible again.
func (f *Factory) ResetCreditFlag() {
	if f.skipCredits.Swap(false) {
		f.logger.Info("credit-exhaustion flag reset")
	}
}

// CreditsExhausted reports whether the skip flag is currently set.
func (f *Factory) CreditsExhausted() bool {
	return f.skipCredits.Load()
}
