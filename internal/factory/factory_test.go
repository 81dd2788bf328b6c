package factory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelmux/modelmux/internal/catalog"
	"github.com/modelmux/modelmux/internal/provider"
	"github.com/modelmux/modelmux/internal/selector"
	rerrors "github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

type stubClient struct{ name string }

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) ChatCompletion(_ context.Context, _ *types.ChatRequest) (*types.ChatResponse, error) {
	return &types.ChatResponse{}, nil
}

func newSelector(t *testing.T, providers ...string) *selector.Selector {
	t.Helper()
	models := []types.ModelDescriptor{
		{ID: "gpt-oss-20b", DisplayName: "gpt-oss-20b", ProviderName: "OpenRouter", Category: types.CategoryFree, ContextLength: 8192},
		{ID: "llama-3.1-8b-instruct", DisplayName: "Llama 3.1 8B", ProviderName: "OpenRouter", Category: types.CategoryFree, ContextLength: 8192},
		{ID: "gemini-2.0-flash", DisplayName: "Gemini 2.0 Flash", ProviderName: "Gemini", Category: types.CategoryPaid, ContextLength: 8192},
	}
	src, err := catalog.NewStaticSource(models, "gpt-oss-20b")
	require.NoError(t, err)

	clients := make([]provider.ChatClient, 0, len(providers))
	for _, p := range providers {
		clients = append(clients, &stubClient{name: p})
	}
	bindings, err := provider.NewBindings(clients...)
	require.NoError(t, err)

	sel := selector.New(src, bindings, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, sel.Refresh(context.Background()))
	return sel
}

func newFactory(t *testing.T, cfg Config, providers ...string) *Factory {
	t.Helper()
	return New(newSelector(t, providers...), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClientForUsesTaskModel(t *testing.T) {
	f := newFactory(t, Config{
		QueryGenerationModel: "llama-3.1-8b-instruct",
		AnsweringModel:       "gemini-2.0-flash",
	}, "OpenRouter", "Gemini")

	res, err := f.ClientFor(TaskQueryGeneration)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-8b-instruct", res.Descriptor.ID)

	res, err = f.ClientFor(TaskAnswering)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", res.Descriptor.ID)

	// Unpinned task falls through to the catalog default.
	res, err = f.ClientFor(TaskReflection)
	require.NoError(t, err)
	assert.Equal(t, "gpt-oss-20b", res.Descriptor.ID)
}

func TestClientForRejectsUnknownTask(t *testing.T) {
	f := newFactory(t, Config{}, "OpenRouter", "Gemini")
	_, err := f.ClientFor(Task("summarize"))
	require.Error(t, err)
}

func TestClientForDivertsUnknownModelToFallback(t *testing.T) {
	f := newFactory(t, Config{
		ReflectionModel: "nonexistent-model",
		FallbackModel:   "gemini-2.0-flash",
	}, "Gemini")

	res, err := f.ClientFor(TaskReflection)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", res.Descriptor.ID)
	assert.Equal(t, "Gemini", res.Provider)
}

func TestClientForReturnsCauseWhenFallbackUnresolvable(t *testing.T) {
	// Only OpenRouter is bound, so the Gemini fallback cannot be served.
	f := newFactory(t, Config{
		ReflectionModel: "nonexistent-model",
		FallbackModel:   "gemini-2.0-flash",
	})

	_, err := f.ClientFor(TaskReflection)
	require.Error(t, err)
	assert.Equal(t, rerrors.ReasonUnknownModel, rerrors.ReasonOf(err))
}

func TestCreditExhaustionDivertsOpenRouterTasks(t *testing.T) {
	f := newFactory(t, Config{FallbackModel: "gemini-2.0-flash"}, "OpenRouter", "Gemini")

	res, err := f.ClientFor(TaskAnswering)
	require.NoError(t, err)
	assert.Equal(t, "OpenRouter", res.Provider)

	credErr := rerrors.NewProviderError("OpenRouter", "gpt-oss-20b", 402, "insufficient credits")
	assert.True(t, f.ReportProviderError(credErr))
	assert.False(t, f.ReportProviderError(credErr), "second report must not re-trip the flag")
	assert.True(t, f.CreditsExhausted())

	res, err = f.ClientFor(TaskAnswering)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", res.Descriptor.ID)
	assert.Equal(t, "Gemini", res.Provider)

	f.ResetCreditFlag()
	assert.False(t, f.CreditsExhausted())

	res, err = f.ClientFor(TaskAnswering)
	require.NoError(t, err)
	assert.Equal(t, "OpenRouter", res.Provider)
}

func TestReportProviderErrorIgnoresNonCreditFailures(t *testing.T) {
	f := newFactory(t, Config{}, "OpenRouter", "Gemini")

	assert.False(t, f.ReportProviderError(rerrors.NewProviderError("OpenRouter", "gpt-oss-20b", 500, "boom")))
	assert.False(t, f.ReportProviderError(nil))
	assert.False(t, f.CreditsExhausted())
}

func TestDefaultFallbackModelApplied(t *testing.T) {
	f := New(newSelector(t, "OpenRouter", "Gemini"), Config{}, nil)
	assert.Equal(t, DefaultFallbackModel, f.cfg.FallbackModel)
}
