// Package gemini implements the Google Gemini provider binding. It maps the
// unified chat format onto Gemini's generateContent API.
package gemini

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/modelmux/modelmux/internal/provider"
	rerrors "github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

const (
	// ProviderName is the identifier carried by catalog descriptors.
	ProviderName = "Gemini"

	// DefaultBaseURL is the Google AI Studio API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// apiVersion is the Gemini API version in request paths.
	apiVersion = "v1beta"

	defaultTimeout  = 60 * time.Second
	maxErrorBodyLen = 4096
)

// Client implements provider.ChatClient against the Gemini API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Gemini chat client.
func New(cfg provider.Config) (provider.ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", ProviderName)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// ChatCompletion issues a single generateContent request.
func (c *Client) ChatCompletion(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, apiVersion, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, rerrors.NewProviderError(ProviderName, req.Model,
			http.StatusServiceUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.mapError(resp, req.Model)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, rerrors.NewProviderError(ProviderName, req.Model,
			http.StatusBadGateway, "decode response: "+err.Error())
	}
	return convertResponse(&out, req.Model), nil
}

func buildRequest(req *types.ChatRequest) *geminiRequest {
	out := &geminiRequest{}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			// Gemini carries system prompts out of band.
			out.SystemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: msg.Content}},
			}
		case "assistant":
			out.Contents = append(out.Contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		default:
			out.Contents = append(out.Contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})
		}
	}

	if req.Temperature != nil || req.TopP != nil || req.MaxTokens > 0 || len(req.Stop) > 0 {
		out.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxTokens,
			StopSequences:   req.Stop,
		}
	}

	return out
}

func convertResponse(resp *geminiResponse, model string) *types.ChatResponse {
	out := &types.ChatResponse{
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}

	for i, cand := range resp.Candidates {
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
		out.Choices = append(out.Choices, types.Choice{
			Index: i,
			Message: types.ChatMessage{
				Role:    "assistant",
				Content: text.String(),
			},
			FinishReason: mapFinishReason(cand.FinishReason),
		})
	}

	if resp.UsageMetadata != nil {
		out.Usage = &types.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return out
}

func mapFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return "stop"
	case "MAX_TOKENS":
		return "length"
	case "SAFETY", "RECITATION":
		return "content_filter"
	default:
		return strings.ToLower(reason)
	}
}

func (c *Client) mapError(resp *http.Response, model string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return rerrors.NewProviderError(ProviderName, model, resp.StatusCode, message)
}
