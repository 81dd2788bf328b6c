// Package openaicompat provides a base implementation for OpenAI-compatible
// chat providers. OpenRouter and most aggregators follow OpenAI's request
// format with minor variations; this package holds the shared HTTP plumbing.
package openaicompat

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
	defaultTimeout  = 60 * time.Second
	maxErrorBodyLen = 4096
)

// Info contains the per-provider constants layered over the shared core.
type Info struct {
	// Name is the provider identifier as used in catalog descriptors.
	Name string

	// DefaultBaseURL is the API endpoint used when config omits one.
	DefaultBaseURL string

	// ChatEndpoint is the completions path. Default: "/chat/completions".
	ChatEndpoint string

	// ExtraHeaders are added to every request.
	ExtraHeaders map[string]string
}

// Client implements provider.ChatClient against an OpenAI-compatible API.
type Client struct {
	info    Info
	apiKey  string
	baseURL string
	headers map[string]string
	client  *http.Client
}

// New creates an OpenAI-compatible chat client.
func New(cfg provider.Config, info Info) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", info.Name)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = info.DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Client{
		info:    info,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return c.info.Name
}

// ChatCompletion issues a single non-streaming completion request.
func (c *Client) ChatCompletion(ctx context.Context, req *types.ChatRequest) (*types.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.info.ChatEndpoint
	if endpoint == "" {
		endpoint = "/chat/completions"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.info.ExtraHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, rerrors.NewProviderError(c.info.Name, req.Model,
			http.StatusServiceUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.mapError(resp, req.Model)
	}

	var out types.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, rerrors.NewProviderError(c.info.Name, req.Model,
			http.StatusBadGateway, "decode response: "+err.Error())
	}
	return &out, nil
}

func (c *Client) mapError(resp *http.Response, model string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	// OpenAI-style error envelope; fall back to the raw body.
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

	return rerrors.NewProviderError(c.info.Name, model, resp.StatusCode, message)
}
