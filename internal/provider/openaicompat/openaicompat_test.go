package openaicompat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/modelmux/modelmux/internal/provider"
	rerrors "github.com/modelmux/modelmux/pkg/errors"
	"github.com/modelmux/modelmux/pkg/types"
)

func testInfo() Info {
	return Info{
		Name:           "OpenRouter",
		DefaultBaseURL: "https://openrouter.ai/api/v1",
		ExtraHeaders:   map[string]string{"X-Title": "modelmux"},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(provider.Config{}, testInfo()); err == nil {
		t.Fatal("New() without api key should error")
	}
}

func TestChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing bearer token")
		}
		if r.Header.Get("X-Title") != "modelmux" {
			t.Error("missing extra header")
		}

		var req types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-oss-20b" {
			t.Errorf("model = %s", req.Model)
		}

		_ = json.NewEncoder(w).Encode(types.ChatResponse{
			ID:     "cmpl-1",
			Object: "chat.completion",
			Model:  "gpt-oss-20b",
			Choices: []types.Choice{
				{Message: types.ChatMessage{Role: "assistant", Content: "hello"}, FinishReason: "stop"},
			},
		})
	}))
	defer server.Close()

	c, err := New(provider.Config{APIKey: "test-key", BaseURL: server.URL}, testInfo())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := c.ChatCompletion(context.Background(), &types.ChatRequest{
		Model:    "gpt-oss-20b",
		Messages: []types.ChatMessage{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}
	if resp.Choices[0].Message.Content != "hello" {
		t.Errorf("content = %q", resp.Choices[0].Message.Content)
	}
}

func TestChatCompletionErrorEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantInMsg  string
		wantCredit bool
	}{
		{"openai envelope", http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`, "invalid key", false},
		{"credit exhausted", http.StatusPaymentRequired, `{"error":{"message":"insufficient credits"}}`, "insufficient credits", true},
		{"raw body", http.StatusBadGateway, `upstream blew up`, "upstream blew up", false},
		{"empty body", http.StatusServiceUnavailable, ``, http.StatusText(http.StatusServiceUnavailable), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := New(provider.Config{APIKey: "test-key", BaseURL: server.URL}, testInfo())
			_, err := c.ChatCompletion(context.Background(), &types.ChatRequest{
				Model:    "gpt-oss-20b",
				Messages: []types.ChatMessage{{Role: "user", Content: "hi"}},
			})
			if err == nil {
				t.Fatal("expected error")
			}

			var re *rerrors.ResolutionError
			if !errors.As(err, &re) {
				t.Fatalf("error type = %T", err)
			}
			if re.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", re.StatusCode, tt.status)
			}
			if rerrors.IsCreditExhausted(err) != tt.wantCredit {
				t.Errorf("IsCreditExhausted = %v, want %v", rerrors.IsCreditExhausted(err), tt.wantCredit)
			}
		})
	}
}
