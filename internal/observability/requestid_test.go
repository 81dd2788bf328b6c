package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDMiddlewareMintsID(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/models", nil))

	if seen == "" {
		t.Fatal("handler should see a request ID in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header = %q, context = %q", got, seen)
	}
}

func TestRequestIDMiddlewareHonorsInbound(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "client-id-123" {
		t.Errorf("inbound id not honored, got %q", got)
	}
}

func TestSanitizeRequestID(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"abc-123_X.y", true},
		{"", false},
		{"has space", false},
		{"has;semicolon", false},
		{strings.Repeat("a", maxRequestIDLen+1), false},
	}
	for _, tt := range tests {
		if _, ok := sanitizeRequestID(tt.in); ok != tt.ok {
			t.Errorf("sanitizeRequestID(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Errorf("parseLevel(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
