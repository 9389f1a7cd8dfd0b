package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leofalp/promptcraft/providers/ai"
)

func TestNew(t *testing.T) {
	provider := New()
	if provider == nil {
		t.Fatal("New() returned nil")
	}
	if provider.baseURL != defaultBaseURL {
		t.Errorf("expected baseURL %q, got %q", defaultBaseURL, provider.baseURL)
	}
	if provider.ID() != ai.ProviderGemini {
		t.Errorf("expected ID %q, got %q", ai.ProviderGemini, provider.ID())
	}
}

func TestWithBaseURL_TrimsSlash(t *testing.T) {
	provider := New().WithBaseURL("https://custom.api.com/")
	if provider.baseURL != "https://custom.api.com" {
		t.Errorf("expected baseURL %q, got %q", "https://custom.api.com", provider.baseURL)
	}
}

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		wantModel string
	}{
		{"default model when blank", "", defaultModel},
		{"explicit model", "gemini-1.5-pro", "gemini-1.5-pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := New().BuildRequest(context.Background(),
				ai.EnhanceRequest{Prompt: "A cat", Instruction: "Rewrite it."},
				ai.Settings{Provider: ai.ProviderGemini, APIKey: "test-key", Model: tt.model},
			)
			if err != nil {
				t.Fatalf("BuildRequest failed: %v", err)
			}

			if req.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", req.Method)
			}
			if want := "/v1beta/models/" + tt.wantModel + ":generateContent"; req.URL.Path != want {
				t.Errorf("expected path %q, got %q", want, req.URL.Path)
			}
			if got := req.URL.Query().Get("key"); got != "test-key" {
				t.Errorf("expected key query param, got %q", got)
			}
			// Key must not leak into headers.
			if req.Header.Get("Authorization") != "" || req.Header.Get("x-goog-api-key") != "" {
				t.Errorf("unexpected auth header: %v", req.Header)
			}

			body, _ := io.ReadAll(req.Body)
			var decoded generateContentRequest
			if err := json.Unmarshal(body, &decoded); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if len(decoded.Contents) != 1 || len(decoded.Contents[0].Parts) != 1 {
				t.Fatalf("expected one content with one part, got %s", body)
			}
			if got := decoded.Contents[0].Parts[0].Text; got != "Rewrite it.\n\nA cat" {
				t.Errorf("expected instruction followed by prompt, got %q", got)
			}
		})
	}
}

func serve(t *testing.T, status int, body string) *http.Response {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	res, err := server.Client().Post(server.URL, "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func TestParseResponse(t *testing.T) {
	res := serve(t, http.StatusOK, `{
		"candidates": [{
			"content": {"role": "model", "parts": [{"text": "A fluffy cat in golden light"}, {"text": "ignored"}]},
			"finishReason": "STOP"
		}]
	}`)

	text, err := New().ParseResponse(res)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}
	if text != "A fluffy cat in golden light" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no candidates", `{"candidates": []}`},
		{"blocked prompt", `{"promptFeedback": {"blockReason": "SAFETY"}}`},
		{"no content", `{"candidates": [{"finishReason": "SAFETY"}]}`},
		{"no parts", `{"candidates": [{"content": {"parts": []}}]}`},
		{"part without text", `{"candidates": [{"content": {"parts": [{}]}}]}`},
		{"not json", `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().ParseResponse(serve(t, http.StatusOK, tt.body))
			if ai.KindOf(err) != ai.KindMalformed {
				t.Errorf("expected malformed response, got %v", err)
			}
		})
	}
}

func TestParseResponse_ProviderError(t *testing.T) {
	res := serve(t, http.StatusBadRequest, `{"error": {"message": "API key not valid"}}`)

	_, err := New().ParseResponse(res)
	providerErr, ok := err.(*ai.ProviderError)
	if !ok {
		t.Fatalf("expected *ai.ProviderError, got %T (%v)", err, err)
	}
	if providerErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", providerErr.Status)
	}
	if !strings.Contains(providerErr.Body, "API key not valid") {
		t.Errorf("expected body to be preserved, got %q", providerErr.Body)
	}
}
