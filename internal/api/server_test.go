package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/promptcraft/core/history"
	"github.com/leofalp/promptcraft/core/prompt"
	"github.com/leofalp/promptcraft/core/settings"
	"github.com/leofalp/promptcraft/providers/ai"
)

type stubEnhancer struct {
	text    string
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubEnhancer) Enhance(ctx context.Context, promptText, instructionText string) (string, error) {
	if s.release != nil {
		s.started <- struct{}{}
		<-s.release
	}
	return s.text, s.err
}

type testServer struct {
	server   *Server
	settings *settings.MemoryStore
	prompts  *prompt.Store
}

func newTestServer(t *testing.T, enhancer *stubEnhancer) *testServer {
	t.Helper()
	store := settings.NewMemoryStore()
	prompts := prompt.NewStore()

	s, err := NewServer(":0", Options{
		Settings: store,
		Enhancer: enhancer,
		Prompts:  prompts,
		History:  history.New(10),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	return &testServer{server: s, settings: store, prompts: prompts}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNewServer_RequiresCollaborators(t *testing.T) {
	_, err := NewServer(":0", Options{Enhancer: &stubEnhancer{}})
	assert.Error(t, err)

	_, err = NewServer(":0", Options{Settings: settings.NewMemoryStore()})
	assert.Error(t, err)
}

func TestHealthAndCatalog(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})

	rec := ts.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cat := decode[map[string]json.RawMessage](t, rec)
	assert.Contains(t, string(cat["tools"]), `"id":"a1111"`)
	assert.Contains(t, string(cat["nodeTemplates"]), `"key":"KSampler"`)
}

func TestSettings_MaskedRoundTrip(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})

	rec := ts.do(t, http.MethodPut, "/api/settings", `{"provider":"openai-compatible","key":"sk-secret-1234","baseUrl":"http://localhost:11434/v1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[ai.Settings](t, rec)
	assert.Equal(t, ai.ProviderOpenAI, got.Provider)
	assert.Equal(t, "**********1234", got.APIKey)
	assert.NotContains(t, rec.Body.String(), "sk-secret")

	// Sending the masked key back keeps the stored one.
	rec = ts.do(t, http.MethodPut, "/api/settings", `{"provider":"openai","key":"**********1234","model":"llama3"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := ts.settings.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-1234", stored.APIKey)
	assert.Equal(t, "llama3", stored.Model)

	rec = ts.do(t, http.MethodPut, "/api/settings", `{"provider":"cohere","key":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndCompose(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})

	rec := ts.do(t, http.MethodPatch, "/api/prompts/sora", `{"field":"main","value":"A cat"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, "/api/prompts/sora", `{"field":"modifiers","value":["Drone Shot","Slow Motion"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/prompts/sora/compose", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A cat. Drone Shot. Slow Motion", decode[textResponse](t, rec).Text)

	rec = ts.do(t, http.MethodPatch, "/api/prompts/grok", `{"field":"modifiers","value":["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/api/prompts/sora", `{"field":"modifiers","value":"not a list"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/prompts/dalle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModifiersAndSync(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})

	rec := ts.do(t, http.MethodPost, "/api/prompts/a1111/modifiers", `{"tag":"masterpiece"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ts.do(t, http.MethodPost, "/api/prompts/a1111/modifiers", `{"tag":"8k"}`)
	ts.do(t, http.MethodPost, "/api/prompts/a1111/modifiers", `{"tag":"8k"}`)

	rec = ts.do(t, http.MethodGet, "/api/prompts/a1111/compose", "")
	assert.Equal(t, " masterpiece, 8k", decode[textResponse](t, rec).Text)

	rec = ts.do(t, http.MethodPut, "/api/prompts/a1111/modifiers/8k", `{"tag":"best quality"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/prompts/a1111/modifiers/best%20quality", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	shape, _ := ts.prompts.Shape(prompt.A1111)
	assert.Equal(t, []string{"masterpiece"}, prompt.Modifiers(shape))

	rec = ts.do(t, http.MethodDelete, "/api/prompts/a1111/modifiers/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/enhancers/sync", `{"tag":"Cinematic","add":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, tool := range []prompt.ToolID{prompt.Sora, prompt.Veo, prompt.Midjourney, prompt.Comfy, prompt.A1111} {
		shape, _ := ts.prompts.Shape(tool)
		assert.Contains(t, prompt.Modifiers(shape), "Cinematic", tool)
	}
}

func TestClear(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})
	ts.do(t, http.MethodPatch, "/api/prompts/comfy", `{"field":"main","value":"castle"}`)

	rec := ts.do(t, http.MethodPost, "/api/prompts/comfy/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"main":"","negative":"","modifiers":[],"nodes":[]}`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/prompts/a1111/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"main":"","negative":"","modifiers":[]}`, rec.Body.String())
}

func TestComfyNodes(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})

	rec := ts.do(t, http.MethodPost, "/api/prompts/comfy/nodes", `{"templateKey":"EmptyLatentImage"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	node := decode[prompt.GraphNode](t, rec)
	assert.Equal(t, 2, node.ID)

	rec = ts.do(t, http.MethodPatch, fmt.Sprintf("/api/prompts/comfy/nodes/%d", node.ID), `{"field":"width","value":768}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"value":768`)

	rec = ts.do(t, http.MethodDelete, "/api/prompts/comfy/nodes/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/prompts/comfy/nodes/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/prompts/comfy/nodes", `{"templateKey":"Nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/prompts/comfy/nodes/import", `{"5": {"class_type": "KSampler", "inputs": {"steps": 12,}}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	shape, _ := ts.prompts.Shape(prompt.Comfy)
	nodes := shape.(prompt.DiffusionShape).Nodes
	require.Len(t, nodes, 1)
	assert.Equal(t, 3, nodes[0].ID)
}

func TestSetParam(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})

	rec := ts.do(t, http.MethodPut, "/api/prompts/a1111/params/steps", `{"value":35}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `{"name":"steps","value":35}`)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})
	ts.do(t, http.MethodPatch, "/api/prompts/a1111", `{"field":"main","value":"portrait"}`)

	rec := ts.do(t, http.MethodGet, "/api/prompts/a1111/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="promptcraft_a1111_1700000000000.md"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# PromptCraft Export - A1111\n"))
	assert.Contains(t, rec.Body.String(), "- **sampler**: DPM++ 2M Karras\n")
}

func TestCopyRecordsHistory(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{})

	rec := ts.do(t, http.MethodPost, "/api/prompts/veo/copy", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.do(t, http.MethodPatch, "/api/prompts/veo", `{"field":"main","value":"Sunset"}`)
	rec = ts.do(t, http.MethodPost, "/api/prompts/veo/copy", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/history", "")
	entries := decode[[]history.Entry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "Sunset", entries[0].Text)

	rec = ts.do(t, http.MethodDelete, "/api/history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEnhance(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{text: "A majestic cat"})

	rec := ts.do(t, http.MethodPost, "/api/prompts/sora/enhance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty prompt")

	ts.do(t, http.MethodPatch, "/api/prompts/sora", `{"field":"main","value":"cat"}`)
	rec = ts.do(t, http.MethodPost, "/api/prompts/sora/enhance", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "A majestic cat", decode[textResponse](t, rec).Text)

	shape, _ := ts.prompts.Shape(prompt.Sora)
	assert.Equal(t, "A majestic cat", shape.MainText())
}

func TestEnhance_ErrorKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{ai.ErrMissingCredentials, http.StatusPreconditionFailed, "missing_credentials"},
		{&ai.NetworkError{Err: context.DeadlineExceeded}, http.StatusBadGateway, "network_failure"},
		{&ai.ProviderError{Status: 401, Body: "bad key"}, http.StatusBadGateway, "provider_error"},
		{ai.Malformed("no choices", nil), http.StatusBadGateway, "malformed_response"},
		{fmt.Errorf("%w: %q", ai.ErrUnknownProvider, "mistral"), http.StatusBadRequest, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			ts := newTestServer(t, &stubEnhancer{err: tt.err})
			ts.do(t, http.MethodPatch, "/api/prompts/midjourney", `{"field":"main","value":"castle"}`)

			rec := ts.do(t, http.MethodPost, "/api/prompts/midjourney/enhance", "")
			assert.Equal(t, tt.status, rec.Code)
			body := decode[errorResponse](t, rec)
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Error)

			shape, _ := ts.prompts.Shape(prompt.Midjourney)
			assert.Equal(t, "castle", shape.MainText())
		})
	}
}

func TestEnhance_ConflictWhileBusy(t *testing.T) {
	enhancer := &stubEnhancer{text: "done", started: make(chan struct{}, 1), release: make(chan struct{})}
	ts := newTestServer(t, enhancer)
	ts.do(t, http.MethodPatch, "/api/prompts/veo", `{"field":"main","value":"city"}`)

	first := make(chan int, 1)
	go func() {
		first <- ts.do(t, http.MethodPost, "/api/prompts/veo/enhance", "").Code
	}()
	<-enhancer.started

	rec := ts.do(t, http.MethodPost, "/api/prompts/veo/enhance", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(enhancer.release)
	assert.Equal(t, http.StatusOK, <-first)
}

func TestAutoNegative(t *testing.T) {
	ts := newTestServer(t, &stubEnhancer{text: "lowres, blurry"})
	ts.do(t, http.MethodPatch, "/api/prompts/comfy", `{"field":"main","value":"castle"}`)

	rec := ts.do(t, http.MethodPost, "/api/prompts/comfy/negative", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	shape, _ := ts.prompts.Shape(prompt.Comfy)
	assert.Equal(t, "lowres, blurry", shape.(prompt.DiffusionShape).Negative)

	rec = ts.do(t, http.MethodPost, "/api/prompts/sora/negative", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeedFromReference(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<h1>Neon Alley</h1><p>Rain at night.</p>")
	}))
	defer page.Close()

	ts := newTestServer(t, &stubEnhancer{})
	rec := ts.do(t, http.MethodPost, "/api/prompts/veo/reference", fmt.Sprintf(`{"url":%q}`, page.URL))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	shape, _ := ts.prompts.Shape(prompt.Veo)
	assert.Contains(t, shape.MainText(), "# Neon Alley")
	assert.Contains(t, shape.MainText(), "Rain at night.")
}
