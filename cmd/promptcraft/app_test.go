package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runApp runs the CLI with a private settings file and returns stdout.
func runApp(t *testing.T, settingsPath string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	argv := append([]string{"promptcraft", "--settings", settingsPath}, args...)
	err := app.Run(argv)
	return stdout.String(), err
}

func TestCompose(t *testing.T) {
	out, err := runApp(t, filepath.Join(t.TempDir(), "s.toml"),
		"compose", "--tool", "veo", "-m", "Drone Shot", "-m", "Slow Motion", "A", "cat")
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if out != "A cat. Drone Shot. Slow Motion\n" {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := runApp(t, filepath.Join(t.TempDir(), "s.toml"), "compose", "--tool", "dalle", "x"); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestSettingsSetAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.toml")

	out, err := runApp(t, path, "settings", "set", "--provider", "claude", "--key", "sk-ant-abcdef")
	if err != nil {
		t.Fatalf("settings set failed: %v", err)
	}
	if strings.Contains(out, "sk-ant-abcdef") {
		t.Errorf("key printed in clear: %s", out)
	}

	out, err = runApp(t, path, "settings", "show")
	if err != nil {
		t.Fatalf("settings show failed: %v", err)
	}
	for _, want := range []string{"provider: anthropic", "key:      *********cdef"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	if _, err := runApp(t, path, "settings", "set", "--provider", "cohere"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

// TestEnhance_OpenAICompatible runs the whole path from the CLI through the
// client to a local OpenAI-compatible endpoint.
func TestEnhance_OpenAICompatible(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer local-key" {
			t.Errorf("unexpected request %s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}

		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) != 2 || body.Messages[1].Content != "a cat" {
			t.Errorf("unexpected messages %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"A tabby cat at dusk."}}]}`))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "s.toml")
	if _, err := runApp(t, path, "settings", "set", "--provider", "openai", "--key", "local-key", "--base-url", server.URL+"/v1/"); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}

	out, err := runApp(t, path, "enhance", "--tool", "sora", "a", "cat")
	if err != nil {
		t.Fatalf("enhance failed: %v", err)
	}
	if out != "A tabby cat at dusk.\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestEnhance_MissingKey(t *testing.T) {
	t.Setenv("PROMPTCRAFT_AI_KEY", "")

	_, err := runApp(t, filepath.Join(t.TempDir(), "s.toml"), "enhance", "a cat")
	if err == nil || !strings.Contains(err.Error(), "missing_credentials") {
		t.Errorf("expected missing credentials error, got %v", err)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	out, err := runApp(t, filepath.Join(dir, "s.toml"),
		"export", "--tool", "a1111", "--negative", "lowres", "--out", dir, "portrait")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "promptcraft_a1111_*.md"))
	if len(matches) != 1 {
		t.Fatalf("expected one export file, got %v (output %q)", matches, out)
	}
	data, _ := os.ReadFile(matches[0])
	for _, want := range []string{"# PromptCraft Export - A1111", "## Negative Prompt\nlowres", "- **steps**: 20"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %q in export:\n%s", want, data)
		}
	}
}

func TestCatalog(t *testing.T) {
	out, err := runApp(t, filepath.Join(t.TempDir(), "s.toml"), "catalog")
	if err != nil {
		t.Fatalf("catalog failed: %v", err)
	}
	for _, want := range []string{"midjourney", "Drone Shot", "KSampler"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in catalog output", want)
		}
	}
}
