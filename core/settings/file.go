package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/leofalp/promptcraft/providers/ai"
)

const (
	// Namespace is the TOML table holding the record.
	Namespace = "promptcraft_ai_settings"

	// EnvPrefix prefixes the environment variables overlaid on load, e.g.
	// PROMPTCRAFT_AI_KEY or PROMPTCRAFT_AI_BASE_URL.
	EnvPrefix = "PROMPTCRAFT_AI_"
)

// envKeys maps environment suffixes to record keys.
var envKeys = map[string]string{
	"provider": "provider",
	"key":      "key",
	"model":    "model",
	"base_url": "baseUrl",
}

// FileStore is a Store backed by a TOML file.
type FileStore struct {
	path   string
	useEnv bool
	mu     sync.Mutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithoutEnv disables the environment overlay.
func WithoutEnv() FileOption {
	return func(s *FileStore) {
		s.useEnv = false
	}
}

// NewFileStore returns a FileStore for path. If path is empty DefaultPath is
// used.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	s := &FileStore{path: path, useEnv: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPath returns ~/.promptcraft.toml, or ./promptcraft.toml when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "promptcraft.toml"
	}
	return filepath.Join(home, ".promptcraft.toml")
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record. A missing file yields the defaults.
func (s *FileStore) Load() (ai.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := koanf.New(".")

	defaults := ai.DefaultSettings()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		Namespace + ".provider": string(defaults.Provider),
		Namespace + ".key":      "",
		Namespace + ".model":    "",
		Namespace + ".baseUrl":  "",
	}, "."), nil); err != nil {
		return ai.Settings{}, fmt.Errorf("error loading defaults: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := k.Load(file.Provider(s.path), toml.Parser()); err != nil {
			return ai.Settings{}, fmt.Errorf("error loading settings: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return ai.Settings{}, fmt.Errorf("error reading settings file: %w", err)
	}

	if s.useEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", func(name string) string {
			key, ok := envKeys[strings.ToLower(strings.TrimPrefix(name, EnvPrefix))]
			if !ok {
				return ""
			}
			return Namespace + "." + key
		}), nil); err != nil {
			return ai.Settings{}, fmt.Errorf("error loading environment: %w", err)
		}
	}

	var settings ai.Settings
	if err := k.Unmarshal(Namespace, &settings); err != nil {
		return ai.Settings{}, fmt.Errorf("error unmarshalling settings: %w", err)
	}

	return normalize(settings), nil
}

// Save overwrites the record. The file is created with owner-only permissions
// since it holds the API key.
func (s *FileStore) Save(settings ai.Settings) error {
	settings = normalize(settings)

	s.mu.Lock()
	defer s.mu.Unlock()

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]interface{}{
		Namespace + ".provider": string(settings.Provider),
		Namespace + ".key":      settings.APIKey,
		Namespace + ".model":    settings.Model,
		Namespace + ".baseUrl":  settings.BaseURL,
	}, "."), nil); err != nil {
		return fmt.Errorf("error preparing settings: %w", err)
	}

	data, err := k.Marshal(toml.Parser())
	if err != nil {
		return fmt.Errorf("error encoding settings: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("error creating settings directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("error writing settings: %w", err)
	}
	return nil
}
