package settings

import (
	"sync"

	"github.com/leofalp/promptcraft/core/client"
	"github.com/leofalp/promptcraft/providers/ai"
)

// Store loads and saves the provider settings record.
type Store interface {
	Load() (ai.Settings, error)
	Save(ai.Settings) error
}

// Source adapts a Store into the settings source read by the AI client on
// every call.
func Source(store Store) client.SettingsSource {
	return client.SettingsFunc(store.Load)
}

// normalize maps provider aliases to their canonical id. Unrecognized ids are
// kept as given so the client can report them.
func normalize(settings ai.Settings) ai.Settings {
	if id, ok := ai.ParseProviderID(string(settings.Provider)); ok {
		settings.Provider = id
	}
	return settings
}

// MemoryStore is a Store backed by a variable.
type MemoryStore struct {
	mu       sync.RWMutex
	settings *ai.Settings
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (ai.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return ai.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *MemoryStore) Save(settings ai.Settings) error {
	settings = normalize(settings)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &settings
	return nil
}
