// Package history keeps the prompts a user copied, newest first.
package history

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/promptcraft/core/prompt"
)

// DefaultLimit is the number of entries kept by New.
const DefaultLimit = 50

// Entry is one copied prompt.
type Entry struct {
	ID        string        `json:"id"`
	Tool      prompt.ToolID `json:"tool"`
	Text      string        `json:"text"`
	CreatedAt time.Time     `json:"createdAt"`
}

// History is a bounded, concurrency-safe list of entries.
type History struct {
	mu      sync.RWMutex
	limit   int
	entries []Entry
	now     func() time.Time
}

// New returns a History holding up to limit entries. A limit below one uses
// DefaultLimit.
func New(limit int) *History {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &History{limit: limit, now: time.Now}
}

// Add records text for tool. Blank text is ignored and reported as false.
// Adding the same text as the newest entry for the same tool only refreshes
// its timestamp.
func (h *History) Add(tool prompt.ToolID, text string) (Entry, bool) {
	if strings.TrimSpace(text) == "" {
		return Entry{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) > 0 && h.entries[0].Tool == tool && h.entries[0].Text == text {
		h.entries[0].CreatedAt = h.now()
		return h.entries[0], true
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Tool:      tool,
		Text:      text,
		CreatedAt: h.now(),
	}
	h.entries = slices.Insert(h.entries, 0, entry)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
	return entry, true
}

// List returns the entries, newest first.
func (h *History) List() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.entries)
}

// Clear removes every entry.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
