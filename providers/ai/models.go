package ai

import "strings"

// ProviderID identifies an enhancement backend; compatible with string.
type ProviderID string

const (
	ProviderGemini    ProviderID = "gemini"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderOpenAI    ProviderID = "openai" // OpenAI and any compatible endpoint (DeepSeek, Mistral, Ollama...)
)

// ParseProviderID normalizes a user supplied provider name. The empty string
// maps to Gemini, which is the default backend.
func ParseProviderID(value string) (ProviderID, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "gemini":
		return ProviderGemini, true
	case "anthropic", "claude":
		return ProviderAnthropic, true
	case "openai", "openai-compatible", "openai_compatible":
		return ProviderOpenAI, true
	}
	return "", false
}

// Settings is the single, process-wide provider configuration. It is mutated
// only by an explicit save and read on every enhancement call.
type Settings struct {
	Provider ProviderID `json:"provider" koanf:"provider"`
	APIKey   string     `json:"key" koanf:"key"`
	Model    string     `json:"model" koanf:"model"`     // Blank selects the provider default
	BaseURL  string     `json:"baseUrl" koanf:"baseUrl"` // Only meaningful for ProviderOpenAI
}

// DefaultSettings returns the settings used when nothing has been persisted.
func DefaultSettings() Settings {
	return Settings{Provider: ProviderGemini}
}

// ModelOr returns the configured model, or fallback when none is set.
func (s Settings) ModelOr(fallback string) string {
	if model := strings.TrimSpace(s.Model); model != "" {
		return model
	}
	return fallback
}

// Masked returns a copy of the settings safe to show or log: all but the last
// four characters of the API key are hidden.
func (s Settings) Masked() Settings {
	masked := s
	if len(s.APIKey) > 4 {
		masked.APIKey = strings.Repeat("*", len(s.APIKey)-4) + s.APIKey[len(s.APIKey)-4:]
	} else if s.APIKey != "" {
		masked.APIKey = "****"
	}
	return masked
}

// EnhanceRequest is one rewrite request. Instruction steers the rewrite and
// is sent as the system/style text; Prompt is the user's draft.
type EnhanceRequest struct {
	Prompt      string `json:"prompt"`
	Instruction string `json:"instruction"`
}
