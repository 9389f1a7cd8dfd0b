package openai

import (
	"context"
	"net/http"
	"strings"

	"github.com/leofalp/promptcraft/internal/utils"
	"github.com/leofalp/promptcraft/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
	defaultModel            = "gpt-4o"
)

// OpenAIProvider implements the ai.Provider interface for OpenAI-compatible
// chat completion endpoints.
type OpenAIProvider struct{}

// New creates a new OpenAI provider instance.
func New() *OpenAIProvider {
	return &OpenAIProvider{}
}

// ID implements ai.Provider.
func (p *OpenAIProvider) ID() ai.ProviderID { return ai.ProviderOpenAI }

// DefaultModel implements ai.Provider.
func (p *OpenAIProvider) DefaultModel() string { return defaultModel }

// endpoint resolves {baseURL}/chat/completions, defaulting the base URL.
func endpoint(settings ai.Settings) string {
	baseURL := strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return baseURL + chatCompletionsEndpoint
}

// BuildRequest implements ai.Provider; the key is sent as a Bearer token.
func (p *OpenAIProvider) BuildRequest(ctx context.Context, request ai.EnhanceRequest, settings ai.Settings) (*http.Request, error) {
	body := requestFromGeneric(request, settings.ModelOr(defaultModel))
	return utils.NewJSONRequest(ctx, endpoint(settings), settings.APIKey, body)
}

// ParseResponse implements ai.Provider.
func (p *OpenAIProvider) ParseResponse(response *http.Response) (string, error) {
	resp, err := utils.DecodeJSON[chatCompletionResponse](response)
	if err != nil {
		return "", err
	}
	return textFromResponse(*resp)
}
