package anthropic

import (
	"context"
	"net/http"
	"strings"

	"github.com/leofalp/promptcraft/internal/utils"
	"github.com/leofalp/promptcraft/providers/ai"
)

const (
	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// anthropicVersion is the required anthropic-version header value.
	anthropicVersion = "2023-06-01"

	defaultModel = "claude-3-5-sonnet-20240620"

	// defaultMaxTokens bounds the rewrite; prompts are short.
	defaultMaxTokens = 1024
)

// AnthropicProvider implements [ai.Provider] for Anthropic's Messages API.
type AnthropicProvider struct {
	baseURL string
}

// New returns an [AnthropicProvider] pointing at https://api.anthropic.com/v1.
func New() *AnthropicProvider {
	return &AnthropicProvider{baseURL: defaultBaseURL}
}

// WithBaseURL overrides the API base URL and returns the provider so calls can
// be chained. Use this when targeting a proxy or local testing endpoint.
func (p *AnthropicProvider) WithBaseURL(baseURL string) *AnthropicProvider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// ID implements ai.Provider.
func (p *AnthropicProvider) ID() ai.ProviderID { return ai.ProviderAnthropic }

// DefaultModel implements ai.Provider.
func (p *AnthropicProvider) DefaultModel() string { return defaultModel }

// buildHeaders constructs the HTTP headers required for every Anthropic request.
func buildHeaders(apiKey string) []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// BuildRequest implements [ai.Provider]. The key is never placed in the body.
func (p *AnthropicProvider) BuildRequest(ctx context.Context, request ai.EnhanceRequest, settings ai.Settings) (*http.Request, error) {
	body := requestToAnthropic(request, settings.ModelOr(defaultModel))

	// Pass empty apiKey so no Bearer token is injected.
	return utils.NewJSONRequest(ctx, p.baseURL+messagesEndpoint, "", body, buildHeaders(settings.APIKey)...)
}

// ParseResponse implements [ai.Provider].
func (p *AnthropicProvider) ParseResponse(response *http.Response) (string, error) {
	resp, err := utils.DecodeJSON[anthropicResponse](response)
	if err != nil {
		return "", err
	}
	return textFromAnthropic(*resp)
}
