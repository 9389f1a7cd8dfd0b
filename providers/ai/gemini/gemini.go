package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leofalp/promptcraft/internal/utils"
	"github.com/leofalp/promptcraft/providers/ai"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash-exp"
)

// GeminiProvider implements the ai.Provider interface for Google's Gemini API.
type GeminiProvider struct {
	baseURL string
}

// New creates a Gemini provider pointing at Google's public endpoint.
func New() *GeminiProvider {
	return &GeminiProvider{baseURL: defaultBaseURL}
}

// WithBaseURL sets the base URL for the API.
func (p *GeminiProvider) WithBaseURL(baseURL string) *GeminiProvider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

// ID implements ai.Provider.
func (p *GeminiProvider) ID() ai.ProviderID { return ai.ProviderGemini }

// DefaultModel implements ai.Provider.
func (p *GeminiProvider) DefaultModel() string { return defaultModel }

// BuildRequest implements ai.Provider. The API key travels as the "key" query
// parameter, never as a header.
func (p *GeminiProvider) BuildRequest(ctx context.Context, request ai.EnhanceRequest, settings ai.Settings) (*http.Request, error) {
	model := settings.ModelOr(defaultModel)

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		p.baseURL,
		url.PathEscape(model),
		url.QueryEscape(settings.APIKey),
	)

	return utils.NewJSONRequest(ctx, endpoint, "", requestToGemini(request))
}

// ParseResponse implements ai.Provider.
func (p *GeminiProvider) ParseResponse(response *http.Response) (string, error) {
	resp, err := utils.DecodeJSON[generateContentResponse](response)
	if err != nil {
		return "", err
	}
	return textFromGemini(*resp)
}
