package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leofalp/promptcraft/internal/utils"
	"github.com/leofalp/promptcraft/providers/ai"
)

// ErrEmptyPrompt is returned when Enhance is called without prompt text.
var ErrEmptyPrompt = errors.New("promptcraft: prompt text is empty")

// SettingsSource supplies the provider settings read on every call.
type SettingsSource interface {
	Settings() (ai.Settings, error)
}

// SettingsFunc adapts a function into a SettingsSource.
type SettingsFunc func() (ai.Settings, error)

// Settings implements SettingsSource.
func (f SettingsFunc) Settings() (ai.Settings, error) { return f() }

// StaticSettings returns a SettingsSource that always yields settings.
func StaticSettings(settings ai.Settings) SettingsSource {
	return SettingsFunc(func() (ai.Settings, error) { return settings, nil })
}

// Client dispatches enhancement calls to the provider selected by the
// current settings. It is safe for concurrent use; calls are independent.
type Client struct {
	settings    SettingsSource
	providers   map[ai.ProviderID]ai.Provider
	httpClient  *http.Client
	middlewares []Middleware
	send        SendFunc
}

// Option configures a Client.
type Option func(*Client)

// WithProviders registers providers, replacing any previous provider with the
// same ID.
func WithProviders(providers ...ai.Provider) Option {
	return func(c *Client) {
		for _, provider := range providers {
			c.providers[provider.ID()] = provider
		}
	}
}

// WithHTTPClient sets the HTTP client used for outbound requests. The client's
// own Timeout, if any, is the only deadline applied besides the context.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMiddleware appends middlewares to the send chain.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// New creates a Client reading its settings from source.
func New(source SettingsSource, opts ...Option) (*Client, error) {
	if source == nil {
		return nil, fmt.Errorf("settings source is required")
	}

	c := &Client{
		settings:   source,
		providers:  map[ai.ProviderID]ai.Provider{},
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}

	c.send = buildSendChain(c.sendOnce, c.middlewares)
	return c, nil
}

// Provider returns the registered provider for id.
func (c *Client) Provider(id ai.ProviderID) (ai.Provider, bool) {
	provider, ok := c.providers[id]
	return provider, ok
}

// Enhance rewrites promptText following instructionText, using the provider
// selected by the current settings.
//
// A missing API key fails with ai.ErrMissingCredentials before any request is
// built. Every other failure is one of *ai.NetworkError, *ai.ProviderError or
// *ai.MalformedResponseError; classify them with ai.KindOf.
func (c *Client) Enhance(ctx context.Context, promptText, instructionText string) (string, error) {
	if promptText == "" {
		return "", ErrEmptyPrompt
	}

	settings, err := c.settings.Settings()
	if err != nil {
		return "", fmt.Errorf("error loading settings: %w", err)
	}

	if strings.TrimSpace(settings.APIKey) == "" {
		return "", ai.ErrMissingCredentials
	}

	return c.send(ctx, settings, ai.EnhanceRequest{
		Prompt:      promptText,
		Instruction: instructionText,
	})
}

// sendOnce is the base of the middleware chain: one request, one response.
func (c *Client) sendOnce(ctx context.Context, settings ai.Settings, request ai.EnhanceRequest) (string, error) {
	id := settings.Provider
	if id == "" {
		id = ai.ProviderGemini
	}
	provider, ok := c.providers[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ai.ErrUnknownProvider, settings.Provider)
	}

	req, err := provider.BuildRequest(ctx, request, settings)
	if err != nil {
		return "", fmt.Errorf("error building %s request: %w", provider.ID(), err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		// Gemini carries the key in the query string; keep it out of messages.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = stripQuery(urlErr.URL)
		}
		return "", &ai.NetworkError{Err: err}
	}
	defer utils.CloseWithLog(res.Body)

	return provider.ParseResponse(res)
}

func stripQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
