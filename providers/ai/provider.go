package ai

import (
	"context"
	"net/http"
)

// Provider is the interface every enhancement backend must satisfy. A provider
// never performs I/O itself: it describes the request and interprets the
// response, while the client owns the HTTP exchange. Adding a backend means
// adding one implementation and registering it with the client.
type Provider interface {
	// ID returns the settings value that selects this provider.
	ID() ProviderID

	// DefaultModel is used when Settings.Model is blank.
	DefaultModel() string

	// BuildRequest creates the POST request carrying the instruction and the
	// prompt. The API key is placed wherever the wire protocol expects it.
	BuildRequest(ctx context.Context, request EnhanceRequest, settings Settings) (*http.Request, error)

	// ParseResponse extracts the rewritten prompt text. Non-2xx responses are
	// returned as *ProviderError and mis-shaped bodies as *MalformedResponseError.
	// The caller closes the response body.
	ParseResponse(response *http.Response) (string, error)
}
