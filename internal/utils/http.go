package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/leofalp/promptcraft/providers/ai"
)

// maxErrorBody caps how much of a non-2xx body is kept in a ProviderError.
const maxErrorBody = 2000

// HeaderOption is an extra header set on an outgoing request.
type HeaderOption struct {
	Key   string
	Value string
}

// NewJSONRequest builds a POST request with a JSON body. If apiKey is not
// empty it is sent as a Bearer token; providers that authenticate another way
// pass an empty apiKey and supply their own headers.
func NewJSONRequest(ctx context.Context, url string, apiKey string, body any, headers ...HeaderOption) (*http.Request, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		req.Header.Set(header.Key, header.Value)
	}

	return req, nil
}

// DecodeJSON reads the whole response body and decodes it into OutputStruct.
//
// Error Handling Strategy:
//   - a body that cannot be read is a *ai.NetworkError
//   - a non-2xx status is a *ai.ProviderError carrying the raw body
//   - a body that is not valid JSON for OutputStruct is a *ai.MalformedResponseError
//
// The response body is left for the caller to close.
func DecodeJSON[OutputStruct any](res *http.Response) (*OutputStruct, error) {
	if res == nil || res.Body == nil {
		return nil, ai.Malformed("empty response", nil)
	}

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ai.NetworkError{Err: fmt.Errorf("error reading response body: %w", err)}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &ai.ProviderError{Status: res.StatusCode, Body: TruncateString(string(respBody), maxErrorBody)}
	}

	var resStruct OutputStruct
	if err = json.Unmarshal(respBody, &resStruct); err != nil {
		return nil, ai.Malformed(fmt.Sprintf("cannot decode body (status %d), preview: %s", res.StatusCode, TruncateString(string(respBody), 200)), err)
	}

	return &resStruct, nil
}

// CloseWithLog closes c and logs, rather than returns, a close failure so it
// never overrides the primary error of the caller.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}
