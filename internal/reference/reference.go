// Package reference fetches a web page and converts it to Markdown so it can
// seed a prompt.
package reference

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/promptcraft/internal/utils"
)

const (
	// DefaultTimeout bounds a whole fetch when the caller sets no deadline.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the User-Agent header value.
	DefaultUserAgent = "promptcraft-reference/1.0"
	// MaxBodySize is the largest page accepted (5MB).
	MaxBodySize = 5 * 1024 * 1024
	// DefaultMaxChars caps the Markdown handed to a prompt.
	DefaultMaxChars = 4000
)

// Page is a fetched page.
type Page struct {
	URL      string `json:"url"` // Final URL after redirects
	Markdown string `json:"markdown"`
}

// Fetcher downloads pages. The zero value is not usable; call New.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	maxChars   int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = client
	}
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithMaxChars caps the returned Markdown. Zero or less disables the cap.
func WithMaxChars(n int) Option {
	return func(f *Fetcher) {
		f.maxChars = n
	}
}

// New returns a Fetcher with a client that follows at most ten redirects.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				ForceAttemptHTTP2:     true,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (>10)")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		maxChars:  DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL and returns its content as Markdown. Partial URLs
// such as "example.com" get an https:// prefix.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return Page{}, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, fmt.Errorf("request timeout or canceled: %w", err)
		}
		return Page{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(res.Body)

	if res.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("unexpected status code: %d %s", res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxBodySize+1))
	if err != nil {
		return Page{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Page{}, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return Page{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if f.maxChars > 0 {
		markdown = cut(markdown, f.maxChars)
	}

	return Page{URL: res.Request.URL.String(), Markdown: markdown}, nil
}

// cut keeps the first n runes of s.
func cut(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}
