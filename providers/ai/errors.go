package ai

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned before any network activity when the
// settings carry no API key.
var ErrMissingCredentials = errors.New("promptcraft: no API key configured")

// ErrUnknownProvider is returned when the settings select a provider that was
// never registered with the client.
var ErrUnknownProvider = errors.New("promptcraft: unknown provider")

// NetworkError wraps a transport-level failure: DNS, connection refused,
// TLS, a body that could not be read, or a cancelled context.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProviderError reports a non-2xx HTTP response. Body holds the raw response
// body so callers can surface the provider's own message.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// MalformedResponseError reports a 2xx response whose body does not match the
// provider's documented schema.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Malformed is a shorthand used by provider packages.
func Malformed(reason string, err error) error {
	return &MalformedResponseError{Reason: reason, Err: err}
}

// ErrorKind classifies an enhancement failure.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindMissingCredentials
	KindNetwork
	KindProvider
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingCredentials:
		return "missing_credentials"
	case KindNetwork:
		return "network_failure"
	case KindProvider:
		return "provider_error"
	case KindMalformed:
		return "malformed_response"
	}
	return "unknown"
}

// KindOf classifies err. Wrapped errors are unwrapped with errors.Is/As.
func KindOf(err error) ErrorKind {
	var (
		networkErr   *NetworkError
		providerErr  *ProviderError
		malformedErr *MalformedResponseError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrMissingCredentials):
		return KindMissingCredentials
	case errors.As(err, &providerErr):
		return KindProvider
	case errors.As(err, &malformedErr):
		return KindMalformed
	case errors.As(err, &networkErr):
		return KindNetwork
	}
	return KindUnknown
}
