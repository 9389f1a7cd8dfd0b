package builder

import (
	"errors"
	"fmt"

	"github.com/leofalp/promptcraft/core/client"
	"github.com/leofalp/promptcraft/providers/ai"
)

var (
	// ErrEmptyPrompt is returned when the main prompt is blank. No provider
	// call is made.
	ErrEmptyPrompt = client.ErrEmptyPrompt

	// ErrBusy is returned while the same builder already has a call in flight.
	ErrBusy = errors.New("enhancement already in progress")

	// ErrNoNegative is returned by AutoNegative for tools without a negative
	// prompt.
	ErrNoNegative = errors.New("tool has no negative prompt")
)

// EnhanceError is a failed enhancement with a message fit for the user. The
// prompt state is unchanged when it is returned.
type EnhanceError struct {
	Kind    ai.ErrorKind
	Message string
	Err     error
}

func (e *EnhanceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *EnhanceError) Unwrap() error { return e.Err }

// newEnhanceError classifies err and picks its user-visible message.
func newEnhanceError(err error) *EnhanceError {
	kind := ai.KindOf(err)
	e := &EnhanceError{Kind: kind, Err: err}

	switch {
	case errors.Is(err, ai.ErrUnknownProvider):
		e.Message = "The configured AI provider is not supported. Choose Gemini, Anthropic or OpenAI in settings."
		return e
	}

	switch kind {
	case ai.KindMissingCredentials:
		e.Message = "No API key configured. Open settings and add a key for your AI provider."
	case ai.KindNetwork:
		e.Message = "Could not reach the AI provider. Check your connection and try again."
	case ai.KindProvider:
		var providerErr *ai.ProviderError
		errors.As(err, &providerErr)
		e.Message = fmt.Sprintf("The AI provider rejected the request (HTTP %d).", providerErr.Status)
	case ai.KindMalformed:
		e.Message = "The AI provider returned a response that could not be read."
	default:
		e.Message = "Enhancement failed."
	}
	return e
}
