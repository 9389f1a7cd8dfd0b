package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leofalp/promptcraft/core/builder"
	"github.com/leofalp/promptcraft/core/prompt"
	"github.com/leofalp/promptcraft/providers/ai"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}

// writeError maps domain errors to status codes. Enhancement failures carry
// their kind so the UI can react (e.g. open settings on missing_credentials).
func writeError(c echo.Context, err error) error {
	var enhanceErr *builder.EnhanceError
	if errors.As(err, &enhanceErr) {
		status := enhanceStatus(enhanceErr.Kind)
		if errors.Is(err, ai.ErrUnknownProvider) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, errorResponse{
			Error: enhanceErr.Message,
			Kind:  enhanceErr.Kind.String(),
		})
	}

	switch {
	case errors.Is(err, builder.ErrBusy):
		return errorJSON(c, http.StatusConflict, err.Error())
	case errors.Is(err, prompt.ErrUnknownTool),
		errors.Is(err, prompt.ErrNotFound),
		errors.Is(err, prompt.ErrNodeNotFound),
		errors.Is(err, prompt.ErrUnknownTemplate):
		return errorJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, builder.ErrEmptyPrompt),
		errors.Is(err, builder.ErrNoNegative),
		errors.Is(err, prompt.ErrInvalidField),
		errors.Is(err, prompt.ErrInvalidValue),
		errors.Is(err, ai.ErrUnknownProvider):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return errorJSON(c, http.StatusInternalServerError, err.Error())
}

func enhanceStatus(kind ai.ErrorKind) int {
	switch kind {
	case ai.KindMissingCredentials:
		return http.StatusPreconditionFailed
	case ai.KindNetwork, ai.KindProvider, ai.KindMalformed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
