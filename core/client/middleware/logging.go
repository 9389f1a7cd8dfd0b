package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/promptcraft/core/client"
	"github.com/leofalp/promptcraft/internal/utils"
	"github.com/leofalp/promptcraft/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs only the provider, model and total duration.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds prompt/instruction sizes and, on failure, the
	// error kind. This is the recommended default.
	LogLevelStandard

	// LogLevelVerbose adds the prompt and the rewritten text, each truncated
	// to 500 characters.
	//
	// WARNING: DO NOT use LogLevelVerbose in production. It logs raw prompt
	// text, which may contain sensitive user data.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware creates a middleware that emits structured slog
// entries before and after every provider call. The API key is never logged.
//
// The logger parameter must not be nil. Use slog.Default() if you have not
// configured a custom logger.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, settings ai.Settings, request ai.EnhanceRequest) (string, error) {
			logger.InfoContext(ctx, "enhance",
				buildRequestAttrs(settings, request, level)...,
			)

			start := time.Now()
			text, err := next(ctx, settings, request)
			elapsed := time.Since(start)

			if err != nil {
				attrs := []any{
					slog.String("provider", string(settings.Provider)),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				}
				if level >= LogLevelStandard {
					attrs = append(attrs, slog.String("error_kind", ai.KindOf(err).String()))
				}
				logger.ErrorContext(ctx, "enhance failed", attrs...)
				return "", err
			}

			attrs := []any{
				slog.String("provider", string(settings.Provider)),
				slog.Duration("duration", elapsed),
			}
			if level >= LogLevelStandard {
				attrs = append(attrs, slog.Int("response_len", len(text)))
			}
			if level >= LogLevelVerbose {
				attrs = append(attrs, slog.String("response_content", utils.TruncateString(text, truncateLen)))
			}
			logger.InfoContext(ctx, "enhance completed", attrs...)

			return text, nil
		}
	}
}

// buildRequestAttrs returns slog attributes for an outgoing request,
// expanding detail according to the requested verbosity level.
func buildRequestAttrs(settings ai.Settings, request ai.EnhanceRequest, level LogLevel) []any {
	attrs := []any{
		slog.String("provider", string(settings.Provider)),
		slog.String("model", settings.ModelOr("default")),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs,
			slog.Int("prompt_len", len(request.Prompt)),
			slog.Int("instruction_len", len(request.Instruction)),
		)
	}

	if level >= LogLevelVerbose {
		attrs = append(attrs,
			slog.String("prompt_content", utils.TruncateString(request.Prompt, truncateLen)),
		)
	}

	return attrs
}
