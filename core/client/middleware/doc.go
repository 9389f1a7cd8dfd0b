// Package middleware provides built-in middleware for the enhancement client.
// Each middleware is constructed via a New* function that returns a
// [client.Middleware] ready to be passed to [client.WithMiddleware].
//
// There is deliberately no retry or timeout middleware: an enhancement is one
// request and one response, and cancellation belongs to the caller's context.
//
// # Usage
//
//	c, err := client.New(source,
//	    client.WithProviders(gemini.New(), anthropic.New(), openai.New()),
//	    client.WithMiddleware(
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
package middleware
