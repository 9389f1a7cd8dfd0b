package client

import (
	"context"

	"github.com/leofalp/promptcraft/providers/ai"
)

// SendFunc performs one enhancement with already-resolved settings. It is the
// base unit threaded through the middleware chain.
type SendFunc func(ctx context.Context, settings ai.Settings, request ai.EnhanceRequest) (string, error)

// Middleware intercepts enhancement calls. Each Middleware receives the next
// SendFunc in the chain and returns a new SendFunc that wraps it. Middlewares
// are applied outermost-first: the first middleware in the slice is the
// outermost wrapper.
type Middleware func(next SendFunc) SendFunc

// buildSendChain applies middlewares in reverse so that middlewares[0] is
// outermost, i.e. the first to execute on an incoming request.
func buildSendChain(base SendFunc, middlewares []Middleware) SendFunc {
	chain := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			chain = middlewares[i](chain)
		}
	}
	return chain
}
