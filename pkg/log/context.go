package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// Ctx retrieves the logger from the context, or the global logger.
func Ctx(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}

// WithClient derives a context for one websocket connection. The result is
// rooted at context.Background so it outlives the upgrade request, while the
// request's logger fields are carried over.
func WithClient(req context.Context, clientID, username string) (context.Context, zerolog.Logger) {
	parent := Ctx(req)
	child := parent.With().
		Str(FieldClientID, clientID).
		Str(FieldUsername, username).
		Logger()
	return WithLogger(context.Background(), child), child
}
