package pubsub

import (
	"context"

	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

// safeHandler wraps handler so a panic while processing one payload is
// logged and the subscription keeps running.
func safeHandler(driver, topic string, handler Handler) Handler {
	return func(ctx context.Context, payload []byte) {
		defer func() {
			if r := recover(); r != nil {
				l := log.L()
				l.Error().
					Str(log.FieldDriver, driver).
					Str(log.FieldTopic, topic).
					Interface("panic", r).
					Msg("pubsub handler panicked")
			}
		}()
		handler(ctx, payload)
	}
}
