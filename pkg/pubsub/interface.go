package pubsub

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../../internal/mocks/mock_pubsub.go -package=mocks

// Handler is invoked once per payload received on a subscribed topic. It runs
// on the subscription's own goroutine.
type Handler func(ctx context.Context, payload []byte)

// Publisher publishes raw payloads to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Subscriber delivers payloads published to a topic to handler until ctx is
// done or the PubSub is closed. Subscribe returns once the subscription is
// active.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler Handler) error
}

// PubSub combines Publisher and Subscriber interfaces.
type PubSub interface {
	Publisher
	Subscriber
	Close() error
}
