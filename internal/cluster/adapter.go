package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/weiawesome/wes-chat-relay/internal/codec"
	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/internal/metrics"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
	"github.com/weiawesome/wes-chat-relay/pkg/pubsub"
)

// ErrAlreadySubscribed is returned by a second call to Subscribe.
var ErrAlreadySubscribed = errors.New("cluster adapter already subscribed")

// LocalSink receives messages that arrived from other nodes.
type LocalSink interface {
	Broadcast(msg *domain.Message) error
}

// Adapter connects this node to the shared cluster topic. Outgoing messages
// are encoded and published; incoming payloads are decoded and handed to the
// local sink unless this node published them.
type Adapter struct {
	bus        pubsub.PubSub
	topic      string
	node       domain.NodeID
	codec      codec.Codec
	sink       LocalSink
	mu         sync.Mutex
	subscribed bool
}

func NewAdapter(bus pubsub.PubSub, topic string, node domain.NodeID, c codec.Codec, sink LocalSink) *Adapter {
	return &Adapter{
		bus:   bus,
		topic: topic,
		node:  node,
		codec: c,
		sink:  sink,
	}
}

// Publish encodes msg and publishes it to the cluster topic.
func (a *Adapter) Publish(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is required", domain.ErrInvalidArgument)
	}

	data, err := a.codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPublication, err)
	}
	if err := a.bus.Publish(ctx, a.topic, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPublication, err)
	}
	return nil
}

// Subscribe starts receiving the cluster topic. It may succeed only once per
// adapter; the subscription then lives until the bus is closed.
func (a *Adapter) Subscribe(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.subscribed {
		return ErrAlreadySubscribed
	}
	if err := a.bus.Subscribe(ctx, a.topic, a.HandlePayload); err != nil {
		return fmt.Errorf("failed to subscribe to cluster topic %s: %w", a.topic, err)
	}
	a.subscribed = true

	l := log.L()
	l.Info().Str(log.FieldTopic, a.topic).Str(log.FieldNodeID, a.node.String()).Msg("subscribed to cluster topic")
	return nil
}

// Subscribed reports whether Subscribe has succeeded.
func (a *Adapter) Subscribed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.subscribed
}

// HandlePayload processes one payload received from the bus. Malformed
// payloads and messages published by this node are discarded.
func (a *Adapter) HandlePayload(ctx context.Context, payload []byte) {
	l := log.Ctx(ctx)

	msg, err := a.codec.Decode(payload)
	if err != nil {
		metrics.BusDecodeFailures.Inc()
		l.Warn().Err(err).Str(log.FieldTopic, a.topic).Int("bytes", len(payload)).Msg("discarding undecodable cluster payload")
		return
	}

	if msg.IsFrom(a.node) {
		metrics.BusLoopDiscards.Inc()
		l.Debug().Str(log.FieldMessageID, msg.ID).Str(log.FieldNodeID, a.node.String()).Msg("skipping message from same node")
		return
	}

	metrics.MessagesBroadcast.WithLabelValues(metrics.ScopeCluster).Inc()
	if err := a.sink.Broadcast(msg); err != nil {
		l.Error().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to broadcast cluster message locally")
	}
}
