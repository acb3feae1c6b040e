package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/internal/metrics"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

//go:generate go run go.uber.org/mock/mockgen -source=broadcaster.go -destination=../mocks/mock_broadcaster.go -package=mocks

const defaultPublishTimeout = 2 * time.Second

// Broadcaster is the single entry point for publishing a chat message.
// Exactly one implementation is chosen at startup.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message) error
}

// LocalSink delivers a message to the clients connected to this node.
type LocalSink interface {
	Broadcast(msg *domain.Message) error
}

// ClusterPublisher propagates a message to the other nodes.
type ClusterPublisher interface {
	Publish(ctx context.Context, msg *domain.Message) error
}

// Local delivers to this node's clients only.
type Local struct {
	sink LocalSink
}

func NewLocal(sink LocalSink) *Local {
	return &Local{sink: sink}
}

func (b *Local) Broadcast(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is required", domain.ErrInvalidArgument)
	}

	metrics.MessagesBroadcast.WithLabelValues(metrics.ScopeLocal).Inc()
	if err := b.sink.Broadcast(msg); err != nil {
		return err
	}

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldMessageID, msg.ID).Msg("broadcast message locally")
	return nil
}

// Clustered stamps each message with this node's identity, delivers it
// locally and then publishes it for the other nodes. Publication is best
// effort: a failure is logged and never undoes the local delivery.
type Clustered struct {
	node           domain.NodeID
	sink           LocalSink
	publisher      ClusterPublisher
	publishTimeout time.Duration
}

func NewClustered(node domain.NodeID, sink LocalSink, publisher ClusterPublisher, publishTimeout time.Duration) *Clustered {
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}
	return &Clustered{
		node:           node,
		sink:           sink,
		publisher:      publisher,
		publishTimeout: publishTimeout,
	}
}

func (b *Clustered) Broadcast(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is required", domain.ErrInvalidArgument)
	}

	stamped := msg.WithOrigin(b.node)
	l := log.Ctx(ctx)

	metrics.MessagesBroadcast.WithLabelValues(metrics.ScopeLocal).Inc()
	if err := b.sink.Broadcast(stamped); err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.publishTimeout)
	defer cancel()

	if err := b.publisher.Publish(pubCtx, stamped); err != nil {
		metrics.BusPublishFailures.Inc()
		l.Error().Err(err).Str(log.FieldMessageID, stamped.ID).Str(log.FieldNodeID, b.node.String()).Msg("error publishing message to cluster")
		return nil
	}

	l.Debug().Str(log.FieldMessageID, stamped.ID).Str(log.FieldNodeID, b.node.String()).Msg("published message to cluster")
	return nil
}
