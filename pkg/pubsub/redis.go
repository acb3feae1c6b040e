package pubsub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

const redisChannelSize = 1024

type redisSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
}

// RedisPubSub relays payloads over Redis PUBLISH/SUBSCRIBE. Each topic has at
// most one subscription; subscribing again replaces the previous handler.
type RedisPubSub struct {
	client        *redis.Client
	subscriptions map[string]*redisSubscription
	mu            sync.Mutex
}

// NewRedisPubSub connects to Redis and verifies the connection.
func NewRedisPubSub(cfg RedisConfig) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	return &RedisPubSub{
		client:        client,
		subscriptions: make(map[string]*redisSubscription),
	}, nil
}

func (r *RedisPubSub) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := r.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription.
func (r *RedisPubSub) Subscribe(ctx context.Context, topic string, handler Handler) error {
	ps := r.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &redisSubscription{
		pubsub: ps,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	r.mu.Lock()
	previous := r.subscriptions[topic]
	r.subscriptions[topic] = sub
	r.mu.Unlock()

	if previous != nil {
		previous.stop()
	}

	go r.processMessages(subCtx, topic, sub, safeHandler(DriverRedis, topic, handler))
	return nil
}

func (r *RedisPubSub) processMessages(ctx context.Context, topic string, sub *redisSubscription, handler Handler) {
	defer close(sub.done)

	ch := sub.pubsub.Channel(redis.WithChannelSize(redisChannelSize))
	l := log.L()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				l.Debug().Str(log.FieldTopic, topic).Msg("redis subscription closed")
				return
			}
			handler(ctx, []byte(msg.Payload))
		}
	}
}

func (s *redisSubscription) stop() {
	s.cancel()
	s.pubsub.Close()
	<-s.done
}

// Close stops every subscription, waits for in-flight handlers and closes
// the client.
func (r *RedisPubSub) Close() error {
	r.mu.Lock()
	subs := r.subscriptions
	r.subscriptions = make(map[string]*redisSubscription)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	return r.client.Close()
}
