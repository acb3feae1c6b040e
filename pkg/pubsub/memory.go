package pubsub

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a MemoryPubSub after Close.
var ErrClosed = errors.New("pubsub closed")

const memoryBufferSize = 256

type memorySubscription struct {
	ch     chan []byte
	cancel context.CancelFunc
}

// MemoryPubSub is an in-process PubSub. Every subscription receives its own
// copy of each payload published after it was created. Publishing to a full
// subscription drops the payload for that subscription only.
type MemoryPubSub struct {
	subscriptions map[string][]*memorySubscription // topic -> subscriptions
	closed        bool
	mu            sync.RWMutex
	wg            sync.WaitGroup
}

func NewMemoryPubSub() *MemoryPubSub {
	return &MemoryPubSub{
		subscriptions: make(map[string][]*memorySubscription),
	}
}

func (m *MemoryPubSub) Publish(ctx context.Context, topic string, payload []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	for _, sub := range m.subscriptions[topic] {
		data := append([]byte(nil), payload...)
		select {
		case sub.ch <- data:
		default:
			// Subscription full, skip message
		}
	}
	return nil
}

func (m *MemoryPubSub) Subscribe(ctx context.Context, topic string, handler Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &memorySubscription{
		ch:     make(chan []byte, memoryBufferSize),
		cancel: cancel,
	}
	m.subscriptions[topic] = append(m.subscriptions[topic], sub)

	handler = safeHandler(DriverMemory, topic, handler)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-subCtx.Done():
				return
			case payload := <-sub.ch:
				handler(subCtx, payload)
			}
		}
	}()

	return nil
}

// Close stops every subscription and waits for their handlers to return.
func (m *MemoryPubSub) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, subs := range m.subscriptions {
		for _, sub := range subs {
			sub.cancel()
		}
	}
	m.subscriptions = make(map[string][]*memorySubscription)
	m.mu.Unlock()

	m.wg.Wait()
	return nil
}
