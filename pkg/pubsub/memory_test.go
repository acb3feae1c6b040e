package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("no payload received")
		return nil
	}
}

func TestMemoryPubSub_FanOut(t *testing.T) {
	req := require.New(t)
	bus := NewMemoryPubSub()
	defer bus.Close()
	ctx := context.Background()

	first := make(chan []byte, 1)
	second := make(chan []byte, 1)
	req.NoError(bus.Subscribe(ctx, "chat", func(ctx context.Context, payload []byte) { first <- payload }))
	req.NoError(bus.Subscribe(ctx, "chat", func(ctx context.Context, payload []byte) { second <- payload }))

	payload := []byte("hello")
	req.NoError(bus.Publish(ctx, "chat", payload))

	// Then each subscriber gets its own copy
	got := receive(t, first)
	req.Equal("hello", string(got))
	req.Equal("hello", string(receive(t, second)))

	payload[0] = 'j'
	req.Equal("hello", string(got))
}

func TestMemoryPubSub_TopicsAreIsolated(t *testing.T) {
	req := require.New(t)
	bus := NewMemoryPubSub()
	defer bus.Close()
	ctx := context.Background()

	other := make(chan []byte, 1)
	req.NoError(bus.Subscribe(ctx, "other", func(ctx context.Context, payload []byte) { other <- payload }))
	req.NoError(bus.Publish(ctx, "chat", []byte("hello")))

	select {
	case <-other:
		req.Fail("payload leaked to another topic")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryPubSub_Closed(t *testing.T) {
	req := require.New(t)
	bus := NewMemoryPubSub()
	req.NoError(bus.Close())
	req.NoError(bus.Close())

	req.ErrorIs(bus.Publish(context.Background(), "chat", []byte("x")), ErrClosed)
	req.ErrorIs(bus.Subscribe(context.Background(), "chat", func(context.Context, []byte) {}), ErrClosed)
}

func TestMemoryPubSub_SubscriptionEndsWithContext(t *testing.T) {
	req := require.New(t)
	bus := NewMemoryPubSub()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan []byte, 1)
	req.NoError(bus.Subscribe(ctx, "chat", func(ctx context.Context, payload []byte) { received <- payload }))
	cancel()

	time.Sleep(50 * time.Millisecond)
	req.NoError(bus.Publish(context.Background(), "chat", []byte("late")))

	select {
	case <-received:
		req.Fail("canceled subscription still delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryPubSub_HandlerPanicKeepsSubscription(t *testing.T) {
	req := require.New(t)
	bus := NewMemoryPubSub()
	defer bus.Close()
	ctx := context.Background()

	received := make(chan []byte, 1)
	req.NoError(bus.Subscribe(ctx, "chat", func(ctx context.Context, payload []byte) {
		if string(payload) == "boom" {
			panic("boom")
		}
		received <- payload
	}))

	req.NoError(bus.Publish(ctx, "chat", []byte("boom")))
	req.NoError(bus.Publish(ctx, "chat", []byte("ok")))
	req.Equal("ok", string(receive(t, received)))
}
