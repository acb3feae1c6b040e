package hub

import (
	"fmt"
	"sync"

	"github.com/weiawesome/wes-chat-relay/internal/codec"
	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/internal/metrics"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

//go:generate go run go.uber.org/mock/mockgen -destination=../mocks/mock_handle.go -package=mocks . Handle

// Handle is one connected client as seen by the hub.
type Handle interface {
	// ID identifies the connection for registry membership.
	ID() string
	// Send delivers an encoded payload to the client.
	Send(payload []byte) error
}

type entry struct {
	handle      Handle
	displayName string
}

// Hub is the registry of clients connected to this node. It is safe for
// concurrent use; every Broadcast delivers to the membership snapshot taken
// when the call starts.
type Hub struct {
	clients map[string]entry // clientID -> entry
	codec   codec.Codec
	mu      sync.RWMutex
}

func NewHub(c codec.Codec) *Hub {
	return &Hub{
		clients: make(map[string]entry),
		codec:   c,
	}
}

// Add registers handle under displayName and reports whether it was added.
// Adding a handle that is already present is a no-op and keeps the name it
// joined with.
func (h *Hub) Add(handle Handle, displayName string) (bool, error) {
	if handle == nil {
		return false, fmt.Errorf("%w: handle is required", domain.ErrInvalidArgument)
	}

	h.mu.Lock()
	if _, ok := h.clients[handle.ID()]; ok {
		h.mu.Unlock()
		return false, nil
	}
	h.clients[handle.ID()] = entry{handle: handle, displayName: displayName}
	h.mu.Unlock()

	metrics.ConnectedClients.Inc()
	l := log.L()
	l.Debug().Str(log.FieldClientID, handle.ID()).Str(log.FieldUsername, displayName).Msg("client registered")
	return true, nil
}

// Remove unregisters handle and reports whether it was present. Removing an
// absent handle is a no-op.
func (h *Hub) Remove(handle Handle) (bool, error) {
	if handle == nil {
		return false, fmt.Errorf("%w: handle is required", domain.ErrInvalidArgument)
	}

	h.mu.Lock()
	if _, ok := h.clients[handle.ID()]; !ok {
		h.mu.Unlock()
		return false, nil
	}
	delete(h.clients, handle.ID())
	h.mu.Unlock()

	metrics.ConnectedClients.Dec()
	l := log.L()
	l.Debug().Str(log.FieldClientID, handle.ID()).Msg("client unregistered")
	return true, nil
}

// DisplayName returns the name handle joined with.
func (h *Hub) DisplayName(handle Handle) (string, bool) {
	if handle == nil {
		return "", false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.clients[handle.ID()]
	return e.displayName, ok
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes msg once and sends it to every registered client. A
// failed send is logged and does not stop delivery to the others.
func (h *Hub) Broadcast(msg *domain.Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is required", domain.ErrInvalidArgument)
	}

	l := log.L()

	data, err := h.codec.Encode(msg)
	if err != nil {
		l.Error().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to encode message")
		return nil
	}

	for _, handle := range h.snapshot() {
		if err := deliver(handle, data); err != nil {
			metrics.DeliveryFailures.Inc()
			l.Warn().Err(err).Str(log.FieldClientID, handle.ID()).Str(log.FieldMessageID, msg.ID).Msg("failed to deliver message")
		}
	}
	return nil
}

func (h *Hub) snapshot() []Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()

	handles := make([]Handle, 0, len(h.clients))
	for _, e := range h.clients {
		handles = append(handles, e.handle)
	}
	return handles
}

// deliver isolates one recipient, including a handle that panics.
func deliver(handle Handle, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrDelivery, r)
		}
	}()

	if err := handle.Send(data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}
	return nil
}

// CloseAll closes every registered client that supports it. Each closed
// client leaves the hub through its own disconnect path.
func (h *Hub) CloseAll() {
	for _, handle := range h.snapshot() {
		if c, ok := handle.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
