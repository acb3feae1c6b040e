package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind tags a chat event.
type Kind string

const (
	KindUserMessage  Kind = "message"
	KindSystemNotice Kind = "system"
)

// SystemSender is the sender name carried by every system notice.
const SystemSender = "system"

// Message is one chat event. It is treated as read-only once constructed;
// the only later change is the origin stamp applied by a clustered
// broadcaster, which works on a copy.
type Message struct {
	ID         string
	Kind       Kind
	Body       string
	Sender     string
	CreatedAt  time.Time
	OriginNode NodeID
}

// NewUserMessage builds a user message with a fresh id and the current time.
// An empty body or sender counts as absent.
func NewUserMessage(body, sender string) (*Message, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidArgument)
	}
	if sender == "" {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidArgument)
	}
	return &Message{
		ID:        NewMessageID(),
		Kind:      KindUserMessage,
		Body:      body,
		Sender:    sender,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewSystemNotice builds a system notice sent by SystemSender.
func NewSystemNotice(body string) (*Message, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrInvalidArgument)
	}
	return &Message{
		ID:        NewMessageID(),
		Kind:      KindSystemNotice,
		Body:      body,
		Sender:    SystemSender,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// JoinNotice announces that name joined the chat.
func JoinNotice(name string) *Message {
	msg, _ := NewSystemNotice(name + " joined the chat")
	return msg
}

// LeaveNotice announces that name left the chat.
func LeaveNotice(name string) *Message {
	msg, _ := NewSystemNotice(name + " left the chat")
	return msg
}

// Normalize turns a client supplied candidate into a message that is safe to
// broadcast. The sender is always overwritten and any origin node the client
// sent is dropped. A blank id or a zero timestamp is filled in; everything
// else is kept as received. The candidate is not modified.
func Normalize(candidate *Message, sender string) (*Message, error) {
	if candidate == nil {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidArgument)
	}
	if sender == "" {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidArgument)
	}

	msg := *candidate
	msg.Sender = sender
	msg.OriginNode = ""
	if strings.TrimSpace(msg.ID) == "" {
		msg.ID = NewMessageID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if msg.Kind == "" {
		msg.Kind = KindUserMessage
	}
	return &msg, nil
}

// WithOrigin returns a copy of m stamped with node.
func (m *Message) WithOrigin(node NodeID) *Message {
	stamped := *m
	stamped.OriginNode = node
	return &stamped
}

// IsFrom reports whether m was first published by node.
func (m *Message) IsFrom(node NodeID) bool {
	return m.OriginNode != "" && m.OriginNode == node
}

// NewMessageID returns a random collision resistant message id.
func NewMessageID() string {
	return uuid.NewString()
}
