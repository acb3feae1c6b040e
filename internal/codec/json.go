package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/weiawesome/wes-chat-relay/internal/domain"
)

// Codec converts messages to and from their wire payload.
type Codec interface {
	Encode(msg *domain.Message) ([]byte, error)
	Decode(payload []byte) (*domain.Message, error)
}

// wireMessage is the JSON record shared by websocket clients and the cluster bus.
type wireMessage struct {
	ID        string     `json:"id,omitempty"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Username  string     `json:"username,omitempty"`
	NodeID    string     `json:"nodeId,omitempty"`
}

// JSON is the default Codec.
type JSON struct{}

func NewJSON() JSON {
	return JSON{}
}

func (JSON) Encode(msg *domain.Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidArgument)
	}

	w := wireMessage{
		ID:       msg.ID,
		Type:     string(msg.Kind),
		Message:  msg.Body,
		Username: msg.Sender,
		NodeID:   msg.OriginNode.String(),
	}
	if !msg.CreatedAt.IsZero() {
		ts := msg.CreatedAt
		w.Timestamp = &ts
	}

	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}

func (JSON) Decode(payload []byte) (*domain.Message, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrDecode)
	}

	var w *wireMessage
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	if w == nil {
		return nil, fmt.Errorf("%w: null payload", domain.ErrDecode)
	}

	msg := &domain.Message{
		ID:         w.ID,
		Kind:       domain.Kind(w.Type),
		Body:       w.Message,
		Sender:     w.Username,
		OriginNode: domain.NodeID(w.NodeID),
	}
	if w.Timestamp != nil {
		msg.CreatedAt = *w.Timestamp
	}
	return msg, nil
}
