package service

import (
	"context"

	"github.com/weiawesome/wes-chat-relay/internal/hub"
)

// ChatService holds the connection lifecycle use cases invoked by the
// transport.
type ChatService interface {
	OnJoin(ctx context.Context, handle hub.Handle, name string) error
	OnLeave(ctx context.Context, handle hub.Handle) error
	OnSend(ctx context.Context, handle hub.Handle, raw []byte) error
}
