package service

import (
	"context"
	"fmt"

	"github.com/weiawesome/wes-chat-relay/internal/audit"
	"github.com/weiawesome/wes-chat-relay/internal/broadcast"
	"github.com/weiawesome/wes-chat-relay/internal/codec"
	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/internal/hub"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

// Sessions is the part of the hub the use cases depend on.
type Sessions interface {
	Add(handle hub.Handle, displayName string) (bool, error)
	Remove(handle hub.Handle) (bool, error)
	DisplayName(handle hub.Handle) (string, bool)
}

type chatService struct {
	sessions    Sessions
	broadcaster broadcast.Broadcaster
	codec       codec.Codec
}

func NewChatService(sessions Sessions, b broadcast.Broadcaster, c codec.Codec) ChatService {
	return &chatService{
		sessions:    sessions,
		broadcaster: b,
		codec:       c,
	}
}

// OnJoin registers the connection and announces it to everyone.
func (s *chatService) OnJoin(ctx context.Context, handle hub.Handle, name string) error {
	if handle == nil {
		return fmt.Errorf("%w: handle is required", domain.ErrInvalidArgument)
	}
	added, err := s.sessions.Add(handle, name)
	if err != nil || !added {
		return err
	}

	audit.Log(ctx, audit.ActionJoin, handle.ID(), name, "client joined the chat")
	return s.broadcaster.Broadcast(ctx, domain.JoinNotice(name))
}

// OnLeave unregisters the connection and announces the departure. Leaving
// with a connection that never joined does nothing.
func (s *chatService) OnLeave(ctx context.Context, handle hub.Handle) error {
	if handle == nil {
		return fmt.Errorf("%w: handle is required", domain.ErrInvalidArgument)
	}

	name, ok := s.sessions.DisplayName(handle)
	if !ok {
		return nil
	}
	removed, err := s.sessions.Remove(handle)
	if err != nil || !removed {
		return err
	}

	audit.Log(ctx, audit.ActionLeave, handle.ID(), name, "client left the chat")
	return s.broadcaster.Broadcast(ctx, domain.LeaveNotice(name))
}

// OnSend decodes a raw client frame, stamps the connection's display name on
// it and broadcasts the result.
func (s *chatService) OnSend(ctx context.Context, handle hub.Handle, raw []byte) error {
	if handle == nil {
		return fmt.Errorf("%w: handle is required", domain.ErrInvalidArgument)
	}

	candidate, err := s.codec.Decode(raw)
	if err != nil {
		return err
	}

	name, ok := s.sessions.DisplayName(handle)
	if !ok {
		return fmt.Errorf("%w: client %s has not joined", domain.ErrInvalidArgument, handle.ID())
	}

	msg, err := domain.Normalize(candidate, name)
	if err != nil {
		return err
	}

	l := log.Ctx(ctx)
	l.Debug().Str(log.FieldClientID, handle.ID()).Str(log.FieldMessageID, msg.ID).Int("bytes", len(raw)).Msg("received chat message")
	audit.LogWithDetail(ctx, audit.ActionSend, handle.ID(), name, msg.ID, "client sent a message")

	return s.broadcaster.Broadcast(ctx, msg)
}
