package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/weiawesome/wes-chat-relay/internal/config"
	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/internal/hub"
	"github.com/weiawesome/wes-chat-relay/internal/service"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

// UnknownUsername is used when a client connects without a username.
const UnknownUsername = "{unknown}"

// WSHandler upgrades chat connections and drives the chat use cases.
type WSHandler struct {
	service  service.ChatService
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(svc service.ChatService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		service: svc,
		wsCfg:   wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	rl := log.Ctx(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rl.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(uuid.New().String(), conn, h.wsCfg)
	username := UsernameFromRequest(r)

	ctx, child := log.WithClient(r.Context(), client.ID(), username)

	if err := h.service.OnJoin(ctx, client, username); err != nil {
		child.Error().Err(err).Msg("join failed")
		client.Close()
		return
	}
	child.Info().Msg("client connected")

	go client.WritePump()
	go client.ReadPump(
		func(c *hub.Client, message []byte) {
			h.handleMessage(ctx, c, message)
		},
		func(c *hub.Client) {
			if err := h.service.OnLeave(ctx, c); err != nil {
				child.Error().Err(err).Msg("leave failed")
			}
			child.Info().Msg("client disconnected")
		},
	)
}

func (h *WSHandler) handleMessage(ctx context.Context, c *hub.Client, message []byte) {
	if err := h.service.OnSend(ctx, c, message); err != nil {
		l := log.Ctx(ctx)
		if errors.Is(err, domain.ErrDecode) {
			l.Warn().Err(err).Int("bytes", len(message)).Msg("invalid message format")
			return
		}
		l.Error().Err(err).Msg("send failed")
	}
}

func (h *WSHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(h.wsCfg.Path, h.HandleWebSocket).Methods(http.MethodGet)
}

// UsernameFromRequest resolves the display name from the "username" query
// parameter, falling back to UnknownUsername.
func UsernameFromRequest(r *http.Request) string {
	name := strings.TrimSpace(r.URL.Query().Get("username"))
	if name == "" {
		return UnknownUsername
	}
	return name
}
