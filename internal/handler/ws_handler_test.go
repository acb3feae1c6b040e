package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-chat-relay/internal/broadcast"
	"github.com/weiawesome/wes-chat-relay/internal/cluster"
	"github.com/weiawesome/wes-chat-relay/internal/codec"
	"github.com/weiawesome/wes-chat-relay/internal/config"
	"github.com/weiawesome/wes-chat-relay/internal/domain"
	"github.com/weiawesome/wes-chat-relay/internal/hub"
	"github.com/weiawesome/wes-chat-relay/internal/service"
	"github.com/weiawesome/wes-chat-relay/pkg/pubsub"
)

var testWSConfig = config.WebSocketConfig{
	Path:           "/chat",
	PingInterval:   30 * time.Second,
	PongWait:       60 * time.Second,
	WriteWait:      10 * time.Second,
	MaxMessageSize: 4096,
	SendBufferSize: 16,
}

type wireFrame struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
	NodeID    string `json:"nodeId"`
}

func startNode(t *testing.T, node domain.NodeID, bus pubsub.PubSub) (*httptest.Server, *hub.Hub) {
	t.Helper()
	c := codec.NewJSON()
	h := hub.NewHub(c)

	var b broadcast.Broadcaster = broadcast.NewLocal(h)
	if bus != nil {
		adapter := cluster.NewAdapter(bus, "chat-messages", node, c, h)
		require.NoError(t, adapter.Subscribe(context.Background()))
		b = broadcast.NewClustered(node, h, adapter, time.Second)
	}

	router := mux.NewRouter()
	NewWSHandler(service.NewChatService(h, b, c), testWSConfig).RegisterRoutes(router)
	NewHTTPHandler(node, config.ModeCluster, h, nil).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		h.CloseAll()
		srv.Close()
	})
	return srv, h
}

func dial(t *testing.T, srv *httptest.Server, username string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat"
	if username != "" {
		url += "?username=" + username
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	var f wireFrame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

// readUntil skips frames until one carries body.
func readUntil(t *testing.T, conn *websocket.Conn, body string) wireFrame {
	t.Helper()
	for {
		if f := readFrame(t, conn); f.Message == body {
			return f
		}
	}
}

func TestWSHandler_LocalChat(t *testing.T) {
	req := require.New(t)
	srv, h := startNode(t, "A", nil)

	alice := dial(t, srv, "alice")
	req.Equal("alice joined the chat", readFrame(t, alice).Message)

	bob := dial(t, srv, "bob")
	req.Equal("bob joined the chat", readFrame(t, bob).Message)
	req.Equal("bob joined the chat", readFrame(t, alice).Message)
	req.Equal(2, h.Count())

	// When alice sends a message
	req.NoError(alice.WriteJSON(map[string]string{"type": "message", "message": "hi", "username": "mallory"}))

	// Then both clients receive it from alice
	for _, conn := range []*websocket.Conn{alice, bob} {
		f := readFrame(t, conn)
		req.Equal("message", f.Type)
		req.Equal("hi", f.Message)
		req.Equal("alice", f.Username)
		req.NotEmpty(f.ID)
		req.NotEmpty(f.Timestamp)
		req.Empty(f.NodeID)
	}

	// When bob disconnects, alice is told
	req.NoError(bob.Close())
	f := readFrame(t, alice)
	req.Equal("system", f.Type)
	req.Equal("bob left the chat", f.Message)
}

func TestWSHandler_MalformedFrameKeepsConnection(t *testing.T) {
	req := require.New(t)
	srv, _ := startNode(t, "A", nil)

	alice := dial(t, srv, "alice")
	readFrame(t, alice)

	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	req.NoError(alice.WriteJSON(map[string]string{"type": "message", "message": "still here"}))

	req.Equal("still here", readFrame(t, alice).Message)
}

func TestWSHandler_UnknownUsername(t *testing.T) {
	srv, _ := startNode(t, "A", nil)

	conn := dial(t, srv, "")
	require.Equal(t, UnknownUsername+" joined the chat", readFrame(t, conn).Message)
}

func TestWSHandler_ClusterRelay(t *testing.T) {
	req := require.New(t)
	bus := pubsub.NewMemoryPubSub()
	t.Cleanup(func() { bus.Close() })

	srvA, _ := startNode(t, "A", bus)
	srvB, _ := startNode(t, "B", bus)

	bob := dial(t, srvB, "bob")
	req.Equal("bob joined the chat", readFrame(t, bob).Message)

	alice := dial(t, srvA, "alice")
	readUntil(t, alice, "alice joined the chat")

	// Then bob on B hears about alice joining A
	f := readFrame(t, bob)
	req.Equal("alice joined the chat", f.Message)
	req.Equal("A", f.NodeID)

	// When alice sends on A
	req.NoError(alice.WriteJSON(map[string]string{"type": "message", "message": "hi"}))

	// Then bob receives it with A as the origin
	f = readFrame(t, bob)
	req.Equal("hi", f.Message)
	req.Equal("alice", f.Username)
	req.Equal("A", f.NodeID)

	// And alice receives her own message exactly once
	f = readUntil(t, alice, "hi")
	req.Equal("A", f.NodeID)
	req.NoError(alice.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	_, _, err := alice.ReadMessage()
	req.Error(err)
}

func TestUsernameFromRequest(t *testing.T) {
	tests := map[string]string{
		"/chat?username=alice":     "alice",
		"/chat?username=%20bob%20": "bob",
		"/chat?username=":          UnknownUsername,
		"/chat":                    UnknownUsername,
	}

	for target, want := range tests {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		require.Equal(t, want, UsernameFromRequest(r), target)
	}
}
