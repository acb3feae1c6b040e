package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/weiawesome/wes-chat-relay/internal/config"
)

func newTestConn(t *testing.T) *websocket.Conn {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	select {
	case conn := <-conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("server side connection was not accepted")
		return nil
	}
}

func TestClient_SlowConsumerIsClosed(t *testing.T) {
	req := require.New(t)
	c := NewClient("c-1", newTestConn(t), config.WebSocketConfig{SendBufferSize: 1})

	// Given nothing drains the send buffer
	req.NoError(c.Send([]byte("one")))

	// When the buffer is full
	err := c.Send([]byte("two"))

	// Then the client is closed
	req.ErrorIs(err, ErrSlowConsumer)
	select {
	case <-c.Done():
	default:
		req.Fail("client should be closed")
	}
	req.ErrorIs(c.Send([]byte("three")), ErrClientClosed)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := NewClient("c-1", newTestConn(t), config.WebSocketConfig{})
	c.Close()
	c.Close()
	require.ErrorIs(t, c.Send([]byte("hi")), ErrClientClosed)
}
