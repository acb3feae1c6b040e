package hub

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/weiawesome/wes-chat-relay/internal/config"
	"github.com/weiawesome/wes-chat-relay/pkg/log"
)

var (
	ErrClientClosed = errors.New("client closed")
	ErrSlowConsumer = errors.New("client send buffer full")
)

// Client is a websocket connection registered in the hub.
type Client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	config    config.WebSocketConfig
}

func NewClient(id string, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	size := cfg.SendBufferSize
	if size <= 0 {
		size = 256
	}
	return &Client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, size),
		done:   make(chan struct{}),
		config: cfg,
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues payload for the write pump without blocking. A client whose
// buffer is full is closed so it cannot stall the rest of the hub.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.Close()
		return ErrSlowConsumer
	}
}

// Close terminates the connection. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// ReadPump passes every inbound frame to handler until the connection ends,
// then calls onClose exactly once.
func (c *Client) ReadPump(handler func(*Client, []byte), onClose func(*Client)) {
	defer func() {
		c.Close()
		onClose(c)
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldClientID, c.id).Msg("websocket read error")
			}
			break
		}

		handler(c, message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
