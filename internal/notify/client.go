package notify

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// wsConn is the slice of *websocket.Conn the client needs; tests
// substitute an in-memory implementation.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

type Client struct {
	conn       wsConn
	send       chan []byte
	userID     uint
	subscribed map[string]struct{}

	mu     sync.Mutex
	closed bool
}

func NewClient(conn wsConn, userID uint, buf int) *Client {
	if buf <= 0 {
		buf = 16
	}
	return &Client{
		conn:       conn,
		send:       make(chan []byte, buf),
		userID:     userID,
		subscribed: make(map[string]struct{}),
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// trySend queues a frame without blocking. The send happens under the
// same lock close() takes, so no frame can ever hit a closed channel.
// Returns false when the client is closed or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// WritePump drains the send channel onto the connection. Runs until
// the hub detaches the client or a write fails.
func (c *Client) WritePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// ReadPump consumes (and discards) client frames so pings and close
// frames are processed; returns on disconnect.
func (c *Client) ReadPump() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
