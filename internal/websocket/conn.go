package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn wraps a single WebSocket connection with a buffered outbox.
// Writes go through Enqueue so that a slow client never blocks the
// goroutine fanning out a broadcast.
type Conn struct {
	id     string
	ws     *websocket.Conn
	send   chan []byte
	mutex  sync.RWMutex
	closed bool
}

// NewConn wraps an upgraded WebSocket connection
func NewConn(ws *websocket.Conn, sendBuffer int) *Conn {
	return &Conn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}
}

// ID returns the connection ID
func (c *Conn) ID() string {
	return c.id
}

// Socket returns the underlying WebSocket connection
func (c *Conn) Socket() *websocket.Conn {
	return c.ws
}

// Outbox returns the channel the write pump drains. The channel is
// closed when the connection is closed.
func (c *Conn) Outbox() <-chan []byte {
	return c.send
}

// Enqueue queues a payload for delivery. It reports false when the
// connection is closed or its outbox is full.
func (c *Conn) Enqueue(payload []byte) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close closes the outbox and the underlying socket. Safe to call
// more than once.
func (c *Conn) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.ws != nil {
		c.ws.Close()
	}
}
