package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	// ErrClosed is returned when sending on a connection that was closed.
	ErrClosed = errors.New("connection closed")
	// ErrSendBufferFull is returned when the peer is not draining its send
	// buffer fast enough.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Connection wraps one live transport session. The send channel is drained
// by the write pump, so SendMessage never blocks the caller.
type Connection struct {
	ID   string
	Conn *websocket.Conn

	mu     sync.RWMutex
	send   chan []byte
	closed bool
}

// NewConnection creates a connection handle around an upgraded socket.
func NewConnection(conn *websocket.Conn, buffer int) *Connection {
	return &Connection{
		ID:   uuid.NewString(),
		Conn: conn,
		send: make(chan []byte, buffer),
	}
}

// GetID returns the connection ID.
func (c *Connection) GetID() string {
	return c.ID
}

// SendMessage queues a payload for the write pump.
func (c *Connection) SendMessage(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendChannel exposes the queue the write pump drains. Already-queued
// payloads are still delivered after Close; the pump then emits a
// normal-closure frame.
func (c *Connection) SendChannel() <-chan []byte {
	return c.send
}

// Close stops further sends and signals the write pump to terminate the
// socket. Safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return nil
}
