package mediastream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn wraps a telephony websocket connection with frame parsing and an
// idempotent close. Reads happen from one goroutine; writes are serialized
// by a mutex so the relay loop and shutdown path never interleave frames.
type Conn struct {
	ws        *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an upgraded websocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// ReadEvent reads and parses the next inbound frame.
func (c *Conn) ReadEvent() (*Event, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	return ParseEvent(data)
}

// SetReadDeadline bounds the next read. Used for the initial start frame.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.ws.SetReadDeadline(t)
}

// WriteJSON sends one outbound event.
func (c *Conn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(v)
}

// Close closes the underlying connection. Safe to call from multiple
// shutdown paths; only the first call does anything.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
