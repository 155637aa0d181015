package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// conn serializes writes on a WebSocket connection and bounds each write
// with a deadline. gorilla/websocket allows only one concurrent writer.
type conn struct {
	mu           sync.Mutex
	ws           *websocket.Conn
	writeTimeout time.Duration
}

func newConn(ws *websocket.Conn, writeTimeout time.Duration) *conn {
	return &conn{ws: ws, writeTimeout: writeTimeout}
}

// WriteJSON sends one outbound message as a JSON text frame.
func (c *conn) WriteJSON(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.ws.WriteJSON(msg)
}

// Close closes the underlying connection.
func (c *conn) Close() error {
	return c.ws.Close()
}
