// Package ws adapts gorilla websocket connections to the coordinator's Conn
// contract: a buffered send channel drained by a single writer goroutine
// gives per-connection FIFO delivery without ever blocking a sender.
package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

const sendBuffer = 32

type Conn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newConn(wc *websocket.Conn) *Conn {
	return &Conn{
		conn: wc,
		send: make(chan []byte, sendBuffer),
	}
}

// TrySend queues one frame without blocking; a full buffer means the peer
// is too slow and the frame is refused.
func (c *Conn) TrySend(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- frame:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// writePump is the connection's single writer. It also keeps the link alive
// with control pings every pingPeriod.
func (c *Conn) writePump(ctx context.Context, pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
