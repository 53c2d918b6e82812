package ws

import (
	"errors"
	"sync"
	"time"

	"seabattle/internal/session"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

var (
	errClosed       = errors.New("connection closed")
	errSlowConsumer = errors.New("client is not reading its messages")
)

// client owns the write side of one connection. Messages are queued on send
// and written by writeLoop, so senders never wait on the network.
type client struct {
	id   string
	conn *websocket.Conn
	send chan session.Message

	mu     sync.Mutex
	closed bool
	reason string
}

func newClient(id string, conn *websocket.Conn, buffer int) *client {
	return &client{id: id, conn: conn, send: make(chan session.Message, buffer)}
}

func (c *client) enqueue(msg session.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.shut("too slow")
		return errSlowConsumer
	}
}

func (c *client) alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// close flushes what is already queued, then sends a close frame.
func (c *client) close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shut(reason)
}

// shut requires c.mu.
func (c *client) shut(reason string) {
	if c.closed {
		return
	}
	c.closed = true
	c.reason = reason
	close(c.send)
}

func (c *client) writeLoop() {
	broken := false
	for msg := range c.send {
		if broken {
			continue
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			log.WithField("player", c.id).WithError(err).Warn("write failed")
			broken = true
			_ = c.conn.Close()
		}
	}
	if broken {
		return
	}
	c.mu.Lock()
	reason := c.reason
	c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), time.Now().Add(writeWait))
	_ = c.conn.Close()
}
