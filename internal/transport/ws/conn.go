package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is what the hub fans out to. Tests substitute fakes.
type Conn interface {
	ID() string
	Send(msg Message) error
	Close() error
}

type wsConn struct {
	id     string
	conn   *websocket.Conn
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn) *wsConn {
	return &wsConn{
		id:     uuid.New().String(),
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

// Send serializes writers on the socket; gorilla allows one writer at
// a time.
func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
