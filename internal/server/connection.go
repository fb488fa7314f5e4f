package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffered outbound messages per connection
	sendBufferSize = 64
)

var errConnectionClosed = websocket.ErrCloseSent

// Connection wraps one websocket client. Incoming messages are handed to
// the receive callback; outgoing messages flow through a buffered send
// channel drained by the write pump.
type Connection struct {
	id        string
	sessionID string
	conn      *websocket.Conn
	send      chan *ServerMessage
	receive   func(*ClientMessage)
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps an upgraded websocket. The receive callback runs on
// the read pump goroutine, one message at a time.
func NewConnection(conn *websocket.Conn, sessionID string, logger *log.Logger, receive func(*ClientMessage)) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	id := uuid.NewString()
	return &Connection{
		id:        id,
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan *ServerMessage, sendBufferSize),
		receive:   receive,
		logger:    logger.WithPrefix("conn").With("conn_id", id, "session_id", sessionID),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ID returns the unique connection identifier (for log correlation)
func (c *Connection) ID() string {
	return c.id
}

// SessionID returns the session this connection is bound to
func (c *Connection) SessionID() string {
	return c.sessionID
}

// Start begins the read and write pumps
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed when the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close tears the connection down. Safe to call more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Send queues a message for the client. A full buffer closes the
// connection rather than blocking the caller.
func (c *Connection) Send(msg *ServerMessage) error {
	defer func() {
		if r := recover(); r != nil {
			// Send channel closed during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return errConnectionClosed
	}
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read failed", "error", err)
			}
			return
		}

		c.receive(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
