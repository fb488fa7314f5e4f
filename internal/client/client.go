// Package client is a websocket client for the trainer server, used
// by the TUI and the scripted examples. It reuses the server's wire
// message types rather than redeclaring them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjacktrainer/internal/server"
)

// EventHandler receives incoming server messages.
type EventHandler func(*server.ServerMessage)

// Client talks to a trainer server: REST for session creation, a
// websocket for play.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger

	conn    *websocket.Conn
	send    chan *server.ClientMessage
	receive chan *server.ServerMessage

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.RWMutex
	connected bool
	sessionID string
	token     string
	handlers  map[string][]EventHandler
}

// New creates a client for a server base URL like
// "http://localhost:8080".
func New(baseURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger.WithPrefix("client"),
		send:     make(chan *server.ClientMessage, 256),
		receive:  make(chan *server.ServerMessage, 256),
		ctx:      ctx,
		cancel:   cancel,
		handlers: make(map[string][]EventHandler),
	}
}

type newGameResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// NewGame creates a fresh session over REST and remembers its id and
// signed token.
func (c *Client) NewGame(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/game/new", bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("creating game: server returned %s", resp.Status)
	}

	var created newGameResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return fmt.Errorf("creating game: %w", err)
	}

	c.mu.Lock()
	c.sessionID = created.SessionID
	c.token = created.Token
	c.mu.Unlock()

	c.logger.Info("created session", "session_id", created.SessionID)
	return nil
}

// Connect dials the websocket for the current session. NewGame must
// have been called, or ResumeSession used to set an existing id.
func (c *Client) Connect() error {
	id := c.SessionID()
	if id == "" {
		return fmt.Errorf("no session: call NewGame first")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws/" + id

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", u.String(), err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.dispatch()

	c.logger.Info("connected", "url", u.String())
	return nil
}

// ResumeSession points the client at an existing session id without
// creating a new game.
func (c *Client) ResumeSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.connected = false
		}
	})
	return nil
}

// IsConnected reports whether the websocket is up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SessionID returns the current session id.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Token returns the signed session token from NewGame.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Send queues a raw client message.
func (c *Client) Send(msg *server.ClientMessage) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// Bet places a wager to start a round.
func (c *Client) Bet(amount int64) error {
	return c.Send(&server.ClientMessage{Type: server.ClientMessageBet, Amount: amount})
}

// Action plays an action on the active hand: hit, stand, double,
// split, surrender, insurance, decline_insurance.
func (c *Client) Action(action string) error {
	return c.Send(&server.ClientMessage{Type: server.ClientMessageAction, Action: action})
}

// Insure takes a partial insurance bet.
func (c *Client) Insure(amount int64) error {
	return c.Send(&server.ClientMessage{Type: server.ClientMessageAction, Action: "insurance", Amount: amount})
}

// GetState asks for a fresh snapshot push.
func (c *Client) GetState() error {
	return c.Send(&server.ClientMessage{Type: server.ClientMessageGetState})
}

// NewRound acknowledges the end of a round.
func (c *Client) NewRound() error {
	return c.Send(&server.ClientMessage{Type: server.ClientMessageNewRound})
}

// ResetGame restarts the session with a fresh bankroll.
func (c *Client) ResetGame() error {
	return c.Send(&server.ClientMessage{Type: server.ClientMessageResetGame})
}

// OnMessage registers a handler for a message type
// (server.ServerMessageStateUpdate, Event, Error). Handlers run on the
// dispatch goroutine; keep them quick.
func (c *Client) OnMessage(messageType string, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[messageType] = append(c.handlers[messageType], handler)
}

// WaitForMessage blocks until a message of the given type arrives.
func (c *Client) WaitForMessage(messageType string, timeout time.Duration) (*server.ServerMessage, error) {
	ch := make(chan *server.ServerMessage, 1)
	c.OnMessage(messageType, func(msg *server.ServerMessage) {
		select {
		case ch <- msg:
		default:
		}
	})

	select {
	case msg := <-ch:
		return msg, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for %s", messageType)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		var msg server.ServerMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket read", "error", err)
			}
			return
		}

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("websocket write", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) dispatch() {
	for {
		select {
		case msg := <-c.receive:
			c.mu.RLock()
			handlers := c.handlers[msg.Type]
			c.mu.RUnlock()
			for _, handler := range handlers {
				handler(msg)
			}
		case <-c.ctx.Done():
			return
		}
	}
}
