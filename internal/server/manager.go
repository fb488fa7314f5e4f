package server

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjacktrainer/internal/game"
)

// eventQueueCap bounds the per-session event queue. Overflow drops the
// newest event; the engine is never blocked by a slow client, and the
// client reconciles against a fresh snapshot after any gap.
const eventQueueCap = 64

// Manager fans engine events out to push connections. Each session has at
// most one live connection and one bounded event queue; disconnection
// removes both but retains the session for reconnection.
type Manager struct {
	mu     sync.Mutex
	active map[string]*activeSession
	bound  map[string]bool
	logger *log.Logger
}

type activeSession struct {
	conn    *Connection
	queue   chan game.Event
	dropped int
}

// NewManager creates a connection manager
func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		active: make(map[string]*activeSession),
		bound:  make(map[string]bool),
		logger: logger.WithPrefix("manager"),
	}
}

// Bind subscribes the manager to a session's engine events. A session is
// bound once for the engine's lifetime; events emitted while no connection
// is attached are dropped.
func (m *Manager) Bind(gs *GameSession) {
	m.mu.Lock()
	if m.bound[gs.ID] {
		m.mu.Unlock()
		return
	}
	m.bound[gs.ID] = true
	m.mu.Unlock()

	gs.Do(func(engine *game.Engine) {
		engine.Events().SubscribeAll(func(event game.Event) {
			m.enqueue(gs.ID, event)
		})
	})
}

// Rebind attaches event forwarding to a session whose engine was replaced
// (reset_game). The old engine's subscription dies with the old engine.
func (m *Manager) Rebind(gs *GameSession) {
	m.mu.Lock()
	delete(m.bound, gs.ID)
	m.mu.Unlock()
	m.Bind(gs)
}

// enqueue adds an event to the session's queue without ever blocking.
// When the queue is full the incoming event is dropped.
func (m *Manager) enqueue(sessionID string, event game.Event) {
	m.mu.Lock()
	as, ok := m.active[sessionID]
	m.mu.Unlock()
	if !ok {
		return
	}

	select {
	case as.queue <- event:
	default:
		m.mu.Lock()
		as.dropped++
		dropped := as.dropped
		m.mu.Unlock()
		m.logger.Warn("event queue full, dropping event",
			"session_id", sessionID, "event", event.Type, "dropped_total", dropped)
	}
}

// Attach registers a connection for a session and starts its consumer.
// An existing connection for the same session is closed first.
func (m *Manager) Attach(gs *GameSession, conn *Connection) {
	as := &activeSession{
		conn:  conn,
		queue: make(chan game.Event, eventQueueCap),
	}

	m.mu.Lock()
	if prev, ok := m.active[gs.ID]; ok {
		_ = prev.conn.Close()
	}
	m.active[gs.ID] = as
	m.mu.Unlock()

	go m.consume(gs, as)
}

// Detach removes a connection. The engine and its session survive for
// reconnection; only the push channel and queue go away.
func (m *Manager) Detach(sessionID string, conn *Connection) {
	m.mu.Lock()
	as, ok := m.active[sessionID]
	if ok && as.conn == conn {
		delete(m.active, sessionID)
	}
	m.mu.Unlock()

	_ = conn.Close()
}

// ActiveConnections returns the number of attached push connections
func (m *Manager) ActiveConnections() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// consume drains a session's event queue, pairing each event with a fresh
// snapshot and pushing it to the client.
func (m *Manager) consume(gs *GameSession, as *activeSession) {
	for {
		select {
		case event := <-as.queue:
			var snap *Snapshot
			gs.Do(func(engine *game.Engine) {
				snap = SnapshotOf(engine)
			})
			if err := as.conn.Send(eventMessage(event, snap)); err != nil {
				return
			}
		case <-as.conn.Done():
			return
		}
	}
}
