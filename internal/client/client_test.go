package client

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjacktrainer/internal/server"
	"github.com/lox/blackjacktrainer/internal/session"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := server.DefaultConfig()
	cfg.Session.SecretKey = "client-test-secret"

	store := session.NewMemoryStore(quartz.NewReal())
	srv, err := server.New(cfg, store, log.New(io.Discard))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClientPlaysARound(t *testing.T) {
	ts := startServer(t)

	c := New(ts.URL, log.New(io.Discard))
	defer c.Close()

	require.NoError(t, c.NewGame(context.Background()))
	require.NotEmpty(t, c.SessionID())
	require.NotEmpty(t, c.Token())

	require.NoError(t, c.Connect())
	require.True(t, c.IsConnected())

	// The server pushes the initial snapshot on connect
	msg, err := c.WaitForMessage(server.ServerMessageStateUpdate, 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg.State)
	assert.Equal(t, "WAITING_FOR_BET", msg.State.State)

	// Betting streams round events
	events := make(chan *server.ServerMessage, 64)
	c.OnMessage(server.ServerMessageEvent, func(m *server.ServerMessage) {
		select {
		case events <- m:
		default:
		}
	})
	require.NoError(t, c.Bet(100))

	deadline := time.After(5 * time.Second)
	seen := map[string]bool{}
	for !seen["ROUND_STARTED"] {
		select {
		case m := <-events:
			seen[m.EventType] = true
			require.NotNil(t, m.State, "event %s missing snapshot", m.EventType)
		case <-deadline:
			t.Fatalf("timed out waiting for round start, saw %v", seen)
		}
	}
	assert.True(t, seen["BET_PLACED"])
	assert.True(t, seen["CARD_DEALT"])
}

func TestClientErrorPush(t *testing.T) {
	ts := startServer(t)

	c := New(ts.URL, log.New(io.Discard))
	defer c.Close()

	require.NoError(t, c.NewGame(context.Background()))
	require.NoError(t, c.Connect())

	// A bet below the table minimum is always rejected
	require.NoError(t, c.Bet(1))
	msg, err := c.WaitForMessage(server.ServerMessageError, 5*time.Second)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Message)
}

func TestClientConnectWithoutSession(t *testing.T) {
	c := New("http://localhost:0", log.New(io.Discard))
	defer c.Close()

	err := c.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no session")
}

func TestClientCloseIdempotent(t *testing.T) {
	ts := startServer(t)

	c := New(ts.URL, log.New(io.Discard))
	require.NoError(t, c.NewGame(context.Background()))
	require.NoError(t, c.Connect())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.False(t, c.IsConnected())
}
