package tui

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjacktrainer/internal/client"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		eventType string
		data      map[string]any
		contains  string
	}{
		{string(game.EventBetPlaced), map[string]any{"amount": "100"}, "bet placed: $100"},
		{string(game.EventCardDealt), map[string]any{"card": "K♠", "hand": "player"}, "card dealt to player"},
		{string(game.EventCardDealt), map[string]any{"card": game.HiddenCard, "hand": "dealer"}, hiddenGlyph},
		{string(game.EventPlayerBlackjack), nil, "blackjack!"},
		{string(game.EventDealerReveals), map[string]any{"card": "7♦", "hand_value": 17}, "dealer reveals"},
		{string(game.EventPush), nil, "push"},
		{string(game.EventRoundEnded), map[string]any{"result": "-100"}, "net $-100"},
	}

	for _, test := range tests {
		entry := formatEvent(test.eventType, test.data)
		assert.Contains(t, entry, test.contains, "event: %s", test.eventType)
	}
}

func TestFormatEventIgnoresUnknown(t *testing.T) {
	assert.Empty(t, formatEvent("SOMETHING_ELSE", nil))
}

func TestFormatCardViews(t *testing.T) {
	cards := []server.CardView{
		{Rank: "A", Suit: "♥", Value: 11},
		{Rank: "?", Suit: "?", Hidden: true},
	}

	out := formatCardViews(cards)
	assert.Contains(t, out, "A♥")
	assert.Contains(t, out, hiddenGlyph)
	assert.NotContains(t, out, "?♠")

	assert.NotEmpty(t, formatCardViews(nil))
}

func TestPlayModelHandlesPushes(t *testing.T) {
	c := client.New("http://localhost:0", quietLogger())
	m := NewPlayModel(c, quietLogger())

	require.Nil(t, m.snapshot)

	snap := &server.Snapshot{State: "WAITING_FOR_BET", Bankroll: "1000"}
	m.handleServerMessage(&server.ServerMessage{Type: server.ServerMessageStateUpdate, State: snap})
	require.NotNil(t, m.snapshot)
	assert.Equal(t, "WAITING_FOR_BET", m.snapshot.State)

	m.handleServerMessage(&server.ServerMessage{
		Type:      server.ServerMessageEvent,
		EventType: string(game.EventPlayerStand),
		State:     &server.Snapshot{State: "DEALER_TURN", Bankroll: "1000"},
	})
	assert.Equal(t, "DEALER_TURN", m.snapshot.State)
	require.NotEmpty(t, m.gameLog)
	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "stand")

	m.handleServerMessage(&server.ServerMessage{Type: server.ServerMessageError, Message: "Bet must be between 10 and 1000"})
	assert.Equal(t, "Bet must be between 10 and 1000", m.lastError)
	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "Bet must be between")
}

func TestPlayModelViewBeforeState(t *testing.T) {
	c := client.New("http://localhost:0", quietLogger())
	m := NewPlayModel(c, quietLogger())
	m.width = 80
	m.height = 24

	view := m.View()
	assert.Contains(t, view, "waiting for first state update")
}

func TestPlayModelRendersSnapshot(t *testing.T) {
	c := client.New("http://localhost:0", quietLogger())
	m := NewPlayModel(c, quietLogger())
	m.width = 100
	m.height = 30

	value := 12
	showing := 10
	m.snapshot = &server.Snapshot{
		State:            "PLAYER_TURN",
		Bankroll:         "900",
		CurrentHandIndex: 0,
		DealerShowing:    &showing,
		DealerHand: server.DealerView{Cards: []server.CardView{
			{Rank: "10", Suit: "♠", Value: 10},
			{Rank: "?", Suit: "?", Hidden: true},
		}},
		PlayerHands: []server.HandView{{
			Cards: []server.CardView{
				{Rank: "7", Suit: "♥", Value: 7},
				{Rank: "5", Suit: "♣", Value: 5},
			},
			Value: value,
			Bet:   100,
		}},
		CanHit:             true,
		CanStand:           true,
		ShoeCardsRemaining: 300,
		ShoeDecksRemaining: 5.77,
	}

	view := m.View()
	assert.Contains(t, view, "PLAYER_TURN")
	assert.Contains(t, view, "bankroll $900")
	assert.Contains(t, view, hiddenGlyph)
	assert.Contains(t, view, "showing 10")
	assert.Contains(t, view, "bet $100")
	assert.Contains(t, view, "[hit]")
	assert.Contains(t, view, "[stand]")
	assert.NotContains(t, view, "[double]")
	assert.Contains(t, view, "300 cards")
}

func TestDrillFlow(t *testing.T) {
	m := NewDrillModel("hilo", 5, time.Millisecond, quietLogger())
	require.Len(t, m.cards, 5)
	require.Equal(t, drillShowing, m.phase)

	for i := 0; i < 5; i++ {
		m.Update(flipMsg{})
	}
	require.Equal(t, drillEntering, m.phase)
	assert.Equal(t, 5, m.system.CardsSeen())

	// Extra flips after the run are ignored
	m.Update(flipMsg{})
	assert.Equal(t, 5, m.system.CardsSeen())

	m.grade(formatCount(m.system.RunningCount()))
	assert.True(t, m.lastCorrect)
	assert.Equal(t, drillResult, m.phase)

	correct, total := m.Accuracy()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 1, total)
}

func TestDrillWrongAnswer(t *testing.T) {
	m := NewDrillModel("hilo", 3, time.Millisecond, quietLogger())
	for i := 0; i < 3; i++ {
		m.Update(flipMsg{})
	}

	wrong := m.system.RunningCount() + 5
	m.grade(fmt.Sprintf("%.0f", wrong))
	assert.False(t, m.lastCorrect)

	view := m.View()
	assert.Contains(t, view, "actual")

	correct, total := m.Accuracy()
	assert.Equal(t, 0, correct)
	assert.Equal(t, 1, total)
}

func TestDrillRedeal(t *testing.T) {
	m := NewDrillModel("hilo", 4, time.Millisecond, quietLogger())
	for i := 0; i < 4; i++ {
		m.Update(flipMsg{})
	}
	m.grade(formatCount(m.system.RunningCount()))
	require.Equal(t, drillResult, m.phase)

	m.dealDrill()
	assert.Equal(t, drillShowing, m.phase)
	assert.Equal(t, 0, m.shown)
	assert.Equal(t, 0, m.system.CardsSeen())
	assert.Len(t, m.cards, 4)
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "+3", formatCount(3))
	assert.Equal(t, "-2", formatCount(-2))
	assert.Equal(t, "+0", formatCount(0))
	assert.Equal(t, "+1.5", formatCount(1.5))
	assert.Equal(t, "-0.5", formatCount(-0.5))
}
