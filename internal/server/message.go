package server

import (
	"time"

	"github.com/lox/blackjacktrainer/internal/game"
)

// Client → server message types
const (
	ClientMessageBet       = "bet"
	ClientMessageAction    = "action"
	ClientMessageGetState  = "get_state"
	ClientMessageNewRound  = "new_round"
	ClientMessageResetGame = "reset_game"
)

// Server → client message types
const (
	ServerMessageStateUpdate = "state_update"
	ServerMessageEvent       = "event"
	ServerMessageError       = "error"
)

// ClientMessage is every message a client may push over the websocket.
// Amount carries the bet for "bet" and the optional stake for
// action "insurance".
type ClientMessage struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount,omitempty"`
	Action string `json:"action,omitempty"`
}

// ServerMessage is the single wire shape for all server → client pushes
type ServerMessage struct {
	Type      string         `json:"type"`
	State     *Snapshot      `json:"state,omitempty"`
	EventType string         `json:"event_type,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// stateUpdateMessage builds a bare snapshot push
func stateUpdateMessage(snap *Snapshot) *ServerMessage {
	return &ServerMessage{Type: ServerMessageStateUpdate, State: snap}
}

// eventMessage pairs an engine event with the snapshot taken after it
func eventMessage(event game.Event, snap *Snapshot) *ServerMessage {
	return &ServerMessage{
		Type:      ServerMessageEvent,
		EventType: string(event.Type),
		Data:      event.Data,
		Timestamp: event.Timestamp.UnixMilli(),
		State:     snap,
	}
}

// errorMessage builds an error push
func errorMessage(message string) *ServerMessage {
	return &ServerMessage{Type: ServerMessageError, Message: message, Timestamp: time.Now().UnixMilli()}
}
