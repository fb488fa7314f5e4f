package game

import (
	"fmt"
	"time"
)

// EventType identifies a game event on the wire
type EventType string

const (
	// Round flow
	EventRoundStarted EventType = "ROUND_STARTED"
	EventRoundEnded   EventType = "ROUND_ENDED"
	EventGameEnded    EventType = "GAME_ENDED"

	// Shoe
	EventShoeShuffled EventType = "SHOE_SHUFFLED"
	EventCardDealt    EventType = "CARD_DEALT"

	// Insurance
	EventInsuranceOffered  EventType = "INSURANCE_OFFERED"
	EventInsuranceTaken    EventType = "INSURANCE_TAKEN"
	EventInsuranceDeclined EventType = "INSURANCE_DECLINED"
	EventInsuranceWins     EventType = "INSURANCE_WINS"
	EventInsuranceLoses    EventType = "INSURANCE_LOSES"

	// Player actions
	EventBetPlaced       EventType = "BET_PLACED"
	EventPlayerHit       EventType = "PLAYER_HIT"
	EventPlayerStand     EventType = "PLAYER_STAND"
	EventPlayerDouble    EventType = "PLAYER_DOUBLE"
	EventPlayerSplit     EventType = "PLAYER_SPLIT"
	EventPlayerSurrender EventType = "PLAYER_SURRENDER"
	EventPlayerBlackjack EventType = "PLAYER_BLACKJACK"
	EventPlayerBusts     EventType = "PLAYER_BUSTS"

	// Dealer play
	EventDealerReveals   EventType = "DEALER_REVEALS"
	EventDealerHits      EventType = "DEALER_HITS"
	EventDealerStands    EventType = "DEALER_STANDS"
	EventDealerBusts     EventType = "DEALER_BUSTS"
	EventDealerBlackjack EventType = "DEALER_BLACKJACK"

	// Outcomes
	EventPlayerWins  EventType = "PLAYER_WINS"
	EventPlayerLoses EventType = "PLAYER_LOSES"
	EventPush        EventType = "PUSH"

	// Rejections
	EventInvalidAction     EventType = "INVALID_ACTION"
	EventInsufficientFunds EventType = "INSUFFICIENT_FUNDS"
)

// HiddenCard is the placeholder dealt in place of the dealer's hole card.
// A sentinel rather than a null keeps transports from leaking the rank
// through type coercion.
const HiddenCard = "hidden"

func (t EventType) String() string {
	return string(t)
}

// Event is a single timestamped occurrence in a game
type Event struct {
	Type      EventType      `json:"event_type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s: %v", e.Type, e.Data)
}

// Handler receives events as they are emitted. Handlers run synchronously
// on the emitting goroutine and must not call back into the engine during
// dispatch.
type Handler func(Event)

// historyCap bounds the retained event history per game
const historyCap = 256

// Emitter dispatches game events to subscribed handlers and retains a
// bounded history of recent events
type Emitter struct {
	handlers map[EventType][]Handler
	wildcard []Handler
	history  []Event
}

func NewEmitter() *Emitter {
	return &Emitter{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers a handler for a single event type
func (em *Emitter) Subscribe(eventType EventType, handler Handler) {
	em.handlers[eventType] = append(em.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every event type
func (em *Emitter) SubscribeAll(handler Handler) {
	em.wildcard = append(em.wildcard, handler)
}

// Emit builds an event, appends it to the history and dispatches it to
// typed handlers then wildcard handlers
func (em *Emitter) Emit(eventType EventType, data map[string]any) Event {
	event := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
	em.history = append(em.history, event)
	if len(em.history) > historyCap {
		em.history = em.history[len(em.history)-historyCap:]
	}
	for _, h := range em.handlers[eventType] {
		h(event)
	}
	for _, h := range em.wildcard {
		h(event)
	}
	return event
}

// History returns a copy of the retained event history
func (em *Emitter) History() []Event {
	out := make([]Event, len(em.history))
	copy(out, em.history)
	return out
}

// ClearHistory drops all retained events
func (em *Emitter) ClearHistory() {
	em.history = nil
}
