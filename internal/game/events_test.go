package game

import (
	"fmt"
	"testing"
)

func TestEmitter_TypedAndWildcardHandlers(t *testing.T) {
	em := NewEmitter()

	var order []string
	em.Subscribe(EventPlayerHit, func(ev Event) {
		order = append(order, "typed:"+string(ev.Type))
	})
	em.SubscribeAll(func(ev Event) {
		order = append(order, "all:"+string(ev.Type))
	})

	em.Emit(EventPlayerHit, map[string]any{"hand_value": 18})
	em.Emit(EventPlayerStand, nil)

	want := []string{"typed:PLAYER_HIT", "all:PLAYER_HIT", "all:PLAYER_STAND"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestEmitter_EmitReturnsEvent(t *testing.T) {
	em := NewEmitter()

	ev := em.Emit(EventBetPlaced, map[string]any{"amount": 100})
	if ev.Type != EventBetPlaced {
		t.Errorf("expected BET_PLACED, got %s", ev.Type)
	}
	if ev.Data["amount"] != 100 {
		t.Errorf("expected amount 100, got %v", ev.Data["amount"])
	}
	if ev.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestEmitter_HistoryIsBounded(t *testing.T) {
	em := NewEmitter()

	for i := 0; i < historyCap+50; i++ {
		em.Emit(EventCardDealt, map[string]any{"n": i})
	}

	history := em.History()
	if len(history) != historyCap {
		t.Fatalf("expected history capped at %d, got %d", historyCap, len(history))
	}
	// Oldest events are evicted first.
	if history[0].Data["n"] != 50 {
		t.Errorf("expected oldest retained event n=50, got %v", history[0].Data["n"])
	}
	if history[len(history)-1].Data["n"] != historyCap+49 {
		t.Errorf("expected newest event n=%d, got %v", historyCap+49, history[len(history)-1].Data["n"])
	}
}

func TestEmitter_HistoryIsACopy(t *testing.T) {
	em := NewEmitter()
	em.Emit(EventRoundStarted, nil)

	history := em.History()
	history[0].Type = EventRoundEnded

	if em.History()[0].Type != EventRoundStarted {
		t.Error("mutating the returned history must not affect the emitter")
	}
}

func TestEmitter_ClearHistory(t *testing.T) {
	em := NewEmitter()
	em.Emit(EventRoundStarted, nil)
	em.ClearHistory()

	if len(em.History()) != 0 {
		t.Error("expected empty history after clear")
	}
}

func TestEvent_String(t *testing.T) {
	ev := Event{Type: EventPlayerWins, Data: map[string]any{"hand_index": 0}}
	want := fmt.Sprintf("%s: %v", EventPlayerWins, ev.Data)
	if ev.String() != want {
		t.Errorf("expected %q, got %q", want, ev.String())
	}
}
