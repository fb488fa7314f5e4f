package counting

import (
	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/game"
)

// Tracker keeps a counting system in step with a running game by
// watching its event stream: every face-up card dealt, the hole card
// when the dealer reveals it, and shoe shuffles. The tracker sees
// exactly what a player at the table sees.
//
// Tracker follows the engine's single-goroutine discipline and is not
// safe for concurrent use.
type Tracker struct {
	system System
	engine *game.Engine
}

// Track attaches system to the engine's event stream and returns the
// tracker. The count starts fresh for the engine's shoe; KO starts at
// its initial running count.
func Track(system System, engine *game.Engine) *Tracker {
	t := &Tracker{system: system, engine: engine}
	t.resetForShoe()

	events := engine.Events()
	events.Subscribe(game.EventCardDealt, t.countCard)
	events.Subscribe(game.EventDealerReveals, t.countCard)
	events.Subscribe(game.EventShoeShuffled, func(game.Event) {
		t.resetForShoe()
	})
	return t
}

// System returns the counting system being maintained.
func (t *Tracker) System() System {
	return t.system
}

// RunningCount returns the system's running count.
func (t *Tracker) RunningCount() float64 {
	return t.system.RunningCount()
}

// TrueCount normalizes the running count by the decks left in the
// engine's shoe.
func (t *Tracker) TrueCount() float64 {
	return t.system.TrueCount(t.engine.Shoe().DecksRemaining())
}

func (t *Tracker) countCard(event game.Event) {
	name, ok := event.Data["card"].(string)
	if !ok || name == game.HiddenCard {
		return
	}
	card, err := blackjack.ParseCard(name)
	if err != nil {
		return
	}
	t.system.Count(card)
}

func (t *Tracker) resetForShoe() {
	if ko, ok := t.system.(*KO); ok {
		ko.ResetForShoe(t.engine.Rules().NumDecks)
		return
	}
	t.system.Reset()
}
