package counting

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/game"
)

// trackedEngine builds an engine whose shoe deals the given cards in
// order, padded with neutral eights so the shoe never runs dry.
func trackedEngine(t *testing.T, cards string, padding int) *game.Engine {
	t.Helper()

	parsed, err := blackjack.ParseCards(cards)
	if err != nil {
		t.Fatalf("bad card stack %q: %v", cards, err)
	}
	for range padding {
		parsed = append(parsed, blackjack.MustParseCard("8♣"))
	}

	rules := blackjack.DefaultRules()
	shoe, err := blackjack.NewShoe(rules.NumDecks, 1.0, nil)
	if err != nil {
		t.Fatalf("NewShoe: %v", err)
	}
	shoe.SetCards(parsed)

	engine, err := game.NewEngine(rules, decimal.NewFromInt(1000), game.WithShoe(shoe))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func TestTracker_CountsExposedCards(t *testing.T) {
	// Player draws 10♠ 10♣ and stands on 20; the dealer shows 8♠ with
	// 6♦ in the hole and busts with 9♥. Padding leaves exactly two
	// decks behind afterwards.
	engine := trackedEngine(t, "10♠ 8♠ 10♣ 6♦ 9♥", 104)
	tracker := Track(NewHiLo(), engine)

	if !engine.Bet(50) {
		t.Fatal("bet rejected")
	}

	// Only the three face-up cards count; the hole card stays out of
	// the count until the dealer reveals it.
	if got := tracker.RunningCount(); got != -2 {
		t.Errorf("running count after deal = %v, want -2", got)
	}
	if got := tracker.System().CardsSeen(); got != 3 {
		t.Errorf("cards seen after deal = %d, want 3", got)
	}

	if !engine.Stand() {
		t.Fatal("stand rejected")
	}

	// Reveal adds the 6♦, the bust card 9♥ is neutral.
	if got := tracker.RunningCount(); got != -1 {
		t.Errorf("running count after dealer play = %v, want -1", got)
	}
	if got := tracker.System().CardsSeen(); got != 5 {
		t.Errorf("cards seen after dealer play = %d, want 5", got)
	}
	if got := tracker.TrueCount(); got != -0.5 {
		t.Errorf("true count at two decks = %v, want -0.5", got)
	}

	// Next round deals three neutral eights face up.
	if !engine.Bet(50) {
		t.Fatal("second bet rejected")
	}
	if got := tracker.RunningCount(); got != -1 {
		t.Errorf("running count after second deal = %v, want -1", got)
	}
	if got := tracker.System().CardsSeen(); got != 8 {
		t.Errorf("cards seen after second deal = %d, want 8", got)
	}
}

func TestTracker_ShuffleResets(t *testing.T) {
	t.Run("balanced system returns to zero", func(t *testing.T) {
		engine, err := game.NewEngine(blackjack.DefaultRules(), decimal.NewFromInt(1000))
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		tracker := Track(NewHiLo(), engine)

		engine.Events().Emit(game.EventCardDealt, map[string]any{"card": "5♦", "hand": "player", "hand_value": 5})
		if got := tracker.RunningCount(); got != 1 {
			t.Fatalf("running count = %v, want 1", got)
		}

		engine.Events().Emit(game.EventShoeShuffled, nil)
		if got := tracker.RunningCount(); got != 0 {
			t.Errorf("running count after shuffle = %v, want 0", got)
		}
		if got := tracker.System().CardsSeen(); got != 0 {
			t.Errorf("cards seen after shuffle = %d, want 0", got)
		}
	})

	t.Run("KO returns to its initial running count", func(t *testing.T) {
		engine, err := game.NewEngine(blackjack.DefaultRules(), decimal.NewFromInt(1000))
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		tracker := Track(NewKO(), engine)

		// Six decks put the IRC at -20 before any card is seen.
		if got := tracker.RunningCount(); got != -20 {
			t.Fatalf("running count at attach = %v, want -20", got)
		}

		engine.Events().Emit(game.EventCardDealt, map[string]any{"card": "5♦", "hand": "player", "hand_value": 5})
		if got := tracker.RunningCount(); got != -19 {
			t.Fatalf("running count = %v, want -19", got)
		}

		engine.Events().Emit(game.EventShoeShuffled, nil)
		if got := tracker.RunningCount(); got != -20 {
			t.Errorf("running count after shuffle = %v, want -20", got)
		}
	})
}

func TestTracker_SkipsHiddenAndMalformedCards(t *testing.T) {
	engine, err := game.NewEngine(blackjack.DefaultRules(), decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	tracker := Track(NewHiLo(), engine)

	events := engine.Events()
	events.Emit(game.EventCardDealt, map[string]any{"card": game.HiddenCard, "hand": "dealer", "hand_value": nil})
	events.Emit(game.EventCardDealt, map[string]any{"card": "not a card", "hand": "player"})
	events.Emit(game.EventCardDealt, map[string]any{"hand": "player"})
	events.Emit(game.EventCardDealt, map[string]any{"card": 7})

	if got := tracker.System().CardsSeen(); got != 0 {
		t.Errorf("cards seen = %d, want 0", got)
	}
	if got := tracker.RunningCount(); got != 0 {
		t.Errorf("running count = %v, want 0", got)
	}
}
