package game

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
)

func TestSnapshot_RoundTripMidRound(t *testing.T) {
	e := stackedEngine(t, blackjack.DefaultRules(), 1000, "8♠ 6♦ 8♥ 10♣ 3♠ 7♦ 10♥ K♠")
	e.Bet(100)
	e.Split()

	saved := e.Snapshot()
	data, err := json.Marshal(saved)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var loaded SavedGame
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored, err := RestoreGame(&loaded)
	if err != nil {
		t.Fatalf("RestoreGame: %v", err)
	}

	if got, want := restored.Snapshot(), e.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot changed across round trip:\n got %+v\nwant %+v", got, want)
	}

	// The restored engine plays on from the same position.
	if restored.State() != StatePlayerTurn {
		t.Fatalf("expected PLAYER_TURN, got %s", restored.State())
	}
	if !restored.DoubleDown() {
		t.Fatal("double rejected on restored engine")
	}
	if !restored.Stand() {
		t.Fatal("stand rejected on restored engine")
	}
	if !restored.Bankroll().Equal(decimal.NewFromInt(1300)) {
		t.Errorf("expected bankroll 1300 after resuming, got %s", restored.Bankroll())
	}
}

func TestSnapshot_RoundTripBetweenRounds(t *testing.T) {
	e := stackedEngine(t, blackjack.DefaultRules(), 1000, "10♠ 10♣ 8♦ K♥ 2♣ 3♣ 4♣ 5♣ 6♣ 7♣ 8♣ 9♣")
	e.Bet(50)
	e.Stand()

	restored, err := RestoreGame(e.Snapshot())
	if err != nil {
		t.Fatalf("RestoreGame: %v", err)
	}
	if restored.State() != StateWaitingForBet {
		t.Fatalf("expected WAITING_FOR_BET, got %s", restored.State())
	}
	if !restored.Bankroll().Equal(decimal.NewFromInt(950)) {
		t.Errorf("expected bankroll 950, got %s", restored.Bankroll())
	}
	if !restored.Bet(10) {
		t.Error("expected restored engine to accept a new bet")
	}
}

func TestSnapshot_PreservesInsuranceState(t *testing.T) {
	e := stackedEngine(t, blackjack.DefaultRules(), 1000, "10♠ A♦ 9♥ 7♣ 4♦ 10♦ 9♦")
	e.Bet(100)

	restored, err := RestoreGame(e.Snapshot())
	if err != nil {
		t.Fatalf("RestoreGame: %v", err)
	}
	if restored.State() != StateOfferingInsurance {
		t.Fatalf("expected OFFERING_INSURANCE, got %s", restored.State())
	}
	if !restored.TakeInsurance(50) {
		t.Fatal("insurance rejected on restored engine")
	}
	if !restored.InsuranceBet().Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected insurance 50, got %s", restored.InsuranceBet())
	}
}

func TestSnapshot_WireFormat(t *testing.T) {
	e := stackedEngine(t, blackjack.DefaultRules(), 1000, "10♠ 9♣ 8♠ 6♦ 9♥")
	e.Bet(50)

	data, err := json.Marshal(e.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Money travels as decimal strings, cards as numeric rank/suit pairs.
	if string(raw["bankroll"]) != `"1000"` {
		t.Errorf("expected bankroll as decimal string, got %s", raw["bankroll"])
	}
	if string(raw["state"]) != `"PLAYER_TURN"` {
		t.Errorf("expected state name, got %s", raw["state"])
	}
	var hands []SavedHand
	if err := json.Unmarshal(raw["player_hands"], &hands); err != nil {
		t.Fatalf("player_hands: %v", err)
	}
	if len(hands) != 1 || len(hands[0].Cards) != 2 {
		t.Fatalf("unexpected hands %+v", hands)
	}
	if hands[0].Cards[0].Rank != 10 || hands[0].Cards[0].Suit != int(blackjack.Spades) {
		t.Errorf("unexpected first card %+v", hands[0].Cards[0])
	}
}

func TestRestoreGame_RejectsCorruptSnapshots(t *testing.T) {
	e := stackedEngine(t, blackjack.DefaultRules(), 1000, "10♠ 9♣ 8♠ 6♦ 9♥")
	e.Bet(50)
	base := e.Snapshot()

	tests := []struct {
		name   string
		mutate func(*SavedGame)
	}{
		{"unknown state", func(s *SavedGame) { s.State = "SHUFFLING" }},
		{"bad bankroll", func(s *SavedGame) { s.Bankroll = "lots" }},
		{"bad insurance", func(s *SavedGame) { s.InsuranceBet = "" }},
		{"card rank out of range", func(s *SavedGame) { s.PlayerHands[0].Cards[0].Rank = 1 }},
		{"card suit out of range", func(s *SavedGame) { s.ShoeCards[0].Suit = 9 }},
		{"invalid rules", func(s *SavedGame) { s.Rules.NumDecks = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved SavedGame
			data, _ := json.Marshal(base)
			if err := json.Unmarshal(data, &saved); err != nil {
				t.Fatalf("clone: %v", err)
			}
			tt.mutate(&saved)
			if _, err := RestoreGame(&saved); err == nil {
				t.Error("expected a restore error")
			}
		})
	}
}
