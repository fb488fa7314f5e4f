package blackjack

import "testing"

func handOf(t *testing.T, cards string) *Hand {
	t.Helper()
	parsed, err := ParseCards(cards)
	if err != nil {
		t.Fatalf("bad hand fixture %q: %v", cards, err)
	}
	return NewHandWithCards(0, parsed...)
}

func TestHandValue(t *testing.T) {
	tests := []struct {
		cards string
		value int
		soft  bool
	}{
		{"10♠ 7♦", 17, false},
		{"A♠ 6♦", 17, true},
		{"A♠ A♦", 12, true},
		{"A♠ A♦ 9♣", 21, true},
		{"A♠ K♦", 21, true},
		{"A♠ 6♦ 10♣", 17, false},
		{"A♠ A♦ A♣ A♥", 14, true},
		{"K♠ Q♦ J♣", 30, false},
		{"2♠ 3♦", 5, false},
		{"9♠ 5♦ A♣", 15, false},
	}

	for _, tt := range tests {
		h := handOf(t, tt.cards)
		if got := h.Value(); got != tt.value {
			t.Errorf("%q value = %d, want %d", tt.cards, got, tt.value)
		}
		if got := h.IsSoft(); got != tt.soft {
			t.Errorf("%q soft = %v, want %v", tt.cards, got, tt.soft)
		}
	}
}

func TestHandBlackjack(t *testing.T) {
	if !handOf(t, "A♠ K♦").IsBlackjack() {
		t.Error("A-K should be blackjack")
	}
	if handOf(t, "A♠ 5♦ 5♣").IsBlackjack() {
		t.Error("three-card 21 is not blackjack")
	}
	if handOf(t, "10♠ 9♦").IsBlackjack() {
		t.Error("19 is not blackjack")
	}

	split := handOf(t, "A♠ K♦")
	split.SplitHand = true
	if split.IsBlackjack() {
		t.Error("split 21 is not blackjack")
	}
	if split.Value() != 21 {
		t.Errorf("split 21 still counts 21, got %d", split.Value())
	}
}

func TestHandBusted(t *testing.T) {
	if handOf(t, "10♠ 9♦ 2♣").IsBusted() {
		t.Error("21 is not busted")
	}
	if !handOf(t, "10♠ 9♦ 3♣").IsBusted() {
		t.Error("22 should be busted")
	}
}

func TestHandPair(t *testing.T) {
	tests := []struct {
		cards string
		pair  bool
	}{
		{"8♠ 8♦", true},
		{"A♠ A♦", true},
		{"K♠ Q♦", true}, // ten-values group for splitting
		{"10♠ J♦", true},
		{"8♠ 9♦", false},
		{"A♠ K♦", false},
		{"8♠ 8♦ 8♣", false},
	}
	for _, tt := range tests {
		if got := handOf(t, tt.cards).IsPair(); got != tt.pair {
			t.Errorf("%q pair = %v, want %v", tt.cards, got, tt.pair)
		}
	}
}

func TestHandCanDouble(t *testing.T) {
	h := handOf(t, "5♠ 6♦")
	if !h.CanDouble() {
		t.Error("fresh two-card hand should allow doubling")
	}

	h.Doubled = true
	if h.CanDouble() {
		t.Error("doubled hand cannot double again")
	}

	surrendered := handOf(t, "10♠ 6♦")
	surrendered.Surrendered = true
	if surrendered.CanDouble() {
		t.Error("surrendered hand cannot double")
	}

	if handOf(t, "5♠ 3♦ 3♣").CanDouble() {
		t.Error("three-card hand cannot double")
	}
}

func TestSurrenderedHandIsFrozen(t *testing.T) {
	h := handOf(t, "10♠ 6♦")
	h.Surrendered = true

	defer func() {
		if recover() == nil {
			t.Error("expected panic when adding a card to a surrendered hand")
		}
	}()
	h.AddCard(MustParseCard("2♣"))
}

func TestHandPopCard(t *testing.T) {
	h := handOf(t, "8♠ 8♦")
	card := h.PopCard()
	if card != MustParseCard("8♦") {
		t.Errorf("PopCard = %v, want 8♦", card)
	}
	if h.NumCards() != 1 {
		t.Errorf("expected 1 card after pop, got %d", h.NumCards())
	}
}

func TestHandCompare(t *testing.T) {
	tests := []struct {
		name    string
		player  string
		dealer  string
		outcome int
	}{
		{"higher total wins", "10♠ 9♦", "10♣ 8♥", 1},
		{"lower total loses", "10♠ 7♦", "10♣ 8♥", -1},
		{"equal totals push", "10♠ 9♦", "10♣ 9♥", 0},
		{"dealer bust", "10♠ 2♦", "10♣ 6♥ 9♠", 1},
		{"blackjack beats 21", "A♠ K♦", "7♣ 7♥ 7♠", 1},
		{"dealer blackjack beats 21", "7♣ 7♥ 7♠", "A♠ K♦", -1},
		{"blackjack push", "A♠ K♦", "A♣ Q♥", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := handOf(t, tt.player)
			dealer := handOf(t, tt.dealer)
			if got := player.Compare(dealer); got != tt.outcome {
				t.Errorf("Compare = %d, want %d", got, tt.outcome)
			}
		})
	}

	t.Run("player bust loses even against dealer bust", func(t *testing.T) {
		player := handOf(t, "10♠ 9♦ 5♣")
		dealer := handOf(t, "10♣ 6♥ 9♠")
		if got := player.Compare(dealer); got != -1 {
			t.Errorf("Compare = %d, want -1", got)
		}
	})

	t.Run("surrendered hand always loses", func(t *testing.T) {
		player := handOf(t, "10♠ 6♦")
		player.Surrendered = true
		dealer := handOf(t, "10♣ 6♥ 9♠")
		if got := player.Compare(dealer); got != -1 {
			t.Errorf("Compare = %d, want -1", got)
		}
	})
}

func TestHandString(t *testing.T) {
	tests := []struct {
		cards string
		setup func(*Hand)
		want  string
	}{
		{cards: "10♠ 7♦", want: "10♠ 7♦ (17)"},
		{cards: "A♠ 6♥", want: "A♠ 6♥ (soft 17)"},
		{cards: "A♠ K♦", want: "A♠ K♦ (BLACKJACK)"},
		{cards: "K♦ Q♣ J♠", want: "K♦ Q♣ J♠ (BUST)"},
	}
	for _, tt := range tests {
		h := handOf(t, tt.cards)
		if tt.setup != nil {
			tt.setup(h)
		}
		if got := h.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHandClear(t *testing.T) {
	h := handOf(t, "8♠ 8♦")
	h.Bet = 50
	h.Doubled = true
	h.SplitHand = true
	h.Clear()

	if h.NumCards() != 0 || h.Doubled || h.SplitHand || h.Surrendered {
		t.Errorf("Clear left state behind: %+v", h)
	}
	if h.Bet != 50 {
		t.Errorf("Clear must keep the bet, got %d", h.Bet)
	}
}
