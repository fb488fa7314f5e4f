package blackjack

import (
	"fmt"
	"strings"
)

// Hand is an ordered blackjack hand with its bet and per-round flags.
// Once Surrendered is set the hand is frozen: no cards may be added.
type Hand struct {
	cards []Card

	Bet         int64
	Doubled     bool
	SplitHand   bool
	Surrendered bool
}

// NewHand creates an empty hand carrying the given bet
func NewHand(bet int64) *Hand {
	return &Hand{Bet: bet}
}

// NewHandWithCards creates a hand from the given cards. Intended for tests
// and deserialization.
func NewHandWithCards(bet int64, cards ...Card) *Hand {
	h := &Hand{Bet: bet}
	h.cards = append(h.cards, cards...)
	return h
}

// AddCard appends a card to the hand
func (h *Hand) AddCard(card Card) {
	if h.Surrendered {
		panic("blackjack: cannot add card to surrendered hand")
	}
	h.cards = append(h.cards, card)
}

// PopCard removes and returns the last card. Used when splitting a pair.
func (h *Hand) PopCard() Card {
	if len(h.cards) == 0 {
		panic("blackjack: cannot pop card from empty hand")
	}
	card := h.cards[len(h.cards)-1]
	h.cards = h.cards[:len(h.cards)-1]
	return card
}

// Cards returns a copy of the cards in the hand
func (h *Hand) Cards() []Card {
	cards := make([]Card, len(h.cards))
	copy(cards, h.cards)
	return cards
}

// FirstCard returns the first card dealt to the hand
func (h *Hand) FirstCard() (Card, bool) {
	if len(h.cards) == 0 {
		return Card{}, false
	}
	return h.cards[0], true
}

// NumCards returns the number of cards in the hand
func (h *Hand) NumCards() int {
	return len(h.cards)
}

// Clear removes all cards and resets the per-round flags. The bet is kept.
func (h *Hand) Clear() {
	h.cards = h.cards[:0]
	h.Doubled = false
	h.SplitHand = false
	h.Surrendered = false
}

// Value returns the best hand total: the highest sum ≤ 21 achievable by
// counting aces as 11 or 1, or the minimum bust total if none exists.
func (h *Hand) Value() int {
	total := 0
	aces := 0
	for _, card := range h.cards {
		if card.IsAce() {
			aces++
			total += 11
		} else {
			total += card.Value()
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsSoft returns true if an ace is currently counted as 11
func (h *Hand) IsSoft() bool {
	hasAce := false
	hard := 0
	for _, card := range h.cards {
		if card.IsAce() {
			hasAce = true
			hard++
		} else {
			hard += card.Value()
		}
	}
	return hasAce && hard+10 <= 21
}

// IsHard returns true if the hand is not soft
func (h *Hand) IsHard() bool {
	return !h.IsSoft()
}

// IsBlackjack returns true for a natural: two cards totalling 21 on the
// opening deal. Split hands are never blackjacks.
func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.Value() == 21 && !h.SplitHand
}

// IsBusted returns true if the hand value exceeds 21
func (h *Hand) IsBusted() bool {
	return h.Value() > 21
}

// IsPair returns true for two cards of equal value for splitting purposes.
// All ten-valued ranks pair with each other, so K-Q is splittable.
func (h *Hand) IsPair() bool {
	return len(h.cards) == 2 && h.cards[0].Value() == h.cards[1].Value()
}

// CanDouble returns true if the hand shape permits doubling: exactly two
// cards, not already doubled, not surrendered. Rule and bankroll checks
// live in the engine.
func (h *Hand) CanDouble() bool {
	return len(h.cards) == 2 && !h.Doubled && !h.Surrendered
}

// Compare compares the hand against the dealer's hand.
// Returns 1 if the player hand wins, -1 if it loses, 0 on a push.
func (h *Hand) Compare(dealer *Hand) int {
	if h.Surrendered {
		return -1
	}
	if h.IsBusted() {
		return -1
	}
	if dealer.IsBusted() {
		return 1
	}

	playerBJ := h.IsBlackjack()
	dealerBJ := dealer.IsBlackjack()
	switch {
	case playerBJ && dealerBJ:
		return 0
	case playerBJ:
		return 1
	case dealerBJ:
		return -1
	}

	playerValue := h.Value()
	dealerValue := dealer.Value()
	switch {
	case playerValue > dealerValue:
		return 1
	case dealerValue > playerValue:
		return -1
	default:
		return 0
	}
}

// String returns the cards followed by a value annotation,
// e.g. "A♠ 6♥ (soft 17)" or "K♦ Q♣ J♠ (BUST)"
func (h *Hand) String() string {
	var sb strings.Builder
	for i, card := range h.cards {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(card.String())
	}
	switch {
	case h.IsBusted():
		sb.WriteString(" (BUST)")
	case h.IsBlackjack():
		sb.WriteString(" (BLACKJACK)")
	case h.IsSoft():
		fmt.Fprintf(&sb, " (soft %d)", h.Value())
	default:
		fmt.Fprintf(&sb, " (%d)", h.Value())
	}
	return sb.String()
}
