// Package blackjack implements the core card, hand, shoe and rule
// domain for a blackjack table.
package blackjack

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Clubs Suit = iota + 1
	Diamonds
	Hearts
	Spades
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Value returns the blackjack point value of the rank.
// Aces count as 11 here; the soft-ace reduction happens at hand level.
func (r Rank) Value() int {
	switch {
	case r <= Ten:
		return int(r)
	case r == Ace:
		return 11
	default:
		return 10
	}
}

// IsAce returns true if the rank is an Ace
func (r Rank) IsAce() bool {
	return r == Ace
}

// IsTenValue returns true if the rank counts as ten (10, J, Q, K)
func (r Rank) IsTenValue() bool {
	return r != Ace && r.Value() == 10
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the string representation of a card (e.g., "A♠", "10♦")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Value returns the blackjack point value of the card
func (c Card) Value() int {
	return c.Rank.Value()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank.IsAce()
}

// IsTenValue returns true if the card counts as ten
func (c Card) IsTenValue() bool {
	return c.Rank.IsTenValue()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

var rankNames = map[string]Rank{
	"2": Two, "3": Three, "4": Four, "5": Five, "6": Six,
	"7": Seven, "8": Eight, "9": Nine, "10": Ten, "T": Ten,
	"J": Jack, "Q": Queen, "K": King, "A": Ace,
}

var suitNames = map[string]Suit{
	"C": Clubs, "♣": Clubs,
	"D": Diamonds, "♦": Diamonds,
	"H": Hearts, "♥": Hearts,
	"S": Spades, "♠": Spades,
}

// ParseCard creates a card from a string like "A♠", "AS", "kh", "10♦" or "TD"
func ParseCard(s string) (Card, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if len(trimmed) < 2 {
		return Card{}, fmt.Errorf("blackjack: invalid card %q", s)
	}

	// The suit is always the final rune; everything before it is the rank.
	runes := []rune(trimmed)
	rankStr := string(runes[:len(runes)-1])
	suitStr := string(runes[len(runes)-1])

	rank, ok := rankNames[rankStr]
	if !ok {
		return Card{}, fmt.Errorf("blackjack: invalid rank %q", rankStr)
	}
	suit, ok := suitNames[suitStr]
	if !ok {
		return Card{}, fmt.Errorf("blackjack: invalid suit %q", suitStr)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// MustParseCard is ParseCard that panics on malformed input. Intended for
// tests and fixed tables.
func MustParseCard(s string) Card {
	card, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return card
}

// ParseCards parses a space-separated list of card strings
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		card, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}
