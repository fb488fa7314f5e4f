package blackjack

import (
	"fmt"
	rand "math/rand/v2"
)

// CardsPerDeck is the size of a single standard deck.
const CardsPerDeck = 52

// Shoe is a multi-deck card source with a penetration trigger.
// The random source is injected so games can be replayed deterministically.
type Shoe struct {
	cards       []Card
	numDecks    int
	penetration float64
	cutCard     int // dealt-card count at which a shuffle is due
	rng         *rand.Rand
}

// NewShoe creates a shoe of numDecks decks. penetration is the dealt
// fraction (0,1] at which NeedsShuffle starts reporting true. A nil rng
// gets a randomly seeded source.
func NewShoe(numDecks int, penetration float64, rng *rand.Rand) (*Shoe, error) {
	if numDecks < 1 || numDecks > 8 {
		return nil, fmt.Errorf("blackjack: num decks must be between 1 and 8, got %d", numDecks)
	}
	if penetration <= 0 || penetration > 1 {
		return nil, fmt.Errorf("blackjack: penetration must be in (0,1], got %v", penetration)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Shoe{
		numDecks:    numDecks,
		penetration: penetration,
		rng:         rng,
	}
	s.restore()
	return s, nil
}

// restore rebuilds the full unshuffled composition and the cut card position
func (s *Shoe) restore() {
	s.cards = s.cards[:0]
	for d := 0; d < s.numDecks; d++ {
		for suit := Clubs; suit <= Spades; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(rank, suit))
			}
		}
	}
	s.cutCard = int(float64(len(s.cards)) * s.penetration)
}

// Shuffle restores the full composition and permutes it uniformly.
// This also resets NeedsShuffle.
func (s *Shoe) Shuffle() {
	s.restore()
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}

// Draw removes and returns the next card. Drawing from an empty shoe is a
// programmer error: the engine must shuffle when the penetration fires, so
// an empty shoe means its invariants were bypassed.
func (s *Shoe) Draw() Card {
	if len(s.cards) == 0 {
		panic("blackjack: draw from empty shoe")
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	return card
}

// NeedsShuffle reports whether the cut card has been reached. It stays true
// until the next Shuffle.
func (s *Shoe) NeedsShuffle() bool {
	return len(s.cards) <= s.TotalCards()-s.cutCard
}

// CardsRemaining returns the number of undealt cards
func (s *Shoe) CardsRemaining() int {
	return len(s.cards)
}

// TotalCards returns the full shoe size
func (s *Shoe) TotalCards() int {
	return s.numDecks * CardsPerDeck
}

// DecksRemaining returns the undealt portion in deck units
func (s *Shoe) DecksRemaining() float64 {
	return float64(len(s.cards)) / CardsPerDeck
}

// NumDecks returns the shoe's deck count
func (s *Shoe) NumDecks() int {
	return s.numDecks
}

// Penetration returns the configured penetration fraction
func (s *Shoe) Penetration() float64 {
	return s.penetration
}

// Cards returns a copy of the remaining cards in draw order
func (s *Shoe) Cards() []Card {
	cards := make([]Card, len(s.cards))
	copy(cards, s.cards)
	return cards
}

// SetCards replaces the remaining cards with the given draw-order sequence.
// Used when restoring a serialized round; the cut card position is kept
// from the shoe's configuration.
func (s *Shoe) SetCards(cards []Card) {
	s.cards = make([]Card, len(cards))
	copy(s.cards, cards)
}
