// Package counting implements the card counting systems the trainer
// drills: Hi-Lo, Knock-Out, Omega II and Wong Halves. Every system
// accumulates a running count as cards are exposed; balanced systems
// divide by decks remaining for a true count, while unbalanced systems
// bake the conversion into their starting count.
package counting

import (
	"strings"

	"github.com/lox/blackjacktrainer/blackjack"
)

// System is a card counting scheme in progress. Implementations are
// not safe for concurrent use.
type System interface {
	Name() string
	TagValues() map[blackjack.Rank]float64
	IsBalanced() bool

	// Count applies one card to the running count and returns its tag.
	Count(card blackjack.Card) float64
	RunningCount() float64
	// TrueCount normalizes the running count by the number of decks
	// still in the shoe. Unbalanced systems return the running count
	// unchanged.
	TrueCount(decksRemaining float64) float64
	CardsSeen() int
	Reset()
}

// counter holds the state every system shares. Concrete systems embed
// it and supply their tag table.
type counter struct {
	tags         map[blackjack.Rank]float64
	runningCount float64
	cardsSeen    int
}

func (c *counter) Count(card blackjack.Card) float64 {
	tag := c.tags[card.Rank]
	c.runningCount += tag
	c.cardsSeen++
	return tag
}

func (c *counter) RunningCount() float64 {
	return c.runningCount
}

func (c *counter) TrueCount(decksRemaining float64) float64 {
	if decksRemaining <= 0 {
		return 0
	}
	return c.runningCount / decksRemaining
}

func (c *counter) CardsSeen() int {
	return c.cardsSeen
}

func (c *counter) Reset() {
	c.runningCount = 0
	c.cardsSeen = 0
}

// TagValues returns a copy; the underlying tables are shared between
// instances.
func (c *counter) TagValues() map[blackjack.Rank]float64 {
	out := make(map[blackjack.Rank]float64, len(c.tags))
	for rank, tag := range c.tags {
		out[rank] = tag
	}
	return out
}

// CountAll feeds every card to the system in order and returns the
// total tag value.
func CountAll(s System, cards []blackjack.Card) float64 {
	var total float64
	for _, card := range cards {
		total += s.Count(card)
	}
	return total
}

// FullDeckSum sums a system's tags over a complete 52-card deck. A
// balanced system sums to zero.
func FullDeckSum(s System) float64 {
	var total float64
	for _, tag := range s.TagValues() {
		total += tag * 4
	}
	return total
}

// SystemNames lists the configuration names ForName accepts.
func SystemNames() []string {
	return []string{"hilo", "ko", "omega2", "wong_halves"}
}

// ForName builds a fresh system from a configuration name. Separators
// and case are ignored, so "Hi-Lo", "hilo" and "HI_LO" all match.
// Unknown names fall back to Hi-Lo.
func ForName(name string) System {
	switch normalizeName(name) {
	case "ko", "knockout":
		return NewKO()
	case "omega2", "omegaii":
		return NewOmega2()
	case "wonghalves":
		return NewWongHalves(false)
	case "wonghalvesdoubled":
		return NewWongHalves(true)
	default:
		return NewHiLo()
	}
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
}
