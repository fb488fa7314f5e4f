// Package bot implements autoplay agents for the simulator and the
// scripted clients. Agents are fed every exposed card, size their own
// bets and answer each decision point with an action and a short line
// of reasoning.
package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/strategy"
)

// Decision is an agent's answer to a single decision point.
type Decision struct {
	Action    strategy.Action
	Reasoning string
}

// Agent drives one seat of the game. The caller owns the engine and
// the shoe; the agent only sees cards as they are exposed and state as
// situations.
type Agent interface {
	Name() string

	// BetSize returns the wager for the coming round.
	BetSize(trueCount float64, bankroll decimal.Decimal) int64

	// Decide picks an action for a decision point.
	Decide(sit strategy.Situation, trueCount float64) Decision

	// TakeInsurance answers the insurance offer on a dealer ace.
	TakeInsurance(trueCount float64) bool

	// ObserveCard shows the agent a face-up card.
	ObserveCard(card blackjack.Card)

	// ObserveShuffle tells the agent the shoe was reshuffled.
	ObserveShuffle()

	// TrueCount converts the agent's running count for the decks left
	// in the shoe. Non-counting agents always report zero.
	TrueCount(decksRemaining float64) float64
}

// BetSpread is a classic linear betting ramp: one unit off the top,
// roughly one extra unit per point of true count above +1, capped at
// MaxUnits.
type BetSpread struct {
	Unit     int64
	MaxUnits int64
}

// Bet returns the wager for a true count.
func (s BetSpread) Bet(trueCount float64) int64 {
	units := int64(trueCount) - 1
	if units < 1 {
		units = 1
	}
	if units > s.MaxUnits {
		units = s.MaxUnits
	}
	return s.Unit * units
}

// ParseBetSpread parses a "unit-maxunits" flag value like "10-80",
// read as a 10 unit ramped up to 8 units of 10.
func ParseBetSpread(value string) (BetSpread, error) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return BetSpread{}, fmt.Errorf("bet spread %q: want unit-max, like 10-80", value)
	}
	unit, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return BetSpread{}, fmt.Errorf("bet spread unit %q: %w", parts[0], err)
	}
	top, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return BetSpread{}, fmt.Errorf("bet spread max %q: %w", parts[1], err)
	}
	if unit <= 0 || top < unit {
		return BetSpread{}, fmt.Errorf("bet spread %q: max must be at least one unit", value)
	}
	return BetSpread{Unit: unit, MaxUnits: top / unit}, nil
}
