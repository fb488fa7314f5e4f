package blackjack

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DoubleRule restricts which totals may be doubled
type DoubleRule string

const (
	DoubleAny        DoubleRule = "any"
	DoubleNineEleven DoubleRule = "9-11"
	DoubleTenEleven  DoubleRule = "10-11"
)

// SurrenderRule selects the surrender variant in play
type SurrenderRule string

const (
	SurrenderNone  SurrenderRule = "none"
	SurrenderEarly SurrenderRule = "early"
	SurrenderLate  SurrenderRule = "late"
)

// RuleSet enumerates every table rule that affects action legality or
// payout. Treat values as immutable; pass by value.
type RuleSet struct {
	NumDecks int

	MinBet int64
	MaxBet int64

	// H17 vs S17
	DealerHitsSoft17 bool

	// 3:2 = 1.5, 6:5 = 1.2
	BlackjackPayout decimal.Decimal

	DoubleAfterSplit bool
	DoubleOn         DoubleRule

	ResplitAces  bool
	HitSplitAces bool
	MaxSplits    int // maximum total hand count from splitting
	Surrender    SurrenderRule

	InsuranceAllowed bool

	// US peek rules; false is European no-hole-card style
	DealerPeeks bool
}

// DefaultRules returns the default H17 six-deck table
func DefaultRules() RuleSet {
	return RuleSet{
		NumDecks:         6,
		MinBet:           10,
		MaxBet:           1000,
		DealerHitsSoft17: true,
		BlackjackPayout:  decimal.RequireFromString("1.5"),
		DoubleAfterSplit: true,
		DoubleOn:         DoubleAny,
		ResplitAces:      false,
		HitSplitAces:     false,
		MaxSplits:        4,
		Surrender:        SurrenderLate,
		InsuranceAllowed: true,
		DealerPeeks:      true,
	}
}

// VegasStrip returns standard Vegas Strip rules (S17)
func VegasStrip() RuleSet {
	r := DefaultRules()
	r.DealerHitsSoft17 = false
	return r
}

// DowntownVegas returns downtown Las Vegas rules (H17)
func DowntownVegas() RuleSet {
	return DefaultRules()
}

// SingleDeck returns single-deck rules: H17, no DAS, no surrender
func SingleDeck() RuleSet {
	r := DefaultRules()
	r.NumDecks = 1
	r.DoubleAfterSplit = false
	r.Surrender = SurrenderNone
	return r
}

// AtlanticCity returns Atlantic City rules: eight decks, S17
func AtlanticCity() RuleSet {
	r := DefaultRules()
	r.NumDecks = 8
	r.DealerHitsSoft17 = false
	return r
}

// PresetRules resolves a named preset. Unknown names return an error so
// callers can report the flag value verbatim.
func PresetRules(name string) (RuleSet, error) {
	switch name {
	case "", "default", "downtown_vegas":
		return DowntownVegas(), nil
	case "vegas_strip":
		return VegasStrip(), nil
	case "single_deck":
		return SingleDeck(), nil
	case "atlantic_city":
		return AtlanticCity(), nil
	default:
		return RuleSet{}, fmt.Errorf("blackjack: unknown rules preset %q", name)
	}
}

// Validate checks the rule switches for consistency
func (r RuleSet) Validate() error {
	if r.NumDecks < 1 || r.NumDecks > 8 {
		return fmt.Errorf("blackjack: num_decks must be between 1 and 8, got %d", r.NumDecks)
	}
	if r.MinBet < 1 {
		return fmt.Errorf("blackjack: min_bet must be at least 1, got %d", r.MinBet)
	}
	if r.MaxBet < r.MinBet {
		return fmt.Errorf("blackjack: max_bet %d below min_bet %d", r.MaxBet, r.MinBet)
	}
	if r.BlackjackPayout.LessThan(decimal.New(1, 0)) {
		return fmt.Errorf("blackjack: blackjack_payout must be at least 1.0, got %s", r.BlackjackPayout)
	}
	switch r.DoubleOn {
	case DoubleAny, DoubleNineEleven, DoubleTenEleven:
	default:
		return fmt.Errorf("blackjack: invalid double_on %q", r.DoubleOn)
	}
	if r.MaxSplits < 1 {
		return fmt.Errorf("blackjack: max_splits must be at least 1, got %d", r.MaxSplits)
	}
	switch r.Surrender {
	case SurrenderNone, SurrenderEarly, SurrenderLate:
	default:
		return fmt.Errorf("blackjack: invalid surrender rule %q", r.Surrender)
	}
	return nil
}

// DoubleAllowedOn reports whether the double_on rule permits doubling a
// hand of the given total
func (r RuleSet) DoubleAllowedOn(total int) bool {
	switch r.DoubleOn {
	case DoubleNineEleven:
		return total >= 9 && total <= 11
	case DoubleTenEleven:
		return total >= 10 && total <= 11
	default:
		return true
	}
}
