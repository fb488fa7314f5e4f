package statistics

import "github.com/lox/blackjacktrainer/blackjack"

// Per-rule adjustments to the house edge, in percentage points.
// Positive numbers favor the house. Sourced from the standard
// published effect tables; the baseline is a six-deck S17 3:2 game
// with double after split.
const (
	baselineEdge = 0.50

	effectSingleDeck = -0.48
	effectDoubleDeck = -0.19
	effectFourDecks  = -0.06
	effectEightDecks = 0.02

	effectH17 = 0.22

	effectPayoutSixFive  = 1.39
	effectPayoutEvenOnly = 2.27

	effectNoDAS           = 0.14
	effectDoubleTenEleven = 0.18
	effectDoubleNineOnly  = 0.09

	effectResplitAces  = -0.08
	effectHitSplitAces = -0.19

	effectLateSurrender  = -0.08
	effectEarlySurrender = -0.39

	effectNoPeek = 0.11
)

// HouseEdge estimates the house edge for a rule set as a percentage
// (0.50 means 0.50%). The estimate combines the baseline with the
// published per-rule adjustments; it assumes perfect basic strategy.
func HouseEdge(rules blackjack.RuleSet) float64 {
	edge := baselineEdge

	switch rules.NumDecks {
	case 1:
		edge += effectSingleDeck
	case 2:
		edge += effectDoubleDeck
	case 4:
		edge += effectFourDecks
	case 8:
		edge += effectEightDecks
	}

	if rules.DealerHitsSoft17 {
		edge += effectH17
	}

	// Even money pays worse than 6:5, so check it first.
	payout := rules.BlackjackPayout.InexactFloat64()
	if payout <= 1.0 {
		edge += effectPayoutEvenOnly
	} else if payout <= 1.2 {
		edge += effectPayoutSixFive
	}

	if !rules.DoubleAfterSplit {
		edge += effectNoDAS
	}

	switch rules.DoubleOn {
	case blackjack.DoubleTenEleven:
		edge += effectDoubleTenEleven
	case blackjack.DoubleNineEleven:
		edge += effectDoubleNineOnly
	}

	if rules.ResplitAces {
		edge += effectResplitAces
	}
	if rules.HitSplitAces {
		edge += effectHitSplitAces
	}

	switch rules.Surrender {
	case blackjack.SurrenderLate:
		edge += effectLateSurrender
	case blackjack.SurrenderEarly:
		edge += effectEarlySurrender
	}

	if !rules.DealerPeeks {
		edge += effectNoPeek
	}

	return edge
}

// PlayerAdvantage converts a true count into the player's expected
// advantage in percent, using the standard half-percent-per-count
// approximation. Negative values mean the house still holds the edge.
func PlayerAdvantage(trueCount, houseEdge float64) float64 {
	return trueCount*0.5 - houseEdge
}
