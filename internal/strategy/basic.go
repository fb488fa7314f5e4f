package strategy

import "github.com/lox/blackjacktrainer/blackjack"

// key addresses one chart cell. Upcards run 2-11 with the ace as 11;
// total is the hand total, or the paired card's value in the pair
// chart.
type key struct {
	total  int
	upcard int
}

type table map[key]Action

func (t table) set(total int, action Action, upcards ...int) {
	for _, up := range upcards {
		t[key{total, up}] = action
	}
}

func (t table) setRange(total int, action Action, from, to int) {
	for up := from; up <= to; up++ {
		t[key{total, up}] = action
	}
}

// BasicStrategy holds the precomputed basic strategy chart for one
// rule set. Chart contents shift with H17/S17, double-after-split and
// surrender availability, so a chart is built per rule set rather than
// shared.
type BasicStrategy struct {
	rules blackjack.RuleSet
	hard  table
	soft  table
	pairs table
}

func NewBasicStrategy(rules blackjack.RuleSet) *BasicStrategy {
	return &BasicStrategy{
		rules: rules,
		hard:  buildHardTable(rules),
		soft:  buildSoftTable(rules),
		pairs: buildPairTable(rules),
	}
}

// Rules returns the rule set the chart was built for.
func (bs *BasicStrategy) Rules() blackjack.RuleSet {
	return bs.rules
}

// Situation describes a single decision point against a dealer upcard.
// DealerUpcard and PairValue use blackjack card values with aces as 11.
type Situation struct {
	PlayerTotal  int
	DealerUpcard int
	IsSoft       bool
	IsPair       bool
	PairValue    int
	CanDouble    bool
	CanSurrender bool
	CanSplit     bool
}

// HandSituation builds a Situation from live table state.
func HandSituation(hand *blackjack.Hand, upcard blackjack.Card, canDouble, canSurrender, canSplit bool) Situation {
	sit := Situation{
		PlayerTotal:  hand.Value(),
		DealerUpcard: upcard.Value(),
		IsSoft:       hand.IsSoft(),
		CanDouble:    canDouble,
		CanSurrender: canSurrender,
		CanSplit:     canSplit,
	}
	if hand.IsPair() {
		first, ok := hand.FirstCard()
		if ok {
			sit.IsPair = true
			sit.PairValue = first.Value()
		}
	}
	return sit
}

// Recommend returns the chart action for a situation, with conditional
// entries collapsed against what the situation allows. Situations off
// the chart stand at 17 and above, otherwise hit.
func (bs *BasicStrategy) Recommend(sit Situation) Action {
	if sit.IsPair && sit.CanSplit && sit.PairValue != 0 {
		if action, ok := bs.pairs[key{sit.PairValue, sit.DealerUpcard}]; ok {
			return action.Resolve(sit.CanDouble, sit.CanSurrender, sit.CanSplit)
		}
	}

	if sit.IsSoft {
		if action, ok := bs.soft[key{sit.PlayerTotal, sit.DealerUpcard}]; ok {
			return action.Resolve(sit.CanDouble, sit.CanSurrender, false)
		}
	}

	if action, ok := bs.hard[key{sit.PlayerTotal, sit.DealerUpcard}]; ok {
		return action.Resolve(sit.CanDouble, sit.CanSurrender, false)
	}

	if sit.PlayerTotal >= 17 {
		return Stand
	}
	return Hit
}

func buildHardTable(rules blackjack.RuleSet) table {
	t := make(table)

	for total := 5; total <= 8; total++ {
		t.setRange(total, Hit, 2, 11)
	}

	t.set(9, Hit, 2, 7, 8, 9, 10, 11)
	t.set(9, DoubleOrHit, 3, 4, 5, 6)

	t.setRange(10, DoubleOrHit, 2, 9)
	t.set(10, Hit, 10, 11)

	t.setRange(11, DoubleOrHit, 2, 11)

	t.set(12, Hit, 2, 3)
	t.set(12, Stand, 4, 5, 6)
	t.setRange(12, Hit, 7, 11)

	for total := 13; total <= 16; total++ {
		t.setRange(total, Stand, 2, 6)
		t.setRange(total, Hit, 7, 11)
	}

	// Late surrender overlays on the stiff hands; H17 adds 15 vs ace.
	if rules.Surrender != blackjack.SurrenderNone {
		t.set(15, SurrenderOrHit, 10)
		t.set(16, SurrenderOrHit, 9, 10, 11)
		if rules.DealerHitsSoft17 {
			t.set(15, SurrenderOrHit, 11)
		}
	}

	for total := 17; total <= 21; total++ {
		t.setRange(total, Stand, 2, 11)
	}

	return t
}

func buildSoftTable(rules blackjack.RuleSet) table {
	t := make(table)

	// A,2 and A,3
	for total := 13; total <= 14; total++ {
		t.set(total, Hit, 2, 3, 4, 7, 8, 9, 10, 11)
		t.set(total, DoubleOrHit, 5, 6)
	}

	// A,4 and A,5
	for total := 15; total <= 16; total++ {
		t.set(total, Hit, 2, 3, 7, 8, 9, 10, 11)
		t.set(total, DoubleOrHit, 4, 5, 6)
	}

	// A,6
	t.set(17, Hit, 2, 7, 8, 9, 10, 11)
	t.set(17, DoubleOrHit, 3, 4, 5, 6)

	// A,7
	t.set(18, DoubleOrStand, 2, 3, 4, 5, 6)
	t.set(18, Stand, 7, 8)
	t.set(18, Hit, 9, 10, 11)

	// A,8 stands everywhere except against a six under H17.
	t.setRange(19, Stand, 2, 11)
	if rules.DealerHitsSoft17 {
		t.set(19, DoubleOrStand, 6)
	}

	t.setRange(20, Stand, 2, 11)
	t.setRange(21, Stand, 2, 11)

	return t
}

func buildPairTable(rules blackjack.RuleSet) table {
	t := make(table)

	// The marginal low splits are only worth it when the split hands
	// can still double.
	dasSplit := Hit
	if rules.DoubleAfterSplit {
		dasSplit = Split
	}

	for value := 2; value <= 3; value++ {
		t.set(value, dasSplit, 2, 3)
		t.set(value, Split, 4, 5, 6, 7)
		t.set(value, Hit, 8, 9, 10, 11)
	}

	t.set(4, Hit, 2, 3, 4, 7, 8, 9, 10, 11)
	t.set(4, dasSplit, 5, 6)

	// 5s play as a hard ten.
	t.setRange(5, DoubleOrHit, 2, 11)

	t.set(6, dasSplit, 2)
	t.set(6, Split, 3, 4, 5, 6)
	t.setRange(6, Hit, 7, 11)

	t.setRange(7, Split, 2, 7)
	t.set(7, Hit, 8, 9, 10, 11)

	t.setRange(8, Split, 2, 11)
	if rules.Surrender != blackjack.SurrenderNone && rules.DealerHitsSoft17 {
		t.set(8, SurrenderOrSplit, 10, 11)
	}

	t.set(9, Split, 2, 3, 4, 5, 6, 8, 9)
	t.set(9, Stand, 7, 10, 11)

	t.setRange(10, Stand, 2, 11)

	t.setRange(11, Split, 2, 11)

	return t
}
