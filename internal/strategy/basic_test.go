package strategy

import (
	"testing"

	"github.com/lox/blackjacktrainer/blackjack"
)

func TestAction_String(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{Hit, "HIT"},
		{Stand, "STAND"},
		{Double, "DOUBLE"},
		{Split, "SPLIT"},
		{Surrender, "SURRENDER"},
		{DoubleOrHit, "DOUBLE_OR_HIT"},
		{Action(42), "Action(42)"},
	}
	for _, tt := range tests {
		if got := tt.action.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAction_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		action       Action
		canDouble    bool
		canSurrender bool
		canSplit     bool
		want         Action
	}{
		{"double allowed", DoubleOrHit, true, true, true, Double},
		{"double blocked falls to hit", DoubleOrHit, false, true, true, Hit},
		{"double blocked falls to stand", DoubleOrStand, false, true, true, Stand},
		{"surrender allowed", SurrenderOrHit, true, true, true, Surrender},
		{"surrender blocked falls to hit", SurrenderOrHit, true, false, true, Hit},
		{"surrender blocked falls to stand", SurrenderOrStand, true, false, true, Stand},
		{"surrender blocked falls to split", SurrenderOrSplit, true, false, true, Split},
		{"bare double without permission", Double, false, true, true, Hit},
		{"bare split without permission", Split, true, true, false, Hit},
		{"bare surrender without permission", Surrender, true, false, true, Hit},
		{"stand passes through", Stand, false, false, false, Stand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.Resolve(tt.canDouble, tt.canSurrender, tt.canSplit); got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func hardSit(total, upcard int) Situation {
	return Situation{
		PlayerTotal:  total,
		DealerUpcard: upcard,
		CanDouble:    true,
		CanSurrender: true,
		CanSplit:     true,
	}
}

func TestBasicStrategy_HardTotals(t *testing.T) {
	bs := NewBasicStrategy(blackjack.DefaultRules())

	tests := []struct {
		total  int
		upcard int
		want   Action
	}{
		{5, 2, Hit},
		{8, 6, Hit},
		{9, 2, Hit},
		{9, 3, Double},
		{9, 6, Double},
		{9, 7, Hit},
		{10, 9, Double},
		{10, 10, Hit},
		{11, 6, Double},
		{11, 11, Double},
		{12, 2, Hit},
		{12, 3, Hit},
		{12, 4, Stand},
		{12, 6, Stand},
		{12, 7, Hit},
		{13, 2, Stand},
		{14, 10, Hit},
		{16, 6, Stand},
		{16, 8, Hit},
		{17, 11, Stand},
		{20, 10, Stand},
	}

	for _, tt := range tests {
		if got := bs.Recommend(hardSit(tt.total, tt.upcard)); got != tt.want {
			t.Errorf("hard %d vs %d = %s, want %s", tt.total, tt.upcard, got, tt.want)
		}
	}
}

func TestBasicStrategy_SurrenderEntries(t *testing.T) {
	h17 := NewBasicStrategy(blackjack.DefaultRules())

	if got := h17.Recommend(hardSit(16, 10)); got != Surrender {
		t.Errorf("H17 16 vs 10 = %s, want SURRENDER", got)
	}
	if got := h17.Recommend(hardSit(15, 11)); got != Surrender {
		t.Errorf("H17 15 vs A = %s, want SURRENDER", got)
	}

	// S17 drops the 15 vs ace surrender.
	s17 := NewBasicStrategy(blackjack.VegasStrip())
	if got := s17.Recommend(hardSit(15, 11)); got != Hit {
		t.Errorf("S17 15 vs A = %s, want HIT", got)
	}
	if got := s17.Recommend(hardSit(16, 10)); got != Surrender {
		t.Errorf("S17 16 vs 10 = %s, want SURRENDER", got)
	}

	// Without surrender in the rules the entries are plain hits.
	noSurrender := NewBasicStrategy(blackjack.SingleDeck())
	if got := noSurrender.Recommend(hardSit(16, 10)); got != Hit {
		t.Errorf("no-surrender 16 vs 10 = %s, want HIT", got)
	}

	// A hand that can no longer surrender hits instead.
	sit := hardSit(16, 10)
	sit.CanSurrender = false
	if got := h17.Recommend(sit); got != Hit {
		t.Errorf("16 vs 10 after hitting = %s, want HIT", got)
	}
}

func TestBasicStrategy_SoftTotals(t *testing.T) {
	bs := NewBasicStrategy(blackjack.DefaultRules())

	tests := []struct {
		total  int
		upcard int
		want   Action
	}{
		{13, 4, Hit},
		{13, 5, Double},
		{14, 6, Double},
		{15, 4, Double},
		{16, 3, Hit},
		{17, 2, Hit},
		{17, 3, Double},
		{18, 2, Double},
		{18, 7, Stand},
		{18, 9, Hit},
		{19, 5, Stand},
		{20, 6, Stand},
	}

	for _, tt := range tests {
		sit := hardSit(tt.total, tt.upcard)
		sit.IsSoft = true
		if got := bs.Recommend(sit); got != tt.want {
			t.Errorf("soft %d vs %d = %s, want %s", tt.total, tt.upcard, got, tt.want)
		}
	}
}

func TestBasicStrategy_SoftNineteenVersusSix(t *testing.T) {
	sit := hardSit(19, 6)
	sit.IsSoft = true

	h17 := NewBasicStrategy(blackjack.DefaultRules())
	if got := h17.Recommend(sit); got != Double {
		t.Errorf("H17 soft 19 vs 6 = %s, want DOUBLE", got)
	}

	s17 := NewBasicStrategy(blackjack.VegasStrip())
	if got := s17.Recommend(sit); got != Stand {
		t.Errorf("S17 soft 19 vs 6 = %s, want STAND", got)
	}

	// Three-card soft 19 cannot double and stands.
	noDouble := sit
	noDouble.CanDouble = false
	if got := h17.Recommend(noDouble); got != Stand {
		t.Errorf("soft 19 vs 6 without double = %s, want STAND", got)
	}
}

func pairSit(pairValue, upcard int) Situation {
	return Situation{
		PlayerTotal:  pairValue * 2,
		DealerUpcard: upcard,
		IsPair:       true,
		PairValue:    pairValue,
		CanDouble:    true,
		CanSurrender: true,
		CanSplit:     true,
	}
}

func TestBasicStrategy_Pairs(t *testing.T) {
	bs := NewBasicStrategy(blackjack.DefaultRules())

	tests := []struct {
		pairValue int
		upcard    int
		want      Action
	}{
		{2, 2, Split},
		{2, 7, Split},
		{2, 8, Hit},
		{3, 3, Split},
		{4, 4, Hit},
		{4, 5, Split},
		{5, 6, Double},
		{5, 10, Hit},
		{6, 2, Split},
		{6, 7, Hit},
		{7, 7, Split},
		{7, 8, Hit},
		{8, 5, Split},
		{9, 6, Split},
		{9, 7, Stand},
		{9, 9, Split},
		{9, 10, Stand},
		{10, 6, Stand},
		{11, 2, Split},
		{11, 11, Split},
	}

	for _, tt := range tests {
		if got := bs.Recommend(pairSit(tt.pairValue, tt.upcard)); got != tt.want {
			t.Errorf("pair of %ds vs %d = %s, want %s", tt.pairValue, tt.upcard, got, tt.want)
		}
	}
}

func TestBasicStrategy_PairsWithoutDAS(t *testing.T) {
	rules := blackjack.DefaultRules()
	rules.DoubleAfterSplit = false
	bs := NewBasicStrategy(rules)

	// The marginal splits turn into hits without double-after-split.
	tests := []struct {
		pairValue int
		upcard    int
		want      Action
	}{
		{2, 2, Hit},
		{2, 4, Split},
		{3, 3, Hit},
		{4, 5, Hit},
		{6, 2, Hit},
		{6, 3, Split},
	}

	for _, tt := range tests {
		if got := bs.Recommend(pairSit(tt.pairValue, tt.upcard)); got != tt.want {
			t.Errorf("pair of %ds vs %d = %s, want %s", tt.pairValue, tt.upcard, got, tt.want)
		}
	}
}

func TestBasicStrategy_EightsSurrenderUnderH17(t *testing.T) {
	bs := NewBasicStrategy(blackjack.DefaultRules())

	if got := bs.Recommend(pairSit(8, 10)); got != Surrender {
		t.Errorf("H17 8,8 vs 10 = %s, want SURRENDER", got)
	}

	// Once surrender is off the table the eights still split.
	sit := pairSit(8, 10)
	sit.CanSurrender = false
	if got := bs.Recommend(sit); got != Split {
		t.Errorf("8,8 vs 10 without surrender = %s, want SPLIT", got)
	}

	s17 := NewBasicStrategy(blackjack.VegasStrip())
	if got := s17.Recommend(pairSit(8, 10)); got != Split {
		t.Errorf("S17 8,8 vs 10 = %s, want SPLIT", got)
	}
}

func TestBasicStrategy_UnsplittablePairFallsThrough(t *testing.T) {
	bs := NewBasicStrategy(blackjack.DefaultRules())

	// A pair that cannot split plays as its hard total; hard 4 is off
	// the chart and defaults to a hit.
	sit := pairSit(2, 5)
	sit.CanSplit = false
	if got := bs.Recommend(sit); got != Hit {
		t.Errorf("unsplittable 2,2 vs 5 = %s, want HIT", got)
	}

	// Unsplittable tens are just a hard twenty.
	sit = pairSit(10, 5)
	sit.CanSplit = false
	if got := bs.Recommend(sit); got != Stand {
		t.Errorf("unsplittable 10,10 vs 5 = %s, want STAND", got)
	}
}

func TestHandSituation(t *testing.T) {
	hand := blackjack.NewHand(100)
	hand.AddCard(blackjack.MustParseCard("8♠"))
	hand.AddCard(blackjack.MustParseCard("8♦"))

	sit := HandSituation(hand, blackjack.MustParseCard("K♥"), true, true, true)
	if sit.PlayerTotal != 16 || sit.DealerUpcard != 10 || !sit.IsPair || sit.PairValue != 8 || sit.IsSoft {
		t.Errorf("unexpected situation %+v", sit)
	}

	soft := blackjack.NewHand(100)
	soft.AddCard(blackjack.MustParseCard("A♠"))
	soft.AddCard(blackjack.MustParseCard("6♦"))

	sit = HandSituation(soft, blackjack.MustParseCard("3♥"), true, true, false)
	if sit.PlayerTotal != 17 || !sit.IsSoft || sit.IsPair {
		t.Errorf("unexpected situation %+v", sit)
	}

	// Ten-value cards pair by value, so K-Q keys the pair chart at 10.
	tens := blackjack.NewHand(100)
	tens.AddCard(blackjack.MustParseCard("K♠"))
	tens.AddCard(blackjack.MustParseCard("Q♦"))

	sit = HandSituation(tens, blackjack.MustParseCard("6♥"), true, true, true)
	if !sit.IsPair || sit.PairValue != 10 || sit.PlayerTotal != 20 {
		t.Errorf("unexpected situation %+v", sit)
	}
}
