package counting

import "github.com/lox/blackjacktrainer/blackjack"

var hiLoTags = map[blackjack.Rank]float64{
	blackjack.Two:   1,
	blackjack.Three: 1,
	blackjack.Four:  1,
	blackjack.Five:  1,
	blackjack.Six:   1,
	blackjack.Seven: 0,
	blackjack.Eight: 0,
	blackjack.Nine:  0,
	blackjack.Ten:   -1,
	blackjack.Jack:  -1,
	blackjack.Queen: -1,
	blackjack.King:  -1,
	blackjack.Ace:   -1,
}

// HiLo is the classic single-level count: 2-6 are +1, 7-9 neutral,
// tens and aces -1. It is the most widely taught system and the
// default wherever a system name is configurable.
type HiLo struct {
	counter
}

func NewHiLo() *HiLo {
	return &HiLo{counter: counter{tags: hiLoTags}}
}

func (*HiLo) Name() string {
	return "Hi-Lo"
}

func (*HiLo) IsBalanced() bool {
	return true
}

var koTags = map[blackjack.Rank]float64{
	blackjack.Two:   1,
	blackjack.Three: 1,
	blackjack.Four:  1,
	blackjack.Five:  1,
	blackjack.Six:   1,
	blackjack.Seven: 1,
	blackjack.Eight: 0,
	blackjack.Nine:  0,
	blackjack.Ten:   -1,
	blackjack.Jack:  -1,
	blackjack.Queen: -1,
	blackjack.King:  -1,
	blackjack.Ace:   -1,
}

// KO is the Knock-Out count. It tags the 7 as +1 where Hi-Lo does not,
// so a full deck sums to +4. Starting the running count at the initial
// running count for the shoe size puts the pivot at zero and the count
// is played without true count conversion.
type KO struct {
	counter
}

func NewKO() *KO {
	return &KO{counter: counter{tags: koTags}}
}

func (*KO) Name() string {
	return "Knock-Out (KO)"
}

func (*KO) IsBalanced() bool {
	return false
}

// TrueCount returns the running count unchanged; KO never divides by
// decks remaining.
func (k *KO) TrueCount(float64) float64 {
	return k.runningCount
}

// InitialRunningCount returns the starting count for a shoe of
// numDecks decks.
func (*KO) InitialRunningCount(numDecks int) int {
	return 4 - 4*numDecks
}

// ResetForShoe resets the count to the initial running count for a
// fresh shoe.
func (k *KO) ResetForShoe(numDecks int) {
	k.counter.Reset()
	k.runningCount = float64(k.InitialRunningCount(numDecks))
}

var omega2Tags = map[blackjack.Rank]float64{
	blackjack.Two:   1,
	blackjack.Three: 1,
	blackjack.Four:  2,
	blackjack.Five:  2,
	blackjack.Six:   2,
	blackjack.Seven: 1,
	blackjack.Eight: 0,
	blackjack.Nine:  -1,
	blackjack.Ten:   -2,
	blackjack.Jack:  -2,
	blackjack.Queen: -2,
	blackjack.King:  -2,
	blackjack.Ace:   0,
}

// Omega2 is a two-level balanced count. Aces carry a zero tag and are
// tracked in a side count instead, which feeds insurance and betting
// decisions through AceRichness.
type Omega2 struct {
	counter
	acesSeen int
}

func NewOmega2() *Omega2 {
	return &Omega2{counter: counter{tags: omega2Tags}}
}

func (*Omega2) Name() string {
	return "Omega II"
}

func (*Omega2) IsBalanced() bool {
	return true
}

// Count records aces in the side count before applying the tag.
func (o *Omega2) Count(card blackjack.Card) float64 {
	if card.IsAce() {
		o.acesSeen++
	}
	return o.counter.Count(card)
}

// AcesSeen returns the ace side count since the last reset.
func (o *Omega2) AcesSeen() int {
	return o.acesSeen
}

// AcesRemaining returns how many aces are still unseen in a shoe of
// numDecks decks.
func (o *Omega2) AcesRemaining(numDecks int) int {
	return numDecks*4 - o.acesSeen
}

// AceRichness compares the aces actually remaining against the number
// expected at the current shoe depth. Above 1.0 the remaining cards
// are ace-rich.
func (o *Omega2) AceRichness(numDecks int, decksRemaining float64) float64 {
	if decksRemaining <= 0 {
		return 1.0
	}
	return float64(o.AcesRemaining(numDecks)) / (decksRemaining * 4)
}

func (o *Omega2) Reset() {
	o.counter.Reset()
	o.acesSeen = 0
}

var wongHalvesTags = map[blackjack.Rank]float64{
	blackjack.Two:   0.5,
	blackjack.Three: 1,
	blackjack.Four:  1,
	blackjack.Five:  1.5,
	blackjack.Six:   1,
	blackjack.Seven: 0.5,
	blackjack.Eight: 0,
	blackjack.Nine:  -0.5,
	blackjack.Ten:   -1,
	blackjack.Jack:  -1,
	blackjack.Queen: -1,
	blackjack.King:  -1,
	blackjack.Ace:   -1,
}

// wongHalvesDoubledTags is every Wong Halves tag times two, so the
// count stays in whole numbers.
var wongHalvesDoubledTags = func() map[blackjack.Rank]float64 {
	out := make(map[blackjack.Rank]float64, len(wongHalvesTags))
	for rank, tag := range wongHalvesTags {
		out[rank] = tag * 2
	}
	return out
}()

// WongHalves is a three-level balanced count with fractional tags, one
// of the most accurate systems in use. The doubled mode multiplies
// every tag by two for players who prefer counting in integers.
type WongHalves struct {
	counter
	doubled bool
}

func NewWongHalves(doubled bool) *WongHalves {
	tags := wongHalvesTags
	if doubled {
		tags = wongHalvesDoubledTags
	}
	return &WongHalves{counter: counter{tags: tags}, doubled: doubled}
}

func (w *WongHalves) Name() string {
	if w.doubled {
		return "Wong Halves (Doubled)"
	}
	return "Wong Halves"
}

func (*WongHalves) IsBalanced() bool {
	return true
}

// UsesDoubledValues reports whether the integer tag table is active.
func (w *WongHalves) UsesDoubledValues() bool {
	return w.doubled
}
