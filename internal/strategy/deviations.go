package strategy

// Deviation is an index play: a departure from basic strategy once the
// true count crosses an index number.
type Deviation struct {
	PlayerTotal  int
	IsSoft       bool
	IsPair       bool
	DealerUpcard int

	BasicAction     Action
	DeviationAction Action

	// Index is the true count threshold. The play applies at or above
	// the index, or at or below it when AtOrBelow is set.
	Index     float64
	AtOrBelow bool

	Description string
}

// ShouldDeviate reports whether the true count has crossed the index.
func (d Deviation) ShouldDeviate(trueCount float64) bool {
	if d.AtOrBelow {
		return trueCount <= d.Index
	}
	return trueCount >= d.Index
}

// ActionAt returns the correct action at the given true count.
func (d Deviation) ActionAt(trueCount float64) Action {
	if d.ShouldDeviate(trueCount) {
		return d.DeviationAction
	}
	return d.BasicAction
}

func (d Deviation) matches(playerTotal int, isSoft, isPair bool, dealerUpcard int) bool {
	return d.PlayerTotal == playerTotal &&
		d.IsSoft == isSoft &&
		d.IsPair == isPair &&
		d.DealerUpcard == dealerUpcard
}

// InsuranceIndex is the first and most valuable member of the
// Illustrious 18: take insurance once the true count reaches +3.
const InsuranceIndex = 3.0

// TakeInsurance reports whether the count justifies insurance.
func TakeInsurance(trueCount float64) bool {
	return trueCount >= InsuranceIndex
}

// Illustrious18 holds the playing deviations of Schlesinger's
// Illustrious 18, ordered by expected value gain. Insurance, the
// list's top entry, is a side bet rather than a hand action and is
// exposed through TakeInsurance instead.
var Illustrious18 = []Deviation{
	{
		PlayerTotal: 16, DealerUpcard: 10,
		BasicAction: Hit, DeviationAction: Stand, Index: 0,
		Description: "Stand on 16 vs 10 at TC 0 or higher",
	},
	{
		PlayerTotal: 15, DealerUpcard: 10,
		BasicAction: Hit, DeviationAction: Stand, Index: 4,
		Description: "Stand on 15 vs 10 at TC +4 or higher",
	},
	{
		PlayerTotal: 20, IsPair: true, DealerUpcard: 5,
		BasicAction: Stand, DeviationAction: Split, Index: 5,
		Description: "Split 10s vs 5 at TC +5 or higher",
	},
	{
		PlayerTotal: 20, IsPair: true, DealerUpcard: 6,
		BasicAction: Stand, DeviationAction: Split, Index: 4,
		Description: "Split 10s vs 6 at TC +4 or higher",
	},
	{
		PlayerTotal: 10, DealerUpcard: 10,
		BasicAction: Hit, DeviationAction: Double, Index: 4,
		Description: "Double 10 vs 10 at TC +4 or higher",
	},
	{
		PlayerTotal: 12, DealerUpcard: 3,
		BasicAction: Hit, DeviationAction: Stand, Index: 2,
		Description: "Stand on 12 vs 3 at TC +2 or higher",
	},
	{
		PlayerTotal: 12, DealerUpcard: 2,
		BasicAction: Hit, DeviationAction: Stand, Index: 3,
		Description: "Stand on 12 vs 2 at TC +3 or higher",
	},
	{
		PlayerTotal: 11, DealerUpcard: 11,
		BasicAction: Hit, DeviationAction: Double, Index: 1,
		Description: "Double 11 vs A at TC +1 or higher",
	},
	{
		PlayerTotal: 9, DealerUpcard: 2,
		BasicAction: Hit, DeviationAction: Double, Index: 1,
		Description: "Double 9 vs 2 at TC +1 or higher",
	},
	{
		PlayerTotal: 10, DealerUpcard: 11,
		BasicAction: Hit, DeviationAction: Double, Index: 4,
		Description: "Double 10 vs A at TC +4 or higher",
	},
	{
		PlayerTotal: 9, DealerUpcard: 7,
		BasicAction: Hit, DeviationAction: Double, Index: 3,
		Description: "Double 9 vs 7 at TC +3 or higher",
	},
	{
		PlayerTotal: 16, DealerUpcard: 9,
		BasicAction: Hit, DeviationAction: Stand, Index: 5,
		Description: "Stand on 16 vs 9 at TC +5 or higher",
	},
	{
		PlayerTotal: 13, DealerUpcard: 2,
		BasicAction: Stand, DeviationAction: Hit, Index: -1, AtOrBelow: true,
		Description: "Hit 13 vs 2 at TC -1 or lower",
	},
	{
		PlayerTotal: 12, DealerUpcard: 4,
		BasicAction: Stand, DeviationAction: Hit, Index: 0, AtOrBelow: true,
		Description: "Hit 12 vs 4 at TC 0 or lower",
	},
	{
		PlayerTotal: 12, DealerUpcard: 5,
		BasicAction: Stand, DeviationAction: Hit, Index: -2, AtOrBelow: true,
		Description: "Hit 12 vs 5 at TC -2 or lower",
	},
	{
		PlayerTotal: 12, DealerUpcard: 6,
		BasicAction: Stand, DeviationAction: Hit, Index: -1, AtOrBelow: true,
		Description: "Hit 12 vs 6 at TC -1 or lower",
	},
	{
		PlayerTotal: 13, DealerUpcard: 3,
		BasicAction: Stand, DeviationAction: Hit, Index: -2, AtOrBelow: true,
		Description: "Hit 13 vs 3 at TC -2 or lower",
	},
}

// Fab4 holds the four highest-value surrender deviations. The ace
// indices assume H17 tables.
var Fab4 = []Deviation{
	{
		PlayerTotal: 14, DealerUpcard: 10,
		BasicAction: Hit, DeviationAction: Surrender, Index: 3,
		Description: "Surrender 14 vs 10 at TC +3 or higher",
	},
	{
		PlayerTotal: 15, DealerUpcard: 9,
		BasicAction: Hit, DeviationAction: Surrender, Index: 2,
		Description: "Surrender 15 vs 9 at TC +2 or higher",
	},
	{
		PlayerTotal: 15, DealerUpcard: 11,
		BasicAction: Hit, DeviationAction: Surrender, Index: 1,
		Description: "Surrender 15 vs A at TC +1 or higher (H17)",
	},
	{
		PlayerTotal: 14, DealerUpcard: 11,
		BasicAction: Hit, DeviationAction: Surrender, Index: 3,
		Description: "Surrender 14 vs A at TC +3 or higher (H17)",
	},
}

// FindDeviation returns the first deviation matching the situation
// whose index the true count has crossed, or nil. Fab 4 surrender
// plays are considered unless includeSurrender is false.
func FindDeviation(playerTotal int, isSoft, isPair bool, dealerUpcard int, trueCount float64, includeSurrender bool) *Deviation {
	for _, d := range Illustrious18 {
		if d.matches(playerTotal, isSoft, isPair, dealerUpcard) && d.ShouldDeviate(trueCount) {
			return &d
		}
	}
	if !includeSurrender {
		return nil
	}
	for _, d := range Fab4 {
		if d.matches(playerTotal, isSoft, isPair, dealerUpcard) && d.ShouldDeviate(trueCount) {
			return &d
		}
	}
	return nil
}
