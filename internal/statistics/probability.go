package statistics

import (
	"fmt"

	"github.com/lox/blackjacktrainer/blackjack"
)

// DealerOutcomes holds the dealer's final-total distribution for one
// upcard under the infinite deck approximation. The blackjack
// probability is only nonzero for ten and ace upcards, and only when
// the hole card has not been checked.
type DealerOutcomes struct {
	Upcard    int // 2-11, ace as 11
	Bust      float64
	Seventeen float64
	Eighteen  float64
	Nineteen  float64
	Twenty    float64
	TwentyOne float64
	Blackjack float64
}

// dealer outcome tables, stand on soft 17
var dealerOutcomesS17 = map[int]DealerOutcomes{
	2:  {2, 0.3536, 0.1395, 0.1324, 0.1233, 0.1218, 0.1294, 0},
	3:  {3, 0.3723, 0.1305, 0.1260, 0.1199, 0.1184, 0.1329, 0},
	4:  {4, 0.3926, 0.1310, 0.1140, 0.1136, 0.1136, 0.1352, 0},
	5:  {5, 0.4168, 0.1228, 0.1097, 0.1085, 0.1092, 0.1330, 0},
	6:  {6, 0.4234, 0.1065, 0.1063, 0.1059, 0.1060, 0.1519, 0},
	7:  {7, 0.2618, 0.3686, 0.1379, 0.0786, 0.0786, 0.0745, 0},
	8:  {8, 0.2439, 0.1286, 0.3598, 0.1289, 0.0686, 0.0702, 0},
	9:  {9, 0.2278, 0.1198, 0.1082, 0.3544, 0.1210, 0.0688, 0},
	10: {10, 0.2122, 0.1118, 0.1122, 0.1119, 0.3396, 0.0353, 0.0770},
	11: {11, 0.1169, 0.1307, 0.1307, 0.1307, 0.1307, 0.0294, 0.3309},
}

// dealer outcome tables, hit soft 17
var dealerOutcomesH17 = map[int]DealerOutcomes{
	2:  {2, 0.3551, 0.1380, 0.1320, 0.1228, 0.1217, 0.1304, 0},
	3:  {3, 0.3742, 0.1291, 0.1255, 0.1192, 0.1179, 0.1341, 0},
	4:  {4, 0.3946, 0.1296, 0.1134, 0.1127, 0.1129, 0.1368, 0},
	5:  {5, 0.4189, 0.1215, 0.1091, 0.1076, 0.1084, 0.1345, 0},
	6:  {6, 0.4256, 0.1050, 0.1057, 0.1050, 0.1051, 0.1536, 0},
	7:  {7, 0.2620, 0.3684, 0.1378, 0.0785, 0.0786, 0.0747, 0},
	8:  {8, 0.2442, 0.1284, 0.3597, 0.1288, 0.0685, 0.0704, 0},
	9:  {9, 0.2281, 0.1196, 0.1081, 0.3543, 0.1209, 0.0690, 0},
	10: {10, 0.2124, 0.1116, 0.1121, 0.1118, 0.3394, 0.0357, 0.0770},
	11: {11, 0.1271, 0.1195, 0.1195, 0.1297, 0.1297, 0.0436, 0.3309},
}

// OutcomesFor returns the dealer outcome distribution for an upcard
// value (2-11, ace as 11) under the given rules.
func OutcomesFor(rules blackjack.RuleSet, upcard int) (DealerOutcomes, error) {
	if upcard < 2 || upcard > 11 {
		return DealerOutcomes{}, fmt.Errorf("statistics: invalid upcard %d", upcard)
	}
	if rules.DealerHitsSoft17 {
		return dealerOutcomesH17[upcard], nil
	}
	return dealerOutcomesS17[upcard], nil
}

// DealerBustProbability returns the chance the dealer busts from an
// upcard, or zero for an invalid upcard.
func DealerBustProbability(rules blackjack.RuleSet, upcard int) float64 {
	outcomes, err := OutcomesFor(rules, upcard)
	if err != nil {
		return 0
	}
	return outcomes.Bust
}

// PlayerBustProbability returns the chance that one more card busts a
// hard total, under the infinite deck approximation. Totals below 12
// cannot bust; 21 always does.
func PlayerBustProbability(hardTotal int) float64 {
	if hardTotal < 12 {
		return 0
	}
	if hardTotal >= 21 {
		return 1
	}

	// Card values 2-9 carry one rank each, ten-value cards four ranks,
	// and the ace drops to one in a hard twelve or better.
	busting := 0.0
	for value := 2; value <= 9; value++ {
		if hardTotal+value > 21 {
			busting++
		}
	}
	if hardTotal+10 > 21 {
		busting += 4
	}
	return busting / 13
}

// StandEV returns the expected value of standing on a total against an
// upcard, per unit bet. A dealer blackjack is treated as a dealt
// twenty-one.
func StandEV(rules blackjack.RuleSet, playerTotal, upcard int) (float64, error) {
	outcomes, err := OutcomesFor(rules, upcard)
	if err != nil {
		return 0, err
	}

	ev := outcomes.Bust
	for _, final := range []struct {
		total int
		prob  float64
	}{
		{17, outcomes.Seventeen},
		{18, outcomes.Eighteen},
		{19, outcomes.Nineteen},
		{20, outcomes.Twenty},
		{21, outcomes.TwentyOne},
		{21, outcomes.Blackjack},
	} {
		switch {
		case final.total > playerTotal:
			ev -= final.prob
		case final.total < playerTotal:
			ev += final.prob
		}
	}
	return ev, nil
}
