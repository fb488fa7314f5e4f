package statistics

import "math"

// RiskOfRuin estimates the probability of losing the whole bankroll in
// an infinite-horizon game. The edge is a fraction (0.01 is 1%), units
// is the bankroll in average bets, and variance is per-round (use
// BlackjackVariance for typical play). Non-positive edges always ruin.
func RiskOfRuin(edge, variance, units float64) float64 {
	if edge <= 0 {
		return 1
	}

	exponent := -2 * edge * units / variance
	if exponent <= -700 {
		return 0
	}
	ror := math.Exp(exponent)
	return math.Min(1, math.Max(0, ror))
}

// HandsToDouble estimates the expected number of hands to double a
// bankroll of the given units at the given edge.
func HandsToDouble(units, edge float64) int {
	if edge <= 0 {
		return 0
	}
	return int(units / edge)
}

// N0 returns the number of hands after which the expected win
// overtakes one standard deviation of variance: variance over edge
// squared. Non-positive edges never get there.
func N0(edge, variance float64) float64 {
	if edge <= 0 {
		return math.Inf(1)
	}
	return variance / (edge * edge)
}

// SessionStopLoss returns the recommended stop-loss for a session as a
// fraction of bankroll.
func SessionStopLoss(bankroll, fraction float64) float64 {
	return bankroll * fraction
}

// SessionWinGoal returns the session win goal as a multiple of the
// stop-loss.
func SessionWinGoal(stopLoss, ratio float64) float64 {
	return stopLoss * ratio
}
