package statistics

import "github.com/shopspring/decimal"

// BlackjackVariance is the per-round variance of a typical blackjack
// game; doubles, splits and the 3:2 payout push it above a coin flip.
var BlackjackVariance = decimal.RequireFromString("1.3")

// Kelly sizes bets with the Kelly criterion, clamped to table limits.
// For the near even-money payouts of blackjack the full Kelly stake is
// edge times bankroll.
type Kelly struct {
	Bankroll decimal.Decimal
	MinBet   decimal.Decimal
	MaxBet   decimal.Decimal
	Fraction decimal.Decimal // 1 = full Kelly, 0.5 = half Kelly
}

// NewKelly builds a calculator. Fractions at or below zero fall back
// to full Kelly.
func NewKelly(bankroll, minBet, maxBet decimal.Decimal, fraction float64) *Kelly {
	f := decimal.NewFromFloat(fraction)
	if f.LessThanOrEqual(decimal.Zero) {
		f = decimal.New(1, 0)
	}
	return &Kelly{Bankroll: bankroll, MinBet: minBet, MaxBet: maxBet, Fraction: f}
}

// OptimalBet returns the Kelly-optimal bet for a player edge expressed
// as a fraction (0.01 is 1%). Non-positive edges bet the table minimum.
func (k *Kelly) OptimalBet(playerEdge decimal.Decimal) decimal.Decimal {
	if playerEdge.LessThanOrEqual(decimal.Zero) {
		return k.MinBet
	}
	stake := playerEdge.Mul(k.Bankroll).Mul(k.Fraction)
	return k.clamp(stake)
}

// WithVariance returns the variance-adjusted Kelly bet: edge divided
// by variance, times bankroll.
func (k *Kelly) WithVariance(playerEdge, variance decimal.Decimal) decimal.Decimal {
	if playerEdge.LessThanOrEqual(decimal.Zero) {
		return k.MinBet
	}
	stake := playerEdge.Div(variance).Mul(k.Bankroll).Mul(k.Fraction)
	return k.clamp(stake)
}

// BetForTrueCount sizes a bet from the running count using the
// half-percent-per-count approximation against a base house edge
// expressed as a fraction (0.005 is 0.5%).
func (k *Kelly) BetForTrueCount(trueCount float64, baseHouseEdge decimal.Decimal) decimal.Decimal {
	edgePerCount := decimal.RequireFromString("0.005")
	playerEdge := decimal.NewFromFloat(trueCount).Mul(edgePerCount).Sub(baseHouseEdge)
	return k.OptimalBet(playerEdge)
}

func (k *Kelly) clamp(stake decimal.Decimal) decimal.Decimal {
	return decimal.Max(k.MinBet, decimal.Min(stake, k.MaxBet)).RoundBank(0)
}

// KellyCriterion returns the optimal fraction of bankroll for a bet
// paying winAmount per unit risked: (b*p - q) / b. Certain or
// impossible outcomes return zero.
func KellyCriterion(winProbability, winAmount, loseAmount float64) float64 {
	if winProbability <= 0 || winProbability >= 1 {
		return 0
	}
	p := winProbability
	q := 1 - p
	b := winAmount / loseAmount

	kelly := (b*p - q) / b
	if kelly < 0 {
		return 0
	}
	return kelly
}
