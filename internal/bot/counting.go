package bot

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/counting"
	"github.com/lox/blackjacktrainer/internal/strategy"
)

// CountingAgent keeps a running count, spreads its bets with the true
// count and plays basic strategy with index deviations. Insurance is
// taken at the Illustrious 18 index of +3.
type CountingAgent struct {
	basic  *strategy.BasicStrategy
	system counting.System
	spread BetSpread
	logger *log.Logger
}

// NewCountingAgent creates a counting agent. A nil system defaults to
// Hi-Lo.
func NewCountingAgent(rules blackjack.RuleSet, system counting.System, spread BetSpread, logger *log.Logger) *CountingAgent {
	if system == nil {
		system = counting.NewHiLo()
	}
	return &CountingAgent{
		basic:  strategy.NewBasicStrategy(rules),
		system: system,
		spread: spread,
		logger: logger.WithPrefix("counting-agent"),
	}
}

func (a *CountingAgent) Name() string {
	return fmt.Sprintf("counting(%s)", a.system.Name())
}

func (a *CountingAgent) BetSize(trueCount float64, bankroll decimal.Decimal) int64 {
	bet := a.spread.Bet(trueCount)
	if bankroll.LessThan(decimal.NewFromInt(bet)) {
		bet = bankroll.IntPart()
	}
	return bet
}

func (a *CountingAgent) Decide(sit strategy.Situation, trueCount float64) Decision {
	dev := strategy.FindDeviation(sit.PlayerTotal, sit.IsSoft, sit.IsPair, sit.DealerUpcard, trueCount, sit.CanSurrender)
	if dev != nil {
		action := dev.DeviationAction.Resolve(sit.CanDouble, sit.CanSurrender, sit.CanSplit)
		return Decision{
			Action:    action,
			Reasoning: fmt.Sprintf("deviation at TC %+.1f: %s", trueCount, dev.Description),
		}
	}

	action := a.basic.Recommend(sit)
	return Decision{
		Action:    action,
		Reasoning: fmt.Sprintf("basic strategy: %d vs %d", sit.PlayerTotal, sit.DealerUpcard),
	}
}

func (a *CountingAgent) TakeInsurance(trueCount float64) bool {
	return strategy.TakeInsurance(trueCount)
}

func (a *CountingAgent) ObserveCard(card blackjack.Card) {
	a.system.Count(card)
}

func (a *CountingAgent) ObserveShuffle() {
	a.system.Reset()
}

func (a *CountingAgent) TrueCount(decksRemaining float64) float64 {
	return a.system.TrueCount(decksRemaining)
}

// RunningCount exposes the raw count, mainly for tests and reporting.
func (a *CountingAgent) RunningCount() float64 {
	return a.system.RunningCount()
}
