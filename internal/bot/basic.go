package bot

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/strategy"
)

// BasicAgent bets flat and plays pure basic strategy. It never takes
// insurance and keeps no count, which makes it the baseline for
// measuring what counting adds.
type BasicAgent struct {
	basic  *strategy.BasicStrategy
	bet    int64
	logger *log.Logger
}

// NewBasicAgent creates an agent that bets a fixed amount every round.
func NewBasicAgent(rules blackjack.RuleSet, bet int64, logger *log.Logger) *BasicAgent {
	return &BasicAgent{
		basic:  strategy.NewBasicStrategy(rules),
		bet:    bet,
		logger: logger.WithPrefix("basic-agent"),
	}
}

func (a *BasicAgent) Name() string { return "basic" }

func (a *BasicAgent) BetSize(_ float64, bankroll decimal.Decimal) int64 {
	if bankroll.LessThan(decimal.NewFromInt(a.bet)) {
		return bankroll.IntPart()
	}
	return a.bet
}

func (a *BasicAgent) Decide(sit strategy.Situation, _ float64) Decision {
	action := a.basic.Recommend(sit)
	return Decision{
		Action:    action,
		Reasoning: fmt.Sprintf("basic strategy: %d vs %d", sit.PlayerTotal, sit.DealerUpcard),
	}
}

// TakeInsurance always declines; insurance is a losing side bet
// without a count.
func (a *BasicAgent) TakeInsurance(float64) bool { return false }

func (a *BasicAgent) ObserveCard(blackjack.Card) {}
func (a *BasicAgent) ObserveShuffle()            {}
func (a *BasicAgent) TrueCount(float64) float64  { return 0 }
