// Package simulator plays large batches of rounds against the engine
// to measure an agent's edge. Workers each own a seeded engine and an
// agent; round results stream to an aggregator that folds them into a
// statistics accumulator.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/bot"
	"github.com/lox/blackjacktrainer/internal/counting"
	"github.com/lox/blackjacktrainer/internal/display"
	"github.com/lox/blackjacktrainer/internal/fileutil"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/randutil"
	"github.com/lox/blackjacktrainer/internal/statistics"
	"github.com/lox/blackjacktrainer/internal/strategy"
)

// progressEvery is how many rounds a worker completes between monitor
// ticks.
const progressEvery = 1000

// Config holds a simulation's parameters.
type Config struct {
	Rounds  int
	Workers int
	Seed    int64

	Rules       blackjack.RuleSet
	Penetration float64
	Bankroll    int64

	// System selects the counting system, or "" / "none" for a flat
	// betting basic strategy agent.
	System string
	Spread bot.BetSpread

	Monitor display.Monitor
	Logger  *log.Logger
}

// Simulator runs the configured simulation.
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a simulator. Zero-value config fields get sensible
// defaults.
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Rounds <= 0 {
		config.Rounds = 10000
	}
	if config.Bankroll <= 0 {
		config.Bankroll = 100000
	}
	if config.Penetration <= 0 || config.Penetration > 1 {
		config.Penetration = 0.75
	}
	if config.Spread.Unit <= 0 {
		config.Spread = bot.BetSpread{Unit: config.Rules.MinBet, MaxUnits: 8}
	}
	if config.Monitor == nil {
		config.Monitor = display.Nop{}
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Simulator{
		config: config,
		logger: config.Logger.WithPrefix("simulator"),
	}
}

// Run plays the configured number of rounds and returns the pooled
// statistics. The context cancels the run early; whatever was played
// is still returned.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	cfg := s.config
	start := time.Now()
	cfg.Monitor.Start(cfg.Rounds)

	results := make(chan statistics.RoundResult, 1024)

	workers, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		worker := w
		rounds := cfg.Rounds / cfg.Workers
		if worker < cfg.Rounds%cfg.Workers {
			rounds++
		}
		workers.Go(func() error {
			return s.runWorker(ctx, worker, rounds, results)
		})
	}

	// Close the stream once every worker is done so the aggregator
	// below can drain and finish.
	errCh := make(chan error, 1)
	go func() {
		errCh <- workers.Wait()
		close(results)
	}()

	stats := &statistics.Statistics{}
	done := 0
	for result := range results {
		stats.Add(result)
		done++
		if done%progressEvery == 0 {
			cfg.Monitor.Progress(done, stats)
		}
	}

	err := <-errCh
	cancelled := errors.Is(err, context.Canceled)
	if err != nil && !cancelled {
		return stats, err
	}
	if !cancelled {
		if err := stats.Validate(); err != nil {
			return stats, fmt.Errorf("statistics validation: %w", err)
		}
	}

	cfg.Monitor.Finish(stats, time.Since(start))
	return stats, nil
}

// runWorker plays rounds on its own engine and agent until its share
// is done or the context is cancelled.
func (s *Simulator) runWorker(ctx context.Context, worker, rounds int, results chan<- statistics.RoundResult) error {
	seed := s.config.Seed + int64(worker)

	w, err := newWorkerState(s.config, seed, s.logger)
	if err != nil {
		return fmt.Errorf("worker %d: %w", worker, err)
	}

	for i := 0; i < rounds; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := w.playRound()
		if err != nil {
			return fmt.Errorf("worker %d round %d: %w", worker, i, err)
		}
		result.Seed = seed

		select {
		case results <- result:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// workerState is one worker's engine, agent and the event-fed
// accounting for the round in progress.
type workerState struct {
	config Config
	engine *game.Engine
	agent  bot.Agent

	// reset at the top of each round, filled by the event handler
	wagered   int64
	baseBet   int64
	blackjack bool
	doubled   bool
	split     bool
	hands     int
}

func newWorkerState(config Config, seed int64, logger *log.Logger) (*workerState, error) {
	w := &workerState{config: config}

	var agent bot.Agent
	switch config.System {
	case "", "none", "basic":
		agent = bot.NewBasicAgent(config.Rules, config.Rules.MinBet, logger)
	default:
		agent = bot.NewCountingAgent(config.Rules, counting.ForName(config.System), config.Spread, logger)
	}
	w.agent = agent

	if err := w.freshEngine(seed); err != nil {
		return nil, err
	}
	return w, nil
}

// freshEngine builds a new engine and subscribes the agent's card feed
// and the worker's accounting to it.
func (w *workerState) freshEngine(seed int64) error {
	engine, err := game.NewEngine(w.config.Rules, decimal.NewFromInt(w.config.Bankroll),
		game.WithRNG(randutil.New(seed)),
		game.WithPenetration(w.config.Penetration))
	if err != nil {
		return err
	}

	engine.Events().SubscribeAll(func(event game.Event) {
		switch event.Type {
		case game.EventCardDealt:
			if card, ok := event.Data["card"].(string); ok && card != game.HiddenCard {
				if parsed, err := blackjack.ParseCard(card); err == nil {
					w.agent.ObserveCard(parsed)
				}
			}
		case game.EventDealerReveals:
			if card, ok := event.Data["card"].(string); ok {
				if parsed, err := blackjack.ParseCard(card); err == nil {
					w.agent.ObserveCard(parsed)
				}
			}
		case game.EventShoeShuffled:
			w.agent.ObserveShuffle()
		case game.EventBetPlaced:
			if amount, ok := event.Data["amount"].(decimal.Decimal); ok {
				w.baseBet = amount.IntPart()
				w.wagered = w.baseBet
			}
		case game.EventPlayerDouble:
			w.wagered += w.baseBet
			w.doubled = true
		case game.EventPlayerSplit:
			w.wagered += w.baseBet
			w.split = true
		case game.EventInsuranceTaken:
			if amount, ok := event.Data["amount"].(decimal.Decimal); ok {
				w.wagered += amount.IntPart()
			}
		case game.EventPlayerBlackjack:
			w.blackjack = true
		case game.EventPlayerWins, game.EventPlayerLoses, game.EventPush:
			w.hands++
		}
	})

	w.agent.ObserveShuffle()
	w.engine = engine
	return nil
}

func (w *workerState) trueCount() float64 {
	return w.agent.TrueCount(w.engine.Shoe().DecksRemaining())
}

// playRound bets, plays every hand to completion and reports the net.
func (w *workerState) playRound() (statistics.RoundResult, error) {
	w.wagered, w.baseBet = 0, 0
	w.blackjack, w.doubled, w.split = false, false, false
	w.hands = 0

	bet := w.agent.BetSize(w.trueCount(), w.engine.Bankroll())
	if bet < w.config.Rules.MinBet {
		bet = w.config.Rules.MinBet
	}
	if bet > w.config.Rules.MaxBet {
		bet = w.config.Rules.MaxBet
	}

	// A busted bankroll rebuys with a fresh engine; the statistics
	// measure edge per round, not survival.
	if w.engine.Bankroll().LessThan(decimal.NewFromInt(bet)) {
		if err := w.freshEngine(time.Now().UnixNano()); err != nil {
			return statistics.RoundResult{}, err
		}
	}

	before := w.engine.Bankroll()
	if !w.engine.Bet(bet) {
		return statistics.RoundResult{}, fmt.Errorf("bet %d rejected in state %s", bet, w.engine.State())
	}

	if w.engine.State() == game.StateOfferingInsurance {
		if w.agent.TakeInsurance(w.trueCount()) {
			w.engine.TakeMaxInsurance()
		} else {
			w.engine.DeclineInsurance()
		}
	}

	for steps := 0; w.engine.State() == game.StatePlayerTurn; steps++ {
		if steps > 64 {
			return statistics.RoundResult{}, fmt.Errorf("round did not converge")
		}
		if err := w.playDecision(); err != nil {
			return statistics.RoundResult{}, err
		}
	}

	if state := w.engine.State(); state != game.StateWaitingForBet && state != game.StateGameOver {
		return statistics.RoundResult{}, fmt.Errorf("round ended in state %s", state)
	}

	net, _ := w.engine.Bankroll().Sub(before).Float64()
	return statistics.RoundResult{
		Net:       net,
		Wagered:   float64(w.wagered),
		Hands:     w.hands,
		Blackjack: w.blackjack,
		Doubled:   w.doubled,
		Split:     w.split,
	}, nil
}

func (w *workerState) playDecision() error {
	engine := w.engine
	hand := engine.ActiveHand()
	upcard, ok := engine.DealerUpcard()
	if hand == nil || !ok {
		return fmt.Errorf("no active hand in state %s", engine.State())
	}

	sit := strategy.HandSituation(hand, upcard, engine.CanDouble(), engine.CanSurrender(), engine.CanSplit())
	decision := w.agent.Decide(sit, w.trueCount())

	var accepted bool
	switch decision.Action {
	case strategy.Hit:
		accepted = engine.Hit()
	case strategy.Stand:
		accepted = engine.Stand()
	case strategy.Double:
		accepted = engine.DoubleDown()
	case strategy.Split:
		accepted = engine.Split()
	case strategy.Surrender:
		accepted = engine.Surrender()
	default:
		return fmt.Errorf("agent returned unresolved action %s", decision.Action)
	}
	if !accepted {
		// The situation told the agent the play was legal; falling
		// back to a hit keeps a mismatch from wedging the round.
		if !engine.Hit() {
			return fmt.Errorf("action %s rejected and hit fallback failed", decision.Action)
		}
	}
	return nil
}

// Report is the JSON shape written by WriteReport.
type Report struct {
	Rounds     int     `json:"rounds"`
	Workers    int     `json:"workers"`
	Seed       int64   `json:"seed"`
	System     string  `json:"system"`
	Net        float64 `json:"net"`
	Wagered    float64 `json:"wagered"`
	EdgePct    float64 `json:"edge_percent"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	CILow      float64 `json:"ci95_low"`
	CIHigh     float64 `json:"ci95_high"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Pushes     int     `json:"pushes"`
	Blackjacks int     `json:"blackjacks"`
	ElapsedSec float64 `json:"elapsed_seconds"`
}

// WriteReport writes a JSON results report atomically.
func (s *Simulator) WriteReport(path string, stats *statistics.Statistics, elapsed time.Duration) error {
	low, high := stats.ConfidenceInterval95()
	report := Report{
		Rounds:     stats.Rounds,
		Workers:    s.config.Workers,
		Seed:       s.config.Seed,
		System:     s.config.System,
		Net:        stats.Sum,
		Wagered:    stats.Wagered,
		EdgePct:    stats.EdgePercent(),
		Mean:       stats.Mean(),
		StdDev:     stats.StdDev(),
		CILow:      low,
		CIHigh:     high,
		Wins:       stats.Wins,
		Losses:     stats.Losses,
		Pushes:     stats.Pushes,
		Blackjacks: stats.Blackjacks,
		ElapsedSec: elapsed.Seconds(),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}
