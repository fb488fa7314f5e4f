package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/cmd/blackjacktrainer/shared"
	"github.com/lox/blackjacktrainer/internal/bot"
	"github.com/lox/blackjacktrainer/internal/display"
	"github.com/lox/blackjacktrainer/internal/simulator"
)

// SimulateCmd plays many rounds without a server and reports the
// strategy's expected value
type SimulateCmd struct {
	Rounds      int     `short:"n" help:"Number of rounds to simulate" default:"10000"`
	Workers     int     `short:"w" help:"Parallel workers" default:"4"`
	Seed        int64   `help:"RNG seed; 0 derives one from the clock"`
	Rules       string  `help:"Rules preset" default:"vegas_strip"`
	Penetration float64 `help:"Shoe penetration before reshuffle" default:"0.75"`
	Bankroll    int64   `help:"Starting bankroll per worker" default:"100000"`
	System      string  `help:"Counting system, or 'none' for flat-bet basic strategy" default:"none"`
	BetSpread   string  `name:"bet-spread" help:"Bet spread as min-max, e.g. 10-80"`
	Output      string  `short:"o" help:"Write a JSON report to this path"`
	Progress    string  `help:"Progress display: pretty, dots or none" enum:"pretty,dots,none" default:"pretty"`
	Debug       bool    `short:"d" help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	rules, err := blackjack.PresetRules(c.Rules)
	if err != nil {
		return err
	}

	var spread bot.BetSpread
	if c.BetSpread != "" {
		spread, err = bot.ParseBetSpread(c.BetSpread)
		if err != nil {
			return err
		}
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var monitor display.Monitor
	switch c.Progress {
	case "pretty":
		monitor = display.NewPretty(os.Stdout)
	case "dots":
		monitor = display.NewDots(os.Stdout)
	default:
		monitor = display.Nop{}
	}

	sim := simulator.New(simulator.Config{
		Rounds:      c.Rounds,
		Workers:     c.Workers,
		Seed:        seed,
		Rules:       rules,
		Penetration: c.Penetration,
		Bankroll:    c.Bankroll,
		System:      c.System,
		Spread:      spread,
		Monitor:     monitor,
		Logger:      logger,
	})

	ctx := shared.SetupSignalHandler()
	start := time.Now()

	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := sim.WriteReport(c.Output, stats, time.Since(start)); err != nil {
			return err
		}
		fmt.Printf("report written to %s\n", c.Output)
	}
	return nil
}
