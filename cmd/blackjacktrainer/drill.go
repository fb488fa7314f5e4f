package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjacktrainer/cmd/blackjacktrainer/shared"
	"github.com/lox/blackjacktrainer/internal/tui"
)

// DrillCmd runs a local card-counting drill
type DrillCmd struct {
	System   string        `help:"Counting system (hilo, ko, omega2, wonghalves)" default:"hilo"`
	Cards    int           `help:"Cards per drill" default:"20"`
	Interval time.Duration `help:"Time each card stays on screen" default:"1s"`
	Debug    bool          `short:"d" help:"Enable debug logging"`
}

func (c *DrillCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	model := tui.NewDrillModel(c.System, c.Cards, c.Interval, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running drill: %w", err)
	}

	correct, total := model.Accuracy()
	if total > 0 {
		fmt.Printf("drills: %d  correct: %d (%.0f%%)\n",
			total, correct, float64(correct)/float64(total)*100)
	}
	return nil
}
