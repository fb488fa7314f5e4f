package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/blackjacktrainer/cmd/blackjacktrainer/shared"
	"github.com/lox/blackjacktrainer/internal/client"
	"github.com/lox/blackjacktrainer/internal/tui"
)

// PlayCmd connects to a trainer server and plays interactively
type PlayCmd struct {
	Server  string `help:"Trainer server base URL" default:"http://localhost:8080"`
	Session string `help:"Resume an existing session id"`
	Debug   bool   `short:"d" help:"Enable debug logging"`
}

func (c *PlayCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cl := client.New(c.Server, logger)
	defer cl.Close()

	if c.Session != "" {
		cl.ResumeSession(c.Session)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := cl.NewGame(ctx); err != nil {
			return fmt.Errorf("creating game: %w", err)
		}
		logger.Info("session created", "session_id", cl.SessionID())
	}

	if err := cl.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	model := tui.NewPlayModel(cl, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}

	fmt.Printf("session id: %s (resume with --session)\n", cl.SessionID())
	return nil
}
