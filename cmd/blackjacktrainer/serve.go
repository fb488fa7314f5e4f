package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/lox/blackjacktrainer/cmd/blackjacktrainer/shared"
	"github.com/lox/blackjacktrainer/internal/server"
	"github.com/lox/blackjacktrainer/internal/session"
)

// ServeCmd runs the trainer server
type ServeCmd struct {
	Config string `short:"c" help:"Path to HCL config file" default:"blackjacktrainer.hcl"`
	Host   string `help:"Listen host (overrides config)"`
	Port   int    `help:"Listen port (overrides config)"`
	Rules  string `help:"Rules preset (overrides config)"`
	Debug  bool   `short:"d" help:"Enable debug logging"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	// Flags win over both file and environment.
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.Rules != "" {
		cfg.Game.RulesPreset = c.Rules
	}
	if c.Debug {
		cfg.Server.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLoggerWithLevel(cfg.Server.LogLevel, cfg.Server.Debug)

	if cfg.Session.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("generating secret key: %w", err)
		}
		cfg.Session.SecretKey = hex.EncodeToString(key)
		logger.Warn("no secret key configured; using an ephemeral key, session tokens will not survive restarts")
	}

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	store := session.New(ctx, session.Config{
		RedisHost:     cfg.Redis.Host,
		RedisPort:     cfg.Redis.Port,
		RedisDB:       cfg.Redis.DB,
		RedisPassword: cfg.Redis.Password,
	}, logger)

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return err
	}

	logger.Info("starting trainer server",
		"addr", cfg.Addr(),
		"rules", cfg.Game.RulesPreset,
		"bankroll", cfg.Game.InitialBankroll)

	return srv.Run(ctx)
}
