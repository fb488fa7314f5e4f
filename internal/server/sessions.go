package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/session"
)

// GameSession binds one session id to its engine and performance record.
// Every mutation — REST or websocket — locks the session, drives the
// engine, then writes through to the store before acknowledging, so two
// concurrent actions on the same session always serialize.
type GameSession struct {
	ID string

	mu     sync.Mutex
	engine *game.Engine
	perf   *session.Performance

	createdAt int64

	// per-round accumulation folded from the event stream
	roundWins       int
	roundLosses     int
	roundPushes     int
	roundBlackjacks int
	roundWagered    decimal.Decimal
	baseBet         decimal.Decimal
}

// Do runs fn with the session locked. All engine access goes through here.
func (gs *GameSession) Do(fn func(engine *game.Engine)) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	fn(gs.engine)
}

// Performance returns the live performance record. Callers must hold the
// session via Do when racing mutations matter.
func (gs *GameSession) Performance() *session.Performance {
	return gs.perf
}

// observe folds engine events into the session's performance record. It
// only reads event payloads, never the engine, so it is safe to run during
// dispatch.
func (gs *GameSession) observe(clock quartz.Clock) game.Handler {
	return func(event game.Event) {
		switch event.Type {
		case game.EventBetPlaced:
			amount, _ := event.Data["amount"].(decimal.Decimal)
			gs.baseBet = amount
			gs.roundWagered = amount
			gs.roundWins, gs.roundLosses, gs.roundPushes, gs.roundBlackjacks = 0, 0, 0, 0
		case game.EventPlayerDouble, game.EventPlayerSplit:
			// Both stake one further unit of the opening bet.
			gs.roundWagered = gs.roundWagered.Add(gs.baseBet)
		case game.EventInsuranceTaken:
			amount, _ := event.Data["amount"].(decimal.Decimal)
			gs.roundWagered = gs.roundWagered.Add(amount)
		case game.EventPlayerBlackjack:
			gs.roundBlackjacks++
		case game.EventPlayerWins:
			gs.roundWins++
		case game.EventPlayerLoses:
			gs.roundLosses++
		case game.EventPush:
			gs.roundPushes++
		case game.EventRoundEnded:
			net, _ := event.Data["result"].(decimal.Decimal)
			bankroll, _ := event.Data["bankroll"].(decimal.Decimal)
			gs.perf.RecordRound(net, gs.roundWagered,
				gs.roundWins, gs.roundLosses, gs.roundPushes, gs.roundBlackjacks)
			gs.perf.AppendHistory(clock.Now(), bankroll, string(event.Type))
		}
	}
}

// Sessions is the session service: an advisory in-memory cache over the
// store. The cache is never authoritative — cold paths re-read the store
// and rebuild engines from their saved snapshots.
type Sessions struct {
	mu    sync.Mutex
	cache map[string]*GameSession

	store  session.Store
	rules  blackjack.RuleSet
	chips  decimal.Decimal
	ttl    int
	clock  quartz.Clock
	logger *log.Logger
}

// SessionsConfig parameterises the session service
type SessionsConfig struct {
	Store           session.Store
	Rules           blackjack.RuleSet
	InitialBankroll int64
	TTLSeconds      int
	Clock           quartz.Clock
	Logger          *log.Logger
}

// NewSessions creates the session service
func NewSessions(cfg SessionsConfig) *Sessions {
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Sessions{
		cache:  make(map[string]*GameSession),
		store:  cfg.Store,
		rules:  cfg.Rules,
		chips:  decimal.NewFromInt(cfg.InitialBankroll),
		ttl:    cfg.TTLSeconds,
		clock:  clock,
		logger: cfg.Logger.WithPrefix("session"),
	}
}

// GetOrCreate returns the session for id, restoring it from the store when
// the cache is cold and building a fresh engine when the store has nothing.
// Unknown ids cold-start rather than erroring.
func (s *Sessions) GetOrCreate(ctx context.Context, id string) (*GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gs, ok := s.cache[id]; ok {
		return gs, nil
	}

	gs, err := s.load(ctx, id)
	if errors.Is(err, session.ErrNotFound) {
		gs, err = s.create(id)
	}
	if err != nil {
		return nil, err
	}

	s.cache[id] = gs
	return gs, nil
}

// Reset discards the session's engine and starts a fresh game with the
// same id, retaining its performance record.
func (s *Sessions) Reset(ctx context.Context, id string) (*GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, err := game.NewEngine(s.rules, s.chips)
	if err != nil {
		return nil, fmt.Errorf("server: reset session %s: %w", id, err)
	}

	gs, ok := s.cache[id]
	if !ok {
		gs = &GameSession{ID: id, perf: session.NewPerformance(), createdAt: s.clock.Now().Unix()}
		s.cache[id] = gs
	}

	gs.mu.Lock()
	gs.engine = engine
	gs.mu.Unlock()
	engine.Events().SubscribeAll(gs.observe(s.clock))

	if err := s.Save(ctx, gs); err != nil {
		return nil, err
	}
	return gs, nil
}

func (s *Sessions) create(id string) (*GameSession, error) {
	engine, err := game.NewEngine(s.rules, s.chips)
	if err != nil {
		return nil, fmt.Errorf("server: create session %s: %w", id, err)
	}

	gs := &GameSession{
		ID:        id,
		engine:    engine,
		perf:      session.NewPerformance(),
		createdAt: s.clock.Now().Unix(),
	}
	engine.Events().SubscribeAll(gs.observe(s.clock))

	s.logger.Info("session created", "session_id", id)
	return gs, nil
}

func (s *Sessions) load(ctx context.Context, id string) (*GameSession, error) {
	rec, err := session.LoadRecord(ctx, s.store, id)
	if err != nil {
		return nil, err
	}

	var engine *game.Engine
	if rec.Game != nil {
		engine, err = game.RestoreGame(rec.Game)
		if err != nil {
			return nil, fmt.Errorf("server: restore session %s: %w", id, err)
		}
	} else {
		engine, err = game.NewEngine(s.rules, s.chips)
		if err != nil {
			return nil, fmt.Errorf("server: restore session %s: %w", id, err)
		}
	}

	perf := rec.Performance
	if perf == nil {
		perf = session.NewPerformance()
	}

	gs := &GameSession{
		ID:        id,
		engine:    engine,
		perf:      perf,
		createdAt: rec.CreatedAt,
	}
	engine.Events().SubscribeAll(gs.observe(s.clock))

	s.logger.Debug("session restored from store", "session_id", id)
	return gs, nil
}

// Save writes the session through to the store. Every mutating request
// calls this before acknowledging the client.
func (s *Sessions) Save(ctx context.Context, gs *GameSession) error {
	gs.mu.Lock()
	rec := &session.Record{
		Game:         gs.engine.Snapshot(),
		Performance:  gs.perf,
		CreatedAt:    gs.createdAt,
		LastActivity: s.clock.Now().Unix(),
	}
	gs.mu.Unlock()

	ttl := session.DefaultTTL
	if s.ttl > 0 {
		ttl = time.Duration(s.ttl) * time.Second
	}
	if err := session.SaveRecord(ctx, s.store, gs.ID, rec, ttl); err != nil {
		return fmt.Errorf("server: save session %s: %w", gs.ID, err)
	}
	return nil
}
