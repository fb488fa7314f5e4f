package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/auth"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/session"
	"github.com/lox/blackjacktrainer/internal/sessionid"
)

// Server is the HTTP and websocket front end over the game engine
type Server struct {
	config   *Config
	rules    blackjack.RuleSet
	sessions *Sessions
	manager  *Manager
	signer   *auth.Signer
	store    session.Store
	upgrader websocket.Upgrader
	clock    quartz.Clock
	logger   *log.Logger

	drills *drillState
}

// New creates a server from its configuration and a session store
func New(cfg *Config, store session.Store, logger *log.Logger) (*Server, error) {
	rules, err := blackjack.PresetRules(cfg.Game.RulesPreset)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	clock := quartz.NewReal()
	serverLogger := logger.WithPrefix("server")

	return &Server{
		config: cfg,
		rules:  rules,
		sessions: NewSessions(SessionsConfig{
			Store:           store,
			Rules:           rules,
			InitialBankroll: cfg.Game.InitialBankroll,
			TTLSeconds:      cfg.Session.TTLSeconds,
			Clock:           clock,
			Logger:          logger,
		}),
		manager: NewManager(logger),
		signer:  auth.NewSigner([]byte(cfg.Session.SecretKey)),
		store:   store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clock:  clock,
		logger: serverLogger,
		drills: newDrillState(),
	}, nil
}

// Handler builds the full route table wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /game/new", s.handleNewGame)
	mux.HandleFunc("GET /game/state", s.handleGetState)
	mux.HandleFunc("POST /game/bet", s.handleBet)
	mux.HandleFunc("POST /game/action", s.handleAction)

	mux.HandleFunc("POST /training/counting/drill", s.handleCountingDrill)
	mux.HandleFunc("POST /training/counting/verify", s.handleCountingVerify)
	mux.HandleFunc("POST /training/strategy/drill", s.handleStrategyDrill)

	mux.HandleFunc("POST /stats/house-edge", s.handleHouseEdge)
	mux.HandleFunc("POST /stats/kelly-bet", s.handleKellyBet)
	mux.HandleFunc("GET /stats/session", s.handleSessionStats)

	mux.HandleFunc("GET /ws/{session_id}", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)

	var handler http.Handler = mux
	if s.config.RateLimit.Enabled {
		limiter := newRateLimiter(s.config.RateLimit.RequestsPerMinute, s.clock)
		handler = limiter.middleware(handler)
	}
	handler = corsMiddleware(s.config.CORS.Origins, handler)
	handler = recoverMiddleware(s.logger, handler)
	return handler
}

// Run serves until the context is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.config.Addr(),
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sessionID resolves the client's session identity from the X-Session-ID
// header. The header may carry a raw id or a signed token; unknown raw ids
// cold-start, but tampered or expired tokens are rejected.
func (s *Server) sessionID(r *http.Request) (string, error) {
	value := strings.TrimSpace(r.Header.Get("X-Session-ID"))
	if value == "" {
		return sessionid.New(), nil
	}
	if strings.Contains(value, ".") {
		id, err := s.signer.Unsign(value, s.config.SessionTTL())
		if err != nil {
			return "", err
		}
		return id, nil
	}
	return value, nil
}

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// rejectionReason digs the engine's most recent rejection event out of the
// emitter history so the transport can return a human-readable reason.
func rejectionReason(engine *game.Engine) string {
	history := engine.Events().History()
	for i := len(history) - 1; i >= 0; i-- {
		switch history[i].Type {
		case game.EventInvalidAction:
			if msg, ok := history[i].Data["message"].(string); ok {
				return msg
			}
			return "invalid action"
		case game.EventInsufficientFunds:
			return fmt.Sprintf("insufficient funds: required %v, available %v",
				history[i].Data["required"], history[i].Data["available"])
		}
	}
	return "action rejected"
}

type newGameResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	gs, err := s.sessions.Reset(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to create session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	s.manager.Rebind(gs)

	writeJSON(w, http.StatusOK, newGameResponse{
		SessionID: gs.ID,
		Token:     s.signer.Sign(gs.ID),
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	gs, ok := s.session(w, r)
	if !ok {
		return
	}

	var snap *Snapshot
	gs.Do(func(engine *game.Engine) {
		snap = SnapshotOf(engine)
	})
	writeJSON(w, http.StatusOK, snap)
}

type betRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gs, ok := s.session(w, r)
	if !ok {
		return
	}

	var accepted bool
	var snap *Snapshot
	var reason string
	gs.Do(func(engine *game.Engine) {
		accepted = engine.Bet(req.Amount)
		if !accepted {
			reason = rejectionReason(engine)
		}
		snap = SnapshotOf(engine)
	})

	if !accepted {
		writeError(w, http.StatusBadRequest, reason)
		return
	}

	s.saveSession(r.Context(), gs)
	writeJSON(w, http.StatusOK, snap)
}

type actionRequest struct {
	Action string `json:"action"`
	Amount int64  `json:"amount,omitempty"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	gs, ok := s.session(w, r)
	if !ok {
		return
	}

	var accepted, known bool
	var snap *Snapshot
	var reason string
	gs.Do(func(engine *game.Engine) {
		accepted, known = applyAction(engine, req.Action, req.Amount)
		if known && !accepted {
			reason = rejectionReason(engine)
		}
		snap = SnapshotOf(engine)
	})

	if !known {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action: %s", req.Action))
		return
	}
	if !accepted {
		writeError(w, http.StatusBadRequest, reason)
		return
	}

	s.saveSession(r.Context(), gs)
	writeJSON(w, http.StatusOK, snap)
}

// applyAction dispatches a named action to the engine. The second return
// is false for an unrecognised action name.
func applyAction(engine *game.Engine, action string, amount int64) (accepted, known bool) {
	switch action {
	case "hit":
		return engine.Hit(), true
	case "stand":
		return engine.Stand(), true
	case "double":
		return engine.DoubleDown(), true
	case "split":
		return engine.Split(), true
	case "surrender":
		return engine.Surrender(), true
	case "insurance":
		if amount > 0 {
			return engine.TakeInsurance(amount), true
		}
		return engine.TakeMaxInsurance(), true
	case "decline_insurance":
		return engine.DeclineInsurance(), true
	default:
		return false, false
	}
}

// session resolves the request's session, cold-starting unknown ids.
// Writes the error response itself when resolution fails.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*GameSession, bool) {
	id, err := s.sessionID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return nil, false
	}

	gs, err := s.sessions.GetOrCreate(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	s.manager.Bind(gs)
	return gs, true
}

// saveSession writes through to the store; a failed write is logged but
// does not fail the request, since the in-memory engine remains correct.
func (s *Server) saveSession(ctx context.Context, gs *GameSession) {
	if err := s.sessions.Save(ctx, gs); err != nil {
		s.logger.Error("session write-through failed", "session_id", gs.ID, "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.manager.ActiveConnections(),
	})
}

// handleWebSocket upgrades the push transport for /ws/{session_id}
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session_id")
	if err := sessionid.Validate(id); err != nil {
		// Accept signed tokens in the path as well
		unsigned, unsignErr := s.signer.Unsign(id, s.config.SessionTTL())
		if unsignErr != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		id = unsigned
	}

	gs, err := s.sessions.GetOrCreate(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	s.manager.Bind(gs)

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	var conn *Connection
	conn = NewConnection(wsConn, id, s.logger, func(msg *ClientMessage) {
		s.handleClientMessage(gs, conn, msg)
	})

	s.manager.Attach(gs, conn)
	conn.Start()

	// Initial state push
	var snap *Snapshot
	gs.Do(func(engine *game.Engine) {
		snap = SnapshotOf(engine)
	})
	_ = conn.Send(stateUpdateMessage(snap))

	go func() {
		<-conn.Done()
		s.manager.Detach(id, conn)
		s.logger.Debug("push connection closed", "session_id", id)
	}()
}

// handleClientMessage runs on the connection's read pump goroutine
func (s *Server) handleClientMessage(gs *GameSession, conn *Connection, msg *ClientMessage) {
	switch msg.Type {
	case ClientMessageGetState:
		var snap *Snapshot
		gs.Do(func(engine *game.Engine) {
			snap = SnapshotOf(engine)
		})
		_ = conn.Send(stateUpdateMessage(snap))

	case ClientMessageBet:
		var accepted bool
		var reason string
		gs.Do(func(engine *game.Engine) {
			accepted = engine.Bet(msg.Amount)
			if !accepted {
				reason = rejectionReason(engine)
			}
		})
		if !accepted {
			_ = conn.Send(errorMessage(reason))
			return
		}
		s.saveSession(context.Background(), gs)

	case ClientMessageAction:
		var accepted, known bool
		var reason string
		gs.Do(func(engine *game.Engine) {
			accepted, known = applyAction(engine, msg.Action, msg.Amount)
			if known && !accepted {
				reason = rejectionReason(engine)
			}
		})
		if !known {
			_ = conn.Send(errorMessage(fmt.Sprintf("unknown action: %s", msg.Action)))
			return
		}
		if !accepted {
			_ = conn.Send(errorMessage(reason))
			return
		}
		s.saveSession(context.Background(), gs)

	case ClientMessageNewRound:
		gs.Do(func(engine *game.Engine) {
			engine.NewRound()
		})
		var snap *Snapshot
		gs.Do(func(engine *game.Engine) {
			snap = SnapshotOf(engine)
		})
		_ = conn.Send(stateUpdateMessage(snap))
		s.saveSession(context.Background(), gs)

	case ClientMessageResetGame:
		fresh, err := s.sessions.Reset(context.Background(), gs.ID)
		if err != nil {
			_ = conn.Send(errorMessage("failed to reset game"))
			return
		}
		s.manager.Rebind(fresh)
		var snap *Snapshot
		fresh.Do(func(engine *game.Engine) {
			snap = SnapshotOf(engine)
		})
		_ = conn.Send(stateUpdateMessage(snap))

	default:
		_ = conn.Send(errorMessage(fmt.Sprintf("unknown message type: %s", msg.Type)))
	}
}
