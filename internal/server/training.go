package server

import (
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/counting"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/randutil"
	"github.com/lox/blackjacktrainer/internal/statistics"
	"github.com/lox/blackjacktrainer/internal/strategy"
)

// drillState holds each session's pending drill answer for verification
type drillState struct {
	mu       sync.Mutex
	counting map[string]countingDrill
}

type countingDrill struct {
	correctCount float64
	system       string
}

func newDrillState() *drillState {
	return &drillState{counting: make(map[string]countingDrill)}
}

func (d *drillState) setCounting(sessionID string, drill countingDrill) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counting[sessionID] = drill
}

func (d *drillState) takeCounting(sessionID string) (countingDrill, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	drill, ok := d.counting[sessionID]
	delete(d.counting, sessionID)
	return drill, ok
}

type countingDrillRequest struct {
	System   string `json:"system"`
	NumCards int    `json:"num_cards"`
}

type countingDrillResponse struct {
	Cards        []CardView `json:"cards"`
	CorrectCount float64    `json:"correct_count"`
	System       string     `json:"system"`
}

func (s *Server) handleCountingDrill(w http.ResponseWriter, r *http.Request) {
	var req countingDrillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.sessionID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	numCards := req.NumCards
	if numCards < 1 {
		numCards = 10
	}
	if numCards > 52 {
		numCards = 52
	}

	shoe, err := blackjack.NewShoe(1, 1.0, randutil.New(time.Now().UnixNano()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build deck")
		return
	}

	system := counting.ForName(req.System)
	cards := make([]CardView, 0, numCards)
	for i := 0; i < numCards; i++ {
		card := shoe.Draw()
		system.Count(card)
		cards = append(cards, cardView(card))
	}

	s.drills.setCounting(id, countingDrill{
		correctCount: system.RunningCount(),
		system:       system.Name(),
	})

	writeJSON(w, http.StatusOK, countingDrillResponse{
		Cards:        cards,
		CorrectCount: system.RunningCount(),
		System:       system.Name(),
	})
}

type countingVerifyRequest struct {
	UserCount float64 `json:"user_count"`
}

type countingVerifyResponse struct {
	Correct     bool    `json:"correct"`
	ActualCount float64 `json:"actual_count"`
	Difference  float64 `json:"difference"`
}

func (s *Server) handleCountingVerify(w http.ResponseWriter, r *http.Request) {
	var req countingVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.sessionID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	drill, ok := s.drills.takeCounting(id)
	if !ok {
		writeJSON(w, http.StatusOK, countingVerifyResponse{
			Correct:     false,
			ActualCount: 0,
			Difference:  req.UserCount,
		})
		return
	}

	diff := math.Abs(req.UserCount - drill.correctCount)
	correct := diff < 0.01

	// Fold the result into the session's performance record
	if gs, err := s.sessions.GetOrCreate(r.Context(), id); err == nil {
		gs.Do(func(*game.Engine) {
			perf := gs.Performance()
			perf.CountDrills++
			if correct {
				perf.CountDrillsCorrect++
			}
		})
		s.saveSession(r.Context(), gs)
	}

	writeJSON(w, http.StatusOK, countingVerifyResponse{
		Correct:     correct,
		ActualCount: drill.correctCount,
		Difference:  diff,
	})
}

type strategyDrillRequest struct {
	IncludeDeviations bool     `json:"include_deviations"`
	TrueCount         *float64 `json:"true_count,omitempty"`
}

type strategyDrillResponse struct {
	PlayerCards           []CardView `json:"player_cards"`
	PlayerValue           int        `json:"player_value"`
	IsSoft                bool       `json:"is_soft"`
	IsPair                bool       `json:"is_pair"`
	DealerUpcard          CardView   `json:"dealer_upcard"`
	CorrectAction         string     `json:"correct_action"`
	Deviation             string     `json:"deviation,omitempty"`
	DealerBustProbability float64    `json:"dealer_bust_probability"`
}

func (s *Server) handleStrategyDrill(w http.ResponseWriter, r *http.Request) {
	var req strategyDrillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shoe, err := blackjack.NewShoe(1, 1.0, randutil.New(time.Now().UnixNano()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build deck")
		return
	}

	hand := blackjack.NewHandWithCards(0, shoe.Draw(), shoe.Draw())
	upcard := shoe.Draw()

	basic := strategy.NewBasicStrategy(s.rules)
	sit := strategy.HandSituation(hand, upcard, true, s.rules.Surrender != blackjack.SurrenderNone, hand.IsPair())
	action := basic.Recommend(sit)

	var deviationDesc string
	if req.IncludeDeviations && req.TrueCount != nil {
		dev := strategy.FindDeviation(hand.Value(), hand.IsSoft(), hand.IsPair(),
			upcard.Value(), *req.TrueCount, s.rules.Surrender != blackjack.SurrenderNone)
		if dev != nil {
			action = dev.ActionAt(*req.TrueCount)
			deviationDesc = dev.Description
		}
	}

	cards := hand.Cards()
	writeJSON(w, http.StatusOK, strategyDrillResponse{
		PlayerCards:           []CardView{cardView(cards[0]), cardView(cards[1])},
		PlayerValue:           hand.Value(),
		IsSoft:                hand.IsSoft(),
		IsPair:                hand.IsPair(),
		DealerUpcard:          cardView(upcard),
		CorrectAction:         action.String(),
		Deviation:             deviationDesc,
		DealerBustProbability: statistics.DealerBustProbability(s.rules, upcard.Value()),
	})
}
