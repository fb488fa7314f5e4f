package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/blackjack"
	"github.com/lox/blackjacktrainer/internal/game"
	"github.com/lox/blackjacktrainer/internal/statistics"
)

type houseEdgeRequest struct {
	NumDecks         int     `json:"num_decks"`
	DealerHitsSoft17 bool    `json:"dealer_hits_soft_17"`
	BlackjackPayout  float64 `json:"blackjack_payout"`
	DoubleAfterSplit bool    `json:"double_after_split"`
	Surrender        string  `json:"surrender"`
}

type houseEdgeResponse struct {
	HouseEdgePercent    float64            `json:"house_edge_percent"`
	PlayerAdvantageAtTC map[string]float64 `json:"player_advantage_at_tc"`
}

func (s *Server) handleHouseEdge(w http.ResponseWriter, r *http.Request) {
	var req houseEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rules := s.rules
	if req.NumDecks > 0 {
		rules.NumDecks = req.NumDecks
	}
	rules.DealerHitsSoft17 = req.DealerHitsSoft17
	rules.DoubleAfterSplit = req.DoubleAfterSplit
	if req.BlackjackPayout > 0 {
		rules.BlackjackPayout = decimal.NewFromFloat(req.BlackjackPayout)
	}
	if req.Surrender != "" {
		rules.Surrender = surrenderRule(req.Surrender)
	}

	edge := statistics.HouseEdge(rules)

	advantages := make(map[string]float64, 16)
	for tc := -5; tc <= 10; tc++ {
		advantages[fmt.Sprintf("%d", tc)] = statistics.PlayerAdvantage(float64(tc), edge)
	}

	writeJSON(w, http.StatusOK, houseEdgeResponse{
		HouseEdgePercent:    edge,
		PlayerAdvantageAtTC: advantages,
	})
}

func surrenderRule(name string) blackjack.SurrenderRule {
	switch name {
	case "early":
		return blackjack.SurrenderEarly
	case "late":
		return blackjack.SurrenderLate
	default:
		return blackjack.SurrenderNone
	}
}

type kellyBetRequest struct {
	Bankroll          float64 `json:"bankroll"`
	PlayerEdgePercent float64 `json:"player_edge_percent"`
	KellyFraction     float64 `json:"kelly_fraction"`
}

type kellyBetResponse struct {
	OptimalBet             float64 `json:"optimal_bet"`
	BetAsPercentOfBankroll float64 `json:"bet_as_percent_of_bankroll"`
}

func (s *Server) handleKellyBet(w http.ResponseWriter, r *http.Request) {
	var req kellyBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Bankroll <= 0 {
		writeError(w, http.StatusBadRequest, "bankroll must be positive")
		return
	}
	fraction := req.KellyFraction
	if fraction <= 0 || fraction > 1 {
		fraction = 0.5
	}

	bankroll := decimal.NewFromFloat(req.Bankroll)
	kelly := statistics.NewKelly(bankroll,
		decimal.NewFromInt(s.rules.MinBet), decimal.NewFromInt(s.rules.MaxBet), fraction)

	edge := decimal.NewFromFloat(req.PlayerEdgePercent).Div(decimal.NewFromInt(100))
	bet := kelly.OptimalBet(edge)

	percent, _ := bet.Div(bankroll).Mul(decimal.NewFromInt(100)).Float64()
	betValue, _ := bet.Float64()

	writeJSON(w, http.StatusOK, kellyBetResponse{
		OptimalBet:             betValue,
		BetAsPercentOfBankroll: percent,
	})
}

type sessionStatsResponse struct {
	HandsPlayed      int      `json:"hands_played"`
	Wins             int      `json:"wins"`
	Losses           int      `json:"losses"`
	Pushes           int      `json:"pushes"`
	Blackjacks       int      `json:"blackjacks"`
	WinRate          float64  `json:"win_rate"`
	TotalWagered     string   `json:"total_wagered"`
	NetResult        string   `json:"net_result"`
	CountingAccuracy *float64 `json:"counting_accuracy"`
	StrategyAccuracy *float64 `json:"strategy_accuracy"`
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	gs, ok := s.session(w, r)
	if !ok {
		return
	}

	var resp sessionStatsResponse
	gs.Do(func(*game.Engine) {
		perf := gs.Performance()
		resp = sessionStatsResponse{
			HandsPlayed:  perf.HandsPlayed,
			Wins:         perf.Wins,
			Losses:       perf.Losses,
			Pushes:       perf.Pushes,
			Blackjacks:   perf.Blackjacks,
			WinRate:      perf.WinRate(),
			TotalWagered: perf.TotalWagered,
			NetResult:    perf.NetResult,
		}
		if acc := perf.CountingAccuracy(); acc >= 0 {
			resp.CountingAccuracy = &acc
		}
		if acc := perf.StrategyAccuracy(); acc >= 0 {
			resp.StrategyAccuracy = &acc
		}
	})

	writeJSON(w, http.StatusOK, resp)
}
