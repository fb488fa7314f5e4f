package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjacktrainer/internal/game"
)

// historyCap bounds the per-session bankroll history kept for charting
const historyCap = 500

// Record is the persisted layout for one session. Missing sub-keys are
// legal and imply defaults, so old records keep loading as fields grow.
type Record struct {
	Game         *game.SavedGame `json:"game,omitempty"`
	Performance  *Performance    `json:"performance,omitempty"`
	CreatedAt    int64           `json:"created_at"`
	LastActivity int64           `json:"last_activity"`
}

// HistoryEntry is one point in the bankroll chart
type HistoryEntry struct {
	TimestampMS int64  `json:"timestamp_ms"`
	Bankroll    string `json:"bankroll"`
	EventType   string `json:"event_type"`
}

// Performance accumulates a session's play and drill results
type Performance struct {
	HandsPlayed  int    `json:"hands_played"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Pushes       int    `json:"pushes"`
	Blackjacks   int    `json:"blackjacks"`
	TotalWagered string `json:"total_wagered"`
	NetResult    string `json:"net_result"`

	CountDrills           int `json:"count_drills"`
	CountDrillsCorrect    int `json:"count_drills_correct"`
	StrategyDrills        int `json:"strategy_drills"`
	StrategyDrillsCorrect int `json:"strategy_drills_correct"`

	History []HistoryEntry `json:"history,omitempty"`
}

// NewPerformance returns a zeroed performance record with decimal fields
// initialised so marshaled output is always well-formed.
func NewPerformance() *Performance {
	return &Performance{TotalWagered: "0", NetResult: "0"}
}

// WinRate returns wins as a fraction of hands played
func (p *Performance) WinRate() float64 {
	if p.HandsPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.HandsPlayed)
}

// CountingAccuracy returns the fraction of counting drills answered
// correctly, or -1 when no drills have been attempted.
func (p *Performance) CountingAccuracy() float64 {
	if p.CountDrills == 0 {
		return -1
	}
	return float64(p.CountDrillsCorrect) / float64(p.CountDrills)
}

// StrategyAccuracy returns the fraction of strategy drills answered
// correctly, or -1 when no drills have been attempted.
func (p *Performance) StrategyAccuracy() float64 {
	if p.StrategyDrills == 0 {
		return -1
	}
	return float64(p.StrategyDrillsCorrect) / float64(p.StrategyDrills)
}

// RecordRound folds one completed round into the performance counters.
// net is the round's net result; wagered is the total staked across hands.
func (p *Performance) RecordRound(net, wagered decimal.Decimal, wins, losses, pushes, blackjacks int) {
	p.HandsPlayed++
	p.Wins += wins
	p.Losses += losses
	p.Pushes += pushes
	p.Blackjacks += blackjacks

	total, err := decimal.NewFromString(p.TotalWagered)
	if err != nil {
		total = decimal.Zero
	}
	p.TotalWagered = total.Add(wagered).String()

	result, err := decimal.NewFromString(p.NetResult)
	if err != nil {
		result = decimal.Zero
	}
	p.NetResult = result.Add(net).String()
}

// AppendHistory records a bankroll point, evicting the oldest past the cap
func (p *Performance) AppendHistory(at time.Time, bankroll decimal.Decimal, eventType string) {
	p.History = append(p.History, HistoryEntry{
		TimestampMS: at.UnixMilli(),
		Bankroll:    bankroll.String(),
		EventType:   eventType,
	})
	if len(p.History) > historyCap {
		p.History = p.History[len(p.History)-historyCap:]
	}
}

// LoadRecord reads and unmarshals a session record. A missing key returns
// ErrNotFound unwrapped so callers can cold-start.
func LoadRecord(ctx context.Context, store Store, id string) (*Record, error) {
	data, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("session: unmarshal record %s: %w", id, err)
	}
	return &rec, nil
}

// SaveRecord marshals and writes a session record
func SaveRecord(ctx context.Context, store Store, id string, rec *Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: marshal record %s: %w", id, err)
	}
	return store.Set(ctx, id, data, ttl)
}
