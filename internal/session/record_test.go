package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
)

func TestRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(quartz.NewMock(t))

	perf := NewPerformance()
	perf.RecordRound(decimal.NewFromInt(150), decimal.NewFromInt(100), 1, 0, 0, 1)

	rec := &Record{
		Performance:  perf,
		CreatedAt:    1700000000,
		LastActivity: 1700000100,
	}

	if err := SaveRecord(ctx, store, "sid", rec, time.Hour); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	loaded, err := LoadRecord(ctx, store, "sid")
	if err != nil {
		t.Fatalf("LoadRecord failed: %v", err)
	}

	if loaded.CreatedAt != rec.CreatedAt || loaded.LastActivity != rec.LastActivity {
		t.Errorf("timestamps mismatch: %+v", loaded)
	}
	if loaded.Performance == nil {
		t.Fatal("performance missing after round trip")
	}
	if loaded.Performance.HandsPlayed != 1 || loaded.Performance.Blackjacks != 1 {
		t.Errorf("performance counters mismatch: %+v", loaded.Performance)
	}
	if loaded.Performance.NetResult != "150" {
		t.Errorf("net result = %s, want 150", loaded.Performance.NetResult)
	}
	if loaded.Performance.TotalWagered != "100" {
		t.Errorf("total wagered = %s, want 100", loaded.Performance.TotalWagered)
	}
	if loaded.Game != nil {
		t.Error("expected nil game snapshot")
	}
}

func TestLoadRecordMissing(t *testing.T) {
	store := NewMemoryStore(quartz.NewMock(t))

	if _, err := LoadRecord(context.Background(), store, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordMissingSubKeysImplyDefaults(t *testing.T) {
	// An old record with only timestamps still unmarshals.
	var rec Record
	if err := json.Unmarshal([]byte(`{"created_at":123,"last_activity":456}`), &rec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if rec.Game != nil || rec.Performance != nil {
		t.Errorf("missing sub-keys should stay nil: %+v", rec)
	}
	if rec.CreatedAt != 123 || rec.LastActivity != 456 {
		t.Errorf("timestamps mismatch: %+v", rec)
	}
}

func TestPerformanceAccuracies(t *testing.T) {
	perf := NewPerformance()

	if acc := perf.CountingAccuracy(); acc != -1 {
		t.Errorf("CountingAccuracy with no drills = %v, want -1", acc)
	}
	if acc := perf.StrategyAccuracy(); acc != -1 {
		t.Errorf("StrategyAccuracy with no drills = %v, want -1", acc)
	}

	perf.CountDrills = 4
	perf.CountDrillsCorrect = 3
	if acc := perf.CountingAccuracy(); acc != 0.75 {
		t.Errorf("CountingAccuracy = %v, want 0.75", acc)
	}

	perf.StrategyDrills = 2
	perf.StrategyDrillsCorrect = 2
	if acc := perf.StrategyAccuracy(); acc != 1.0 {
		t.Errorf("StrategyAccuracy = %v, want 1.0", acc)
	}
}

func TestPerformanceHistoryBounded(t *testing.T) {
	perf := NewPerformance()
	base := time.Unix(1700000000, 0)

	for i := 0; i < historyCap+25; i++ {
		perf.AppendHistory(base.Add(time.Duration(i)*time.Second), decimal.NewFromInt(int64(1000+i)), "ROUND_ENDED")
	}

	if len(perf.History) != historyCap {
		t.Fatalf("history length = %d, want %d", len(perf.History), historyCap)
	}

	// Oldest entries were evicted; the last entry is the newest.
	last := perf.History[len(perf.History)-1]
	if last.Bankroll != "1524" {
		t.Errorf("newest history entry bankroll = %s, want 1524", last.Bankroll)
	}
}
