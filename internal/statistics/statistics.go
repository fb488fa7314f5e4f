// Package statistics provides the trainer's analytical toolbox: a
// streaming accumulator for simulation results, rule-based house edge
// estimates, Kelly bet sizing, risk-of-ruin math and dealer outcome
// probabilities.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult represents the outcome of a single blackjack round.
type RoundResult struct {
	Net     float64 // net units won or lost across all hands in the round
	Wagered float64 // total units put at risk, including doubles and splits
	Seed    int64   // RNG seed for this round (for replay)

	Hands     int // hands resolved, more than one after splits
	Blackjack bool
	Doubled   bool
	Split     bool
}

// Statistics tracks comprehensive simulation statistics.
type Statistics struct {
	Rounds  int
	Sum     float64
	SumSq   float64 // sum of squares for variance calculation
	Wagered float64
	Values  []float64 // all results, for median/percentile calculation

	// Outcome tallies classified by net result
	Wins   int
	Losses int
	Pushes int

	Blackjacks int

	// Rounds where the bet grew (double or split) vs flat rounds;
	// together they account for every unit in Sum
	ActionRounds int
	ActionNet    float64
	FlatNet      float64

	MaxWin  float64
	MaxLoss float64
}

// Add incorporates a new round result into the statistics.
func (s *Statistics) Add(result RoundResult) {
	net := result.Net
	s.Rounds++
	s.Sum += net
	s.SumSq += net * net
	s.Wagered += result.Wagered
	s.Values = append(s.Values, net)

	switch {
	case net > 0:
		s.Wins++
	case net < 0:
		s.Losses++
	default:
		s.Pushes++
	}

	if result.Blackjack {
		s.Blackjacks++
	}

	if result.Doubled || result.Split {
		s.ActionRounds++
		s.ActionNet += net
	} else {
		s.FlatNet += net
	}

	if net > s.MaxWin {
		s.MaxWin = net
	}
	if net < s.MaxLoss {
		s.MaxLoss = net
	}
}

// Mean returns the arithmetic mean result in units per round.
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.Sum / float64(s.Rounds)
}

// Variance returns the sample variance of all results.
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSq - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// WinRate returns the fraction of rounds won.
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// EdgePercent returns the measured player edge as a percentage of the
// total amount wagered. Negative values favor the house.
func (s *Statistics) EdgePercent() float64 {
	if s.Wagered == 0 {
		return 0
	}
	return s.Sum / s.Wagered * 100
}

// Median returns the median value of all results.
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0).
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that the action/flat buckets account for
// every unit in the total.
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.Sum-s.ActionNet-s.FlatNet) <= 1e-6
}

// Validate performs comprehensive validation of statistics data.
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: Sum=%.6f, ActionNet=%.6f, FlatNet=%.6f",
			s.Sum, s.ActionNet, s.FlatNet)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if total := s.Wins + s.Losses + s.Pushes; total != s.Rounds {
		return fmt.Errorf("outcome tallies (%d) do not match rounds count (%d)", total, s.Rounds)
	}

	if s.Blackjacks > s.Rounds {
		return fmt.Errorf("blackjack count (%d) exceeds rounds count (%d)", s.Blackjacks, s.Rounds)
	}

	return nil
}

// Merge folds other into s. Used to combine per-worker statistics
// after a parallel simulation.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.Sum += other.Sum
	s.SumSq += other.SumSq
	s.Wagered += other.Wagered
	s.Values = append(s.Values, other.Values...)

	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks

	s.ActionRounds += other.ActionRounds
	s.ActionNet += other.ActionNet
	s.FlatNet += other.FlatNet

	if other.MaxWin > s.MaxWin {
		s.MaxWin = other.MaxWin
	}
	if other.MaxLoss < s.MaxLoss {
		s.MaxLoss = other.MaxLoss
	}
}
