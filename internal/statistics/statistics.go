// Package statistics aggregates round results for session summaries
// and simulator reports.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult represents the outcome of a single blackjack round
type RoundResult struct {
	Net          float64 // Net units won/lost across all hands and insurance
	Seed         int64   // RNG seed for this round (for replay)
	Hands        int     // Player hands played (grows with splits)
	Wins         int
	Losses       int
	Pushes       int
	Blackjacks   int
	Surrenders   int
	Doubled      bool    // At least one hand doubled down
	Split        bool    // The round involved at least one split
	InsuranceNet float64 // Insurance portion of Net, zero if not taken
}

// Statistics tracks comprehensive session statistics
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	// Outcome counts across all player hands
	Wins        int
	Losses      int
	Pushes      int
	Blackjacks  int
	Surrenders  int
	HandsPlayed int

	// Ledger buckets: main-bet results and insurance, tracked
	// separately so the accounting can be cross-checked
	MainNet      float64
	InsuranceNet float64
	AllNet       float64

	// Action analytics
	DoubledRounds int
	SplitRounds   int
	InsuredRounds int

	// Largest single-round swing observed
	MaxWin  float64
	MaxLoss float64
}

// Mean returns the arithmetic mean net result in units per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	se := s.StdError()
	margin := 1.96 * se // 95% confidence
	return mean - margin, mean + margin
}

// WinRate returns the fraction of player hands that won, blackjacks
// included
func (s *Statistics) WinRate() float64 {
	if s.HandsPlayed == 0 {
		return 0
	}
	return float64(s.Wins+s.Blackjacks) / float64(s.HandsPlayed)
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := result.Net
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)

	s.Wins += result.Wins
	s.Losses += result.Losses
	s.Pushes += result.Pushes
	s.Blackjacks += result.Blackjacks
	s.Surrenders += result.Surrenders
	s.HandsPlayed += result.Hands

	s.MainNet += net - result.InsuranceNet
	s.InsuranceNet += result.InsuranceNet
	s.AllNet += net // Total for sanity check

	if result.Doubled {
		s.DoubledRounds++
	}
	if result.Split {
		s.SplitRounds++
	}
	if result.InsuranceNet != 0 {
		s.InsuredRounds++
	}

	if net > s.MaxWin {
		s.MaxWin = net
	}
	if net < s.MaxLoss {
		s.MaxLoss = net
	}
}

// Merge folds another accumulator into this one. Workers aggregate
// into private Statistics and merge when done.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)

	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.Surrenders += other.Surrenders
	s.HandsPlayed += other.HandsPlayed

	s.MainNet += other.MainNet
	s.InsuranceNet += other.InsuranceNet
	s.AllNet += other.AllNet

	s.DoubledRounds += other.DoubledRounds
	s.SplitRounds += other.SplitRounds
	s.InsuredRounds += other.InsuredRounds

	if other.MaxWin > s.MaxWin {
		s.MaxWin = other.MaxWin
	}
	if other.MaxLoss < s.MaxLoss {
		s.MaxLoss = other.MaxLoss
	}
}

// Median returns the median value of all results
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

// Percentile returns the value at the given percentile (0.0 to 1.0)
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

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllNet-s.MainNet-s.InsuranceNet) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllNet=%.6f, MainNet=%.6f, InsuranceNet=%.6f",
			s.AllNet, s.MainNet, s.InsuranceNet)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if s.HandsPlayed < s.Rounds {
		return fmt.Errorf("hands played (%d) below rounds count (%d)", s.HandsPlayed, s.Rounds)
	}

	totalOutcomes := s.Wins + s.Losses + s.Pushes + s.Blackjacks + s.Surrenders
	if totalOutcomes != s.HandsPlayed {
		return fmt.Errorf("outcome total (%d) does not match hands played (%d)",
			totalOutcomes, s.HandsPlayed)
	}

	return nil
}
