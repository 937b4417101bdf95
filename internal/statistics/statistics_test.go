package statistics

import (
	"math"
	"strings"
	"testing"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", stats.Variance())
	}
	if stats.StdDev() != 0 {
		t.Errorf("Expected stddev of 0 for empty stats, got %f", stats.StdDev())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.Percentile(0.5) != 0 {
		t.Errorf("Expected percentile of 0 for empty stats, got %f", stats.Percentile(0.5))
	}
	if stats.WinRate() != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", stats.WinRate())
	}
}

func TestStatistics_SingleValue(t *testing.T) {
	stats := &Statistics{}
	result := RoundResult{
		Net:   15.0,
		Seed:  12345,
		Hands: 1,
		Blackjacks: 1,
	}

	stats.Add(result)

	if stats.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", stats.Rounds)
	}
	if stats.Mean() != 15.0 {
		t.Errorf("Expected mean of 15.0, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for single value, got %f", stats.Variance())
	}
	if stats.Median() != 15.0 {
		t.Errorf("Expected median of 15.0, got %f", stats.Median())
	}
	if stats.Blackjacks != 1 {
		t.Errorf("Expected 1 blackjack, got %d", stats.Blackjacks)
	}
	if stats.WinRate() != 1.0 {
		t.Errorf("Expected win rate of 1.0, got %f", stats.WinRate())
	}
	if !stats.IsLedgerBalanced() {
		t.Error("Expected ledger to be balanced")
	}
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := &Statistics{}

	results := []RoundResult{
		{Net: 10.0, Hands: 1, Wins: 1},
		{Net: -20.0, Hands: 2, Losses: 2, Split: true},
		{Net: 15.0, Hands: 1, Blackjacks: 1},
		{Net: 0.0, Hands: 1, Pushes: 1},
		{Net: -5.0, Hands: 1, Surrenders: 1},
	}

	for _, result := range results {
		stats.Add(result)
	}

	expectedMean := (10.0 - 20.0 + 15.0 + 0.0 - 5.0) / 5.0
	if math.Abs(stats.Mean()-expectedMean) > 1e-9 {
		t.Errorf("Expected mean of %f, got %f", expectedMean, stats.Mean())
	}

	if stats.Rounds != 5 {
		t.Errorf("Expected 5 rounds, got %d", stats.Rounds)
	}
	if stats.HandsPlayed != 6 {
		t.Errorf("Expected 6 hands played, got %d", stats.HandsPlayed)
	}

	// Sorted values: -20, -5, 0, 10, 15
	if stats.Median() != 0.0 {
		t.Errorf("Expected median of 0.0, got %f", stats.Median())
	}

	if stats.SplitRounds != 1 {
		t.Errorf("Expected 1 split round, got %d", stats.SplitRounds)
	}
	expectedWinRate := 2.0 / 6.0 // one win, one blackjack, six hands
	if math.Abs(stats.WinRate()-expectedWinRate) > 1e-9 {
		t.Errorf("Expected win rate of %f, got %f", expectedWinRate, stats.WinRate())
	}

	if stats.MaxWin != 15.0 {
		t.Errorf("Expected max win of 15.0, got %f", stats.MaxWin)
	}
	if stats.MaxLoss != -20.0 {
		t.Errorf("Expected max loss of -20.0, got %f", stats.MaxLoss)
	}

	if !stats.IsLedgerBalanced() {
		t.Error("Expected ledger to be balanced")
	}
}

func TestStatistics_InsuranceLedger(t *testing.T) {
	stats := &Statistics{}

	// Dealer blackjack with insurance: hand loses 10, insurance wins 10
	stats.Add(RoundResult{Net: 0.0, Hands: 1, Losses: 1, InsuranceNet: 10.0})
	// No blackjack: hand wins 10, insurance forfeits 5
	stats.Add(RoundResult{Net: 5.0, Hands: 1, Wins: 1, InsuranceNet: -5.0})

	if math.Abs(stats.InsuranceNet-5.0) > 1e-9 {
		t.Errorf("Expected insurance net of 5.0, got %f", stats.InsuranceNet)
	}
	if math.Abs(stats.MainNet-0.0) > 1e-9 {
		t.Errorf("Expected main net of 0.0, got %f", stats.MainNet)
	}
	if stats.InsuredRounds != 2 {
		t.Errorf("Expected 2 insured rounds, got %d", stats.InsuredRounds)
	}
	if !stats.IsLedgerBalanced() {
		t.Error("Expected ledger to be balanced")
	}
}

func TestStatistics_Merge(t *testing.T) {
	a := &Statistics{}
	a.Add(RoundResult{Net: 10.0, Hands: 1, Wins: 1})
	a.Add(RoundResult{Net: -10.0, Hands: 1, Losses: 1})

	b := &Statistics{}
	b.Add(RoundResult{Net: 15.0, Hands: 1, Blackjacks: 1, Doubled: true})
	b.Add(RoundResult{Net: -30.0, Hands: 2, Losses: 2, Split: true})

	a.Merge(b)

	if a.Rounds != 4 {
		t.Errorf("Expected 4 rounds after merge, got %d", a.Rounds)
	}
	if a.HandsPlayed != 5 {
		t.Errorf("Expected 5 hands played, got %d", a.HandsPlayed)
	}
	if len(a.Values) != 4 {
		t.Errorf("Expected 4 values, got %d", len(a.Values))
	}
	if math.Abs(a.SumNet-(-15.0)) > 1e-9 {
		t.Errorf("Expected sum net of -15.0, got %f", a.SumNet)
	}
	if a.MaxWin != 15.0 {
		t.Errorf("Expected max win of 15.0, got %f", a.MaxWin)
	}
	if a.MaxLoss != -30.0 {
		t.Errorf("Expected max loss of -30.0, got %f", a.MaxLoss)
	}
	if a.DoubledRounds != 1 || a.SplitRounds != 1 {
		t.Errorf("Action counts not merged: %d doubled, %d split", a.DoubledRounds, a.SplitRounds)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Merged stats should validate: %v", err)
	}
	if !a.IsLedgerBalanced() {
		t.Error("Expected merged ledger to be balanced")
	}
}

func TestStatistics_Percentiles(t *testing.T) {
	stats := &Statistics{}

	// Add values: 1, 2, 3, 4, 5
	for i := 1; i <= 5; i++ {
		stats.Add(RoundResult{Net: float64(i), Hands: 1, Wins: 1})
	}

	tests := []struct {
		percentile float64
		expected   float64
	}{
		{0.0, 1.0},
		{0.25, 2.0},
		{0.5, 3.0},
		{0.75, 4.0},
		{1.0, 5.0},
	}

	for _, test := range tests {
		result := stats.Percentile(test.percentile)
		if math.Abs(result-test.expected) > 1e-9 {
			t.Errorf("Percentile %.2f: expected %f, got %f", test.percentile, test.expected, result)
		}
	}
}

func TestStatistics_ConfidenceInterval(t *testing.T) {
	stats := &Statistics{}

	values := []float64{1, 2, 3, 4, 5}
	for _, v := range values {
		stats.Add(RoundResult{Net: v, Hands: 1, Wins: 1})
	}

	low, high := stats.ConfidenceInterval95()
	mean := stats.Mean()

	if math.Abs((low+high)/2-mean) > 1e-9 {
		t.Errorf("Confidence interval not symmetric around mean. Low: %f, High: %f, Mean: %f", low, high, mean)
	}

	if high-low <= 0 {
		t.Errorf("Confidence interval should be positive width, got %f", high-low)
	}
}

func TestStatistics_Variance(t *testing.T) {
	stats := &Statistics{}

	// Values with known variance: [1, 3, 5] -> sample variance 4.0
	values := []float64{1, 3, 5}
	for _, v := range values {
		stats.Add(RoundResult{Net: v, Hands: 1, Wins: 1})
	}

	expectedVariance := 4.0
	if math.Abs(stats.Variance()-expectedVariance) > 1e-9 {
		t.Errorf("Expected variance of %f, got %f", expectedVariance, stats.Variance())
	}

	expectedStdDev := 2.0
	if math.Abs(stats.StdDev()-expectedStdDev) > 1e-9 {
		t.Errorf("Expected stddev of %f, got %f", expectedStdDev, stats.StdDev())
	}
}

func TestStatistics_Validate_Valid(t *testing.T) {
	stats := &Statistics{}

	stats.Add(RoundResult{Net: 10.0, Hands: 1, Wins: 1})
	stats.Add(RoundResult{Net: -10.0, Hands: 1, Losses: 1})
	stats.Add(RoundResult{Net: 0.0, Hands: 1, Pushes: 1})

	if err := stats.Validate(); err != nil {
		t.Errorf("Expected valid stats to pass validation, got error: %v", err)
	}
}

func TestStatistics_Validate_LedgerMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Rounds = 1
	stats.SumNet = 1.0
	stats.Values = []float64{1.0}
	stats.HandsPlayed = 1
	stats.Wins = 1

	stats.AllNet = 1.0
	stats.MainNet = 0.5
	stats.InsuranceNet = 0.6 // Should be 0.5 to balance

	err := stats.Validate()
	if err == nil {
		t.Error("Expected validation to fail with ledger mismatch")
	}
	if !strings.Contains(err.Error(), "ledger mismatch") {
		t.Errorf("Expected ledger mismatch error, got: %v", err)
	}
}

func TestStatistics_Validate_InvalidRoundsCount(t *testing.T) {
	stats := &Statistics{}

	err := stats.Validate()
	if err == nil {
		t.Error("Expected validation to fail with invalid rounds count")
	}
	if !strings.Contains(err.Error(), "invalid rounds count") {
		t.Errorf("Expected invalid rounds count error, got: %v", err)
	}
}

func TestStatistics_Validate_ValuesMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Rounds = 2
	stats.Values = []float64{1.0} // Should have 2 values
	stats.HandsPlayed = 2
	stats.Wins = 2

	err := stats.Validate()
	if err == nil {
		t.Error("Expected validation to fail with values array mismatch")
	}
	if !strings.Contains(err.Error(), "values array length") {
		t.Errorf("Expected values array length error, got: %v", err)
	}
}

func TestStatistics_Validate_OutcomeMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Rounds = 2
	stats.Values = []float64{1.0, 1.0}
	stats.HandsPlayed = 2
	stats.Wins = 1 // One outcome unaccounted for

	err := stats.Validate()
	if err == nil {
		t.Error("Expected validation to fail with outcome mismatch")
	}
	if !strings.Contains(err.Error(), "outcome total") {
		t.Errorf("Expected outcome total error, got: %v", err)
	}
}
