package statistics

import (
	"math"
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
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.HouseEdge() != 0 {
		t.Errorf("Expected house edge of 0 for empty stats, got %f", stats.HouseEdge())
	}
	if stats.WinRate() != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", stats.WinRate())
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected empty stats to fail validation")
	}
}

func TestStatistics_SingleRound(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Bet: 10, Wagered: 10, Net: 15, Hands: 1, Wins: 1, Blackjack: true})

	if stats.Rounds != 1 {
		t.Errorf("Expected 1 round, got %d", stats.Rounds)
	}
	if stats.Mean() != 1.5 {
		t.Errorf("Expected mean of 1.5, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for single value, got %f", stats.Variance())
	}
	if stats.Blackjacks != 1 {
		t.Errorf("Expected 1 blackjack, got %d", stats.Blackjacks)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_MeanAndVariance(t *testing.T) {
	stats := &Statistics{}
	// Units: +1, -1, +2, 0
	stats.Add(RoundResult{Bet: 10, Wagered: 10, Net: 10, Hands: 1, Wins: 1})
	stats.Add(RoundResult{Bet: 10, Wagered: 10, Net: -10, Hands: 1, Losses: 1})
	stats.Add(RoundResult{Bet: 10, Wagered: 20, Net: 20, Hands: 1, Wins: 1, Doubled: true})
	stats.Add(RoundResult{Bet: 10, Wagered: 10, Net: 0, Hands: 1, Pushes: 1})

	if got := stats.Mean(); got != 0.5 {
		t.Errorf("Expected mean of 0.5, got %f", got)
	}
	// Sample variance: ((0.5)^2 + (1.5)^2 + (1.5)^2 + (0.5)^2) / 3 = 5/3
	if got := stats.Variance(); math.Abs(got-5.0/3.0) > 1e-9 {
		t.Errorf("Expected variance of 5/3, got %f", got)
	}
	if got := stats.Median(); got != 0.5 {
		t.Errorf("Expected median of 0.5, got %f", got)
	}
	if got := stats.Percentile(1); got != 2 {
		t.Errorf("Expected max of 2, got %f", got)
	}
	// Net +20 on 50 wagered: the house keeps -40%.
	if got := stats.HouseEdge(); math.Abs(got+40) > 1e-9 {
		t.Errorf("Expected house edge of -40, got %f", got)
	}
	if got := stats.WinRate(); math.Abs(got-200.0/3.0) > 1e-9 {
		t.Errorf("Expected win rate of 66.7, got %f", got)
	}

	low, high := stats.ConfidenceInterval95()
	if low >= stats.Mean() || high <= stats.Mean() {
		t.Errorf("Expected interval around the mean, got [%f, %f]", low, high)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_SplitRound(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Bet: 10, Wagered: 20, Net: 0, Hands: 2, Wins: 1, Losses: 1, Split: true})

	if stats.Hands != 2 {
		t.Errorf("Expected 2 hands, got %d", stats.Hands)
	}
	if stats.Splits != 1 {
		t.Errorf("Expected 1 split, got %d", stats.Splits)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_Merge(t *testing.T) {
	a := &Statistics{}
	a.Add(RoundResult{Bet: 10, Wagered: 10, Net: 10, Hands: 1, Wins: 1})
	a.Add(RoundResult{Bet: 10, Wagered: 10, Net: -5, Hands: 1, Losses: 1, Surrender: true})

	b := &Statistics{}
	b.Add(RoundResult{Bet: 20, Wagered: 30, Net: -30, Hands: 1, Losses: 1, Insured: true})

	combined := &Statistics{}
	combined.Add(RoundResult{Bet: 10, Wagered: 10, Net: 10, Hands: 1, Wins: 1})
	combined.Add(RoundResult{Bet: 10, Wagered: 10, Net: -5, Hands: 1, Losses: 1, Surrender: true})
	combined.Add(RoundResult{Bet: 20, Wagered: 30, Net: -30, Hands: 1, Losses: 1, Insured: true})

	a.Merge(b)

	if a.Rounds != combined.Rounds {
		t.Errorf("Expected %d rounds, got %d", combined.Rounds, a.Rounds)
	}
	if math.Abs(a.Mean()-combined.Mean()) > 1e-9 {
		t.Errorf("Expected mean %f, got %f", combined.Mean(), a.Mean())
	}
	if math.Abs(a.Variance()-combined.Variance()) > 1e-9 {
		t.Errorf("Expected variance %f, got %f", combined.Variance(), a.Variance())
	}
	if a.TotalWagered != 50 || a.TotalNet != -25 {
		t.Errorf("Expected wagered 50 and net -25, got %d and %d", a.TotalWagered, a.TotalNet)
	}
	if a.Surrenders != 1 || a.Insured != 1 {
		t.Errorf("Expected 1 surrender and 1 insured round, got %d and %d", a.Surrenders, a.Insured)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_ValidateDetectsMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Bet: 10, Wagered: 10, Net: 10, Hands: 1, Wins: 1})
	stats.Pushes++

	if err := stats.Validate(); err == nil {
		t.Error("Expected validation error for outcome mismatch")
	}
}

func TestRoundResult_UnitsWithoutBet(t *testing.T) {
	if got := (RoundResult{Net: 10}).Units(); got != 0 {
		t.Errorf("Expected 0 units without a bet, got %f", got)
	}
}
