// Package statistics aggregates simulated round results into the figures
// needed to judge a strategy: expected return per unit bet, its spread and a
// confidence interval.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult represents the outcome of a single round
type RoundResult struct {
	Bet       int  // Initial stake
	Wagered   int  // Total staked including doubles, splits and insurance
	Net       int  // Chips won or lost
	Hands     int  // Player hands after splits
	Wins      int  // Hands won, blackjacks included
	Losses    int  // Hands lost, surrenders included
	Pushes    int  // Hands pushed
	Blackjack bool // Natural paid at the blackjack rate
	Doubled   bool // Any hand was doubled
	Split     bool // The starting hand was split
	Surrender bool // The hand was surrendered
	Insured   bool // Insurance was taken
}

// Units is the round's net result in units of the initial bet.
func (r RoundResult) Units() float64 {
	if r.Bet == 0 {
		return 0
	}
	return float64(r.Net) / float64(r.Bet)
}

// Statistics tracks simulation results in units of the initial bet
type Statistics struct {
	Rounds    int
	SumUnits  float64
	SumUnits2 float64   // Sum of squares for variance calculation
	Values    []float64 // Store all values for median/percentile calculation

	Hands      int
	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int
	Doubles    int
	Splits     int
	Surrenders int
	Insured    int

	TotalWagered int
	TotalNet     int
}

// Mean returns the expected return per round in units of the initial bet
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumUnits / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumUnits2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(max(0, s.Variance()))
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
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// HouseEdge is the percentage of every chip wagered the house keeps.
func (s *Statistics) HouseEdge() float64 {
	if s.TotalWagered == 0 {
		return 0
	}
	return -100 * float64(s.TotalNet) / float64(s.TotalWagered)
}

// WinRate is the percentage of decided hands the player won.
func (s *Statistics) WinRate() float64 {
	decided := s.Wins + s.Losses
	if decided == 0 {
		return 0
	}
	return 100 * float64(s.Wins) / float64(decided)
}

// Add incorporates a new round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	units := result.Units()
	s.Rounds++
	s.SumUnits += units
	s.SumUnits2 += units * units
	s.Values = append(s.Values, units)

	s.Hands += result.Hands
	s.Wins += result.Wins
	s.Losses += result.Losses
	s.Pushes += result.Pushes
	if result.Blackjack {
		s.Blackjacks++
	}
	if result.Doubled {
		s.Doubles++
	}
	if result.Split {
		s.Splits++
	}
	if result.Surrender {
		s.Surrenders++
	}
	if result.Insured {
		s.Insured++
	}

	s.TotalWagered += result.Wagered
	s.TotalNet += result.Net
}

// Merge folds other into s. Workers accumulate separately and are merged once
// they finish.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumUnits += other.SumUnits
	s.SumUnits2 += other.SumUnits2
	s.Values = append(s.Values, other.Values...)

	s.Hands += other.Hands
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.Doubles += other.Doubles
	s.Splits += other.Splits
	s.Surrenders += other.Surrenders
	s.Insured += other.Insured

	s.TotalWagered += other.TotalWagered
	s.TotalNet += other.TotalNet
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
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

// Validate performs consistency checks on the accumulated data
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}

	if outcomes := s.Wins + s.Losses + s.Pushes; outcomes != s.Hands {
		return fmt.Errorf("hand outcomes (%d) do not match hands played (%d)", outcomes, s.Hands)
	}

	if s.Hands < s.Rounds {
		return fmt.Errorf("hands played (%d) fewer than rounds (%d)", s.Hands, s.Rounds)
	}

	if -s.TotalNet > s.TotalWagered {
		return fmt.Errorf("net loss (%d) exceeds total wagered (%d)", -s.TotalNet, s.TotalWagered)
	}

	return nil
}
