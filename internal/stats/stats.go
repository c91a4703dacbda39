// Package stats tracks session counters and derives advanced statistics from
// hand history.
package stats

import (
	"math"

	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/strategy"
)

// Counters are the running totals persisted with a player's snapshot.
type Counters struct {
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	Pushes        int `json:"pushes"`
	Blackjacks    int `json:"blackjacks"`
	TotalWinnings int `json:"total_winnings"`
	TotalWagered  int `json:"total_wagered"`
	BestBalance   int `json:"best_balance"`
	WorstBalance  int `json:"worst_balance"`
}

// New returns zeroed counters anchored at the starting balance.
func New(balance int) Counters {
	return Counters{BestBalance: balance, WorstBalance: balance}
}

// HandsPlayed counts settled hands, split hands individually.
func (c Counters) HandsPlayed() int {
	return c.Wins + c.Losses + c.Pushes
}

// RecordHand tallies one settled hand. Surrenders count as losses.
func (c *Counters) RecordHand(result history.Result, blackjack bool) {
	switch result {
	case history.ResultWin:
		c.Wins++
	case history.ResultPush:
		c.Pushes++
	case history.ResultLose, history.ResultSurrender:
		c.Losses++
	}
	if blackjack {
		c.Blackjacks++
	}
}

// RecordRound adds a round's wager and net result and tracks the balance range.
func (c *Counters) RecordRound(wagered, net, balance int) {
	c.TotalWagered += wagered
	c.TotalWinnings += net
	c.ObserveBalance(balance)
}

func (c *Counters) ObserveBalance(balance int) {
	c.BestBalance = max(c.BestBalance, balance)
	c.WorstBalance = min(c.WorstBalance, balance)
}

// StreakKind names the result a streak is made of.
type StreakKind string

const (
	StreakNone  StreakKind = "none"
	StreakWin   StreakKind = "win"
	StreakLoss  StreakKind = "loss"
	StreakOther StreakKind = "other"
)

type Streak struct {
	Kind  StreakKind `json:"kind"`
	Count int        `json:"count"`
}

// Advanced holds derived statistics. Percentages are rounded to one decimal
// place; efficiency figures are nil until there is at least one sample.
type Advanced struct {
	WinRate            float64  `json:"win_rate"`
	NetROI             float64  `json:"net_roi"`
	LongestWinStreak   int      `json:"longest_win_streak"`
	LongestLossStreak  int      `json:"longest_loss_streak"`
	CurrentStreak      Streak   `json:"current_streak"`
	BestBalance        int      `json:"best_balance"`
	WorstBalance       int      `json:"worst_balance"`
	DoubleWins         int      `json:"double_wins"`
	DoubleLosses       int      `json:"double_losses"`
	DoubleEfficiency   *float64 `json:"double_efficiency"`
	SplitWins          int      `json:"split_wins"`
	SplitLosses        int      `json:"split_losses"`
	SplitEfficiency    *float64 `json:"split_efficiency"`
	StrategyCompliance *float64 `json:"strategy_compliance"`
	TotalWagered       int      `json:"total_wagered"`
	HandsPlayed        int      `json:"hands_played"`
	Wins               int      `json:"wins"`
	Losses             int      `json:"losses"`
}

// Compute derives advanced statistics from newest-first history entries and
// the session counters.
func Compute(entries []history.Entry, c Counters) Advanced {
	a := Advanced{
		BestBalance:  c.BestBalance,
		WorstBalance: c.WorstBalance,
		TotalWagered: c.TotalWagered,
		HandsPlayed:  len(entries),
		Wins:         c.Wins,
		Losses:       c.Losses,
	}

	if played := c.HandsPlayed(); played > 0 {
		a.WinRate = round1(float64(c.Wins) / float64(played) * 100)
	}
	if c.TotalWagered > 0 {
		a.NetROI = round1(float64(c.TotalWinnings) / float64(c.TotalWagered) * 100)
	}

	var winRun, lossRun, optimal, graded int
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]

		switch e.Result {
		case history.ResultWin:
			winRun++
			lossRun = 0
			a.LongestWinStreak = max(a.LongestWinStreak, winRun)
		case history.ResultLose:
			lossRun++
			winRun = 0
			a.LongestLossStreak = max(a.LongestLossStreak, lossRun)
		}

		if e.HasAction(strategy.Double) {
			tally(e.Result, &a.DoubleWins, &a.DoubleLosses)
		}
		if e.HasAction(strategy.Split) {
			tally(e.Result, &a.SplitWins, &a.SplitLosses)
		}

		if e.StrategyOptimal != nil {
			graded++
			if *e.StrategyOptimal {
				optimal++
			}
		}
	}

	a.CurrentStreak = currentStreak(entries)
	a.DoubleEfficiency = ratio(a.DoubleWins, a.DoubleWins+a.DoubleLosses)
	a.SplitEfficiency = ratio(a.SplitWins, a.SplitWins+a.SplitLosses)
	a.StrategyCompliance = ratio(optimal, graded)
	return a
}

func currentStreak(entries []history.Entry) Streak {
	if len(entries) == 0 {
		return Streak{Kind: StreakNone}
	}
	latest := entries[0].Result
	count := 0
	for _, e := range entries {
		if e.Result != latest {
			break
		}
		count++
	}

	kind := StreakOther
	switch latest {
	case history.ResultWin:
		kind = StreakWin
	case history.ResultLose:
		kind = StreakLoss
	}
	return Streak{Kind: kind, Count: count}
}

func tally(r history.Result, wins, losses *int) {
	switch r {
	case history.ResultWin:
		*wins++
	case history.ResultLose:
		*losses++
	}
}

func ratio(n, total int) *float64 {
	if total == 0 {
		return nil
	}
	v := round1(float64(n) / float64(total) * 100)
	return &v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
