package stats

import (
	"testing"

	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(r history.Result, actions ...strategy.Action) history.Entry {
	return history.Entry{Result: r, Actions: actions}
}

// newestFirst builds history entries from a chronological list.
func newestFirst(chronological ...history.Entry) []history.Entry {
	out := make([]history.Entry, len(chronological))
	for i, e := range chronological {
		out[len(chronological)-1-i] = e
	}
	return out
}

func TestCountersRecord(t *testing.T) {
	c := New(1000)

	c.RecordHand(history.ResultWin, true)
	c.RecordHand(history.ResultLose, false)
	c.RecordHand(history.ResultSurrender, false)
	c.RecordHand(history.ResultPush, false)
	c.RecordRound(40, 15, 1015)
	c.RecordRound(20, -20, 995)

	assert.Equal(t, 1, c.Wins)
	assert.Equal(t, 2, c.Losses)
	assert.Equal(t, 1, c.Pushes)
	assert.Equal(t, 1, c.Blackjacks)
	assert.Equal(t, 4, c.HandsPlayed())
	assert.Equal(t, 60, c.TotalWagered)
	assert.Equal(t, -5, c.TotalWinnings)
	assert.Equal(t, 1015, c.BestBalance)
	assert.Equal(t, 995, c.WorstBalance)
}

func TestComputeEmpty(t *testing.T) {
	a := Compute(nil, New(1000))

	assert.Zero(t, a.WinRate)
	assert.Zero(t, a.NetROI)
	assert.Equal(t, Streak{Kind: StreakNone}, a.CurrentStreak)
	assert.Nil(t, a.DoubleEfficiency)
	assert.Nil(t, a.SplitEfficiency)
	assert.Nil(t, a.StrategyCompliance)
	assert.Equal(t, 1000, a.BestBalance)
}

func TestComputeRatesRoundToOneDecimal(t *testing.T) {
	c := Counters{Wins: 1, Losses: 2, TotalWinnings: 10, TotalWagered: 30}
	a := Compute(nil, c)

	assert.InDelta(t, 33.3, a.WinRate, 1e-9)
	assert.InDelta(t, 33.3, a.NetROI, 1e-9)
}

func TestComputeStreaks(t *testing.T) {
	entries := newestFirst(
		entry(history.ResultWin),
		entry(history.ResultWin),
		entry(history.ResultWin),
		entry(history.ResultPush),
		entry(history.ResultLose),
		entry(history.ResultLose),
		entry(history.ResultWin),
		entry(history.ResultLose),
		entry(history.ResultLose),
	)

	a := Compute(entries, Counters{})
	assert.Equal(t, 3, a.LongestWinStreak)
	assert.Equal(t, 2, a.LongestLossStreak)
	assert.Equal(t, Streak{Kind: StreakLoss, Count: 2}, a.CurrentStreak)
	assert.Equal(t, len(entries), a.HandsPlayed)
}

func TestComputeCurrentStreakOther(t *testing.T) {
	entries := newestFirst(entry(history.ResultWin), entry(history.ResultPush))
	a := Compute(entries, Counters{})
	assert.Equal(t, Streak{Kind: StreakOther, Count: 1}, a.CurrentStreak)
}

func TestComputeEfficiency(t *testing.T) {
	yes, no := true, false
	optimal := entry(history.ResultWin, strategy.Double)
	optimal.StrategyOptimal = &yes
	mistake := entry(history.ResultLose, strategy.Split, strategy.Hit)
	mistake.StrategyOptimal = &no

	entries := newestFirst(
		optimal,
		entry(history.ResultLose, strategy.Double),
		entry(history.ResultWin, strategy.Double),
		mistake,
		entry(history.ResultWin, strategy.Split),
		entry(history.ResultPush, strategy.Split),
	)

	a := Compute(entries, Counters{})
	assert.Equal(t, 2, a.DoubleWins)
	assert.Equal(t, 1, a.DoubleLosses)
	require.NotNil(t, a.DoubleEfficiency)
	assert.InDelta(t, 66.7, *a.DoubleEfficiency, 1e-9)

	assert.Equal(t, 1, a.SplitWins)
	assert.Equal(t, 1, a.SplitLosses)
	require.NotNil(t, a.SplitEfficiency)
	assert.InDelta(t, 50.0, *a.SplitEfficiency, 1e-9)

	require.NotNil(t, a.StrategyCompliance)
	assert.InDelta(t, 50.0, *a.StrategyCompliance, 1e-9)
}
