package game

import (
	"testing"

	"github.com/lox/blackjack/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementPayouts(t *testing.T) {
	stand := func(e *Engine) { e.Stand() }

	tests := []struct {
		name    string
		stack   string
		actions []func(*Engine)
		outcome Outcome
		balance int
	}{
		{"higher total wins", "Ts 9h Qs 9d", []func(*Engine){stand}, OutcomeWin, 1010},
		{"equal totals push", "Ts Th 8s 8d", []func(*Engine){stand}, OutcomePush, 1000},
		{"lower total loses", "Ts Th 7s 9d", []func(*Engine){stand}, OutcomeLose, 990},
		{"dealer bust wins", "Ts 6h 3s Th Kc", []func(*Engine){stand}, OutcomeWin, 1010},
		{"natural pays 3:2", "As 9h Kd 7c", nil, OutcomeBlackjack, 1015},
		{"natural pushes dealer natural", "As Kh Kd Ah", nil, OutcomePush, 1000},
		{"dealer natural beats 20", "Ts Kh Qs Ah", nil, OutcomeLose, 990},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewTestEngine(tt.stack)
			e.StartGame(10)
			for _, act := range tt.actions {
				act(e)
			}

			r := e.Round()
			require.Equal(t, PhaseIdle, r.Phase)
			assert.Equal(t, tt.outcome, r.PlayerHands[0].Outcome)
			assert.Equal(t, StatusSettled, r.PlayerHands[0].Status)
			assert.Equal(t, tt.balance, e.Balance())
		})
	}
}

func TestBlackjackPayoutRoundsDown(t *testing.T) {
	e := NewTestEngine("As 9h Kd 7c")
	e.StartGame(15)

	// 15 + floor(15 * 3 / 2)
	assert.Equal(t, 37, e.Round().PlayerHands[0].Payout)
	assert.Equal(t, 1022, e.Balance())
}

func TestSettlementRecordsStatsAndHistory(t *testing.T) {
	e := NewTestEngine("8s 6h 8d Th 3c Kc 2c 9s")
	e.StartGame(10)
	e.Split()
	e.Stand()
	e.Hit()
	e.Stand()

	// Hand 0: 8-3 stands on 11. Hand 1: 8-K then 2 = 20. Dealer 16 + 9 busts.
	r := e.Round()
	require.Equal(t, PhaseIdle, r.Phase)
	require.Len(t, r.PlayerHands, 2)

	s := e.Stats()
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 20, s.TotalWagered)
	assert.Equal(t, 20, s.TotalWinnings)
	assert.Equal(t, 1020, s.BestBalance)

	entries := e.History()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, history.ResultWin, entry.Result)
	assert.Equal(t, 20, entry.NetChange)
	assert.Len(t, entry.PlayerHands, 2)
	assert.Equal(t, r.Dealer.Cards, entry.DealerCards)
	assert.Nil(t, entry.StrategyOptimal)
	assert.True(t, entry.HasAction("split"))

	adv := e.AdvancedStats()
	assert.Equal(t, 1, adv.SplitWins)
	assert.InDelta(t, 100.0, adv.WinRate, 1e-9)
}

func TestOverallResult(t *testing.T) {
	hands := func(outcomes ...Outcome) []*Hand {
		out := make([]*Hand, len(outcomes))
		for i, o := range outcomes {
			out[i] = &Hand{Outcome: o}
		}
		return out
	}

	assert.Equal(t, history.ResultSurrender, overallResult(hands(OutcomeSurrender)))
	assert.Equal(t, history.ResultWin, overallResult(hands(OutcomeLose, OutcomeWin)))
	assert.Equal(t, history.ResultLose, overallResult(hands(OutcomeLose, OutcomeLose)))
	assert.Equal(t, history.ResultPush, overallResult(hands(OutcomeLose, OutcomePush)))
}
