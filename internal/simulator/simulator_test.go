package simulator

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
}

func TestPlayRound(t *testing.T) {
	tests := []struct {
		name  string
		cards string
		net   int
	}{
		{
			// Hard 20 against 17: stand and win.
			name:  "stand on twenty",
			cards: "Th9sKh8d",
			net:   10,
		},
		{
			// 11 against 6 doubles, draws a ten, dealer busts.
			name:  "double eleven",
			cards: "6h6s5dTc Ks 9h",
			net:   20,
		},
		{
			// Player natural against a non-ace upcard pays 3:2.
			name:  "natural",
			cards: "As9sKh8d",
			net:   15,
		},
		{
			// Hard 16 against a ten surrenders.
			name:  "surrender sixteen",
			cards: "Th9s6hKd",
			net:   -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := game.NewTestEngine(tt.cards)
			result, err := PlayRound(e, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.net, result.Net)
			assert.Equal(t, game.PhaseIdle, e.Phase())
			assert.Equal(t, 1000+tt.net, e.Balance())
			assert.Equal(t, result.Hands, result.Wins+result.Losses+result.Pushes)
		})
	}
}

func TestPlayRoundDeclinesInsurance(t *testing.T) {
	// Dealer shows As with 7d in the hole; player stands on 19.
	e := game.NewTestEngine("ThAs9h7d")
	result, err := PlayRound(e, 10)
	require.NoError(t, err)

	assert.False(t, result.Insured)
	assert.Equal(t, 10, result.Wagered)
	assert.Equal(t, 10, result.Net)
}

func TestPlayRoundSplitsEights(t *testing.T) {
	// 8-8 against a 9 splits; each eight draws a ten, stands on 18 and the dealer busts.
	e := game.NewTestEngine("8s9d8h7c Ts Td 6c")
	result, err := PlayRound(e, 10)
	require.NoError(t, err)

	assert.True(t, result.Split)
	assert.Equal(t, 2, result.Hands)
	assert.Equal(t, 20, result.Wagered)
	assert.Equal(t, 20, result.Net)
}

func TestPlayRoundRejectedBet(t *testing.T) {
	e := game.NewTestEngine("Th9sKh8d", game.WithBalance(5))
	_, err := PlayRound(e, 10)
	assert.ErrorIs(t, err, ErrBetRejected)
}

func TestRun(t *testing.T) {
	var progress atomic.Int64
	sim := New(Config{
		Rounds:  2500,
		Workers: 3,
		Seed:    12345,
		Logger:  testLogger(),
		OnProgress: func(completed, total int) {
			progress.Add(1)
			assert.Equal(t, 2500, total)
		},
	})

	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, stats.Validate())

	assert.Equal(t, 2500, stats.Rounds)
	assert.GreaterOrEqual(t, stats.Hands, stats.Rounds)
	assert.Equal(t, int64(2), progress.Load())

	// Basic strategy keeps the per-round result well inside a bet either way.
	assert.InDelta(t, 0, stats.Mean(), 0.2)
	assert.Greater(t, stats.Blackjacks, 0)
}

func TestRunIsReproducible(t *testing.T) {
	run := func() int {
		stats, err := New(Config{Rounds: 500, Workers: 2, Seed: 7, Logger: testLogger()}).Run(context.Background())
		require.NoError(t, err)
		return stats.TotalNet
	}
	assert.Equal(t, run(), run())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Rounds: 1000, Workers: 2, Logger: testLogger()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Rounds: 0, Logger: testLogger()}).Run(context.Background())
	assert.Error(t, err)

	rules := game.DefaultRules()
	rules.Decks = 0
	_, err = New(Config{Rounds: 10, Rules: rules, Logger: testLogger()}).Run(context.Background())
	assert.ErrorIs(t, err, game.ErrInvalidRules)
}

func TestRunSimulation(t *testing.T) {
	stats, err := RunSimulation(context.Background(), 50, 1, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Rounds)
}
