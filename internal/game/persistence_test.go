package game

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/persistence"
	"github.com/lox/blackjack/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettledRoundIsPersistedAfterDebounce(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	store := memory.New()
	gw := persistence.NewGateway(store, log.New(io.Discard), persistence.WithClock(mClock))

	e := NewTestEngine("Ts 9h 8s 8d 9s 9h Qs 8h",
		WithSaver(gw),
		WithUser("alice"),
		WithClock(mClock),
	)

	e.StartGame(10)
	e.Stand()
	_, ok := gw.Load(ctx, "alice")
	assert.False(t, ok, "save is debounced")

	// A second round inside the window replaces the pending write.
	mClock.Advance(500 * time.Millisecond).MustWait(ctx)
	e.StartGame(10)
	e.Stand()
	require.Equal(t, 1020, e.Balance())

	mClock.Advance(999 * time.Millisecond).MustWait(ctx)
	assert.Zero(t, store.Writes())

	mClock.Advance(time.Millisecond).MustWait(ctx)
	require.Eventually(t, func() bool { return store.Writes() == 1 }, time.Second, time.Millisecond)

	snap, ok := gw.Load(ctx, "alice")
	require.True(t, ok)
	assert.Equal(t, 1020, snap.Balance)
	assert.Equal(t, 2, snap.HandCounter)
	assert.Equal(t, 2, snap.Stats.Wins)

	restored := NewTestEngine("", WithSnapshot(gw.LoadAccount(ctx, "alice")))
	assert.Equal(t, 1020, restored.Balance())
}
