package game

import (
	"testing"
	"time"

	"github.com/lox/blackjack/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	eventType EventType
}

func (e testEvent) EventType() EventType { return e.eventType }
func (e testEvent) Timestamp() time.Time { return time.Time{} }

func TestEventBusDeliversInRegistrationOrder(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	bus.On(EventGameStarted, func(GameEvent) { calls = append(calls, "first") })
	rec := &EventRecorder{}
	bus.Subscribe(rec)
	bus.On(EventGameStarted, func(GameEvent) { calls = append(calls, "second") })
	bus.On(EventGameOver, func(GameEvent) { calls = append(calls, "other") })

	bus.Publish(testEvent{EventGameStarted})

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, []EventType{EventGameStarted}, rec.Types())
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	a, b := &EventRecorder{}, &EventRecorder{}
	bus.Subscribe(a)
	bus.Subscribe(b)

	bus.Unsubscribe(a)
	bus.Publish(testEvent{EventDealerHit})

	assert.Empty(t, a.Events)
	assert.Len(t, b.Events, 1)
}

// sliceSubscriber is a value type that cannot be compared with ==.
type sliceSubscriber struct {
	seen *[]EventType
	tags []string
}

func (s sliceSubscriber) OnEvent(event GameEvent) { *s.seen = append(*s.seen, event.EventType()) }

func TestEventBusUnsubscribeNonComparable(t *testing.T) {
	bus := NewEventBus()
	var seen []EventType
	sub := sliceSubscriber{seen: &seen, tags: []string{"a"}}
	rec := &EventRecorder{}
	bus.Subscribe(sub)
	bus.Subscribe(rec)

	require.NotPanics(t, func() { bus.Unsubscribe(sub) })
	bus.Unsubscribe(rec)
	bus.Publish(testEvent{EventDealerHit})

	assert.Equal(t, []EventType{EventDealerHit}, seen)
	assert.Empty(t, rec.Events)
}

func TestEventBusRegistrationDuringPublish(t *testing.T) {
	bus := NewEventBus()
	late := &EventRecorder{}

	bus.On(EventDealerHit, func(GameEvent) { bus.Subscribe(late) })
	bus.Publish(testEvent{EventDealerHit})
	assert.Empty(t, late.Events)

	bus.Publish(testEvent{EventDealerHit})
	assert.Len(t, late.Events, 1)
}

func TestEventBusNestedPublish(t *testing.T) {
	bus := NewEventBus()
	rec := &EventRecorder{}

	bus.On(EventGameOver, func(GameEvent) { bus.Publish(testEvent{EventBalanceDepleted}) })
	bus.Subscribe(rec)

	bus.Publish(testEvent{EventGameOver})

	// The nested event is delivered before the outer publish reaches later handlers.
	assert.Equal(t, []EventType{EventBalanceDepleted, EventGameOver}, rec.Types())
}

func TestRoundEventOrder(t *testing.T) {
	rec := &EventRecorder{}
	e := NewTestEngine("Ts 6h 5s Th 2c 9d")
	e.Subscribe(rec)

	e.StartGame(10)
	e.Hit()
	e.Stand()

	assert.Equal(t, []EventType{
		EventGameStarted,
		EventPlayerHit,
		EventPlayerStand,
		EventDealerTurn,
		EventDealerHit,
		EventGameOver,
		EventHandCompleted,
	}, rec.Types())

	started := rec.Events[0].(GameStartedEvent)
	assert.Equal(t, PhasePlayerTurn, started.State.Phase)
	assert.Contains(t, started.State.Available, strategy.Hit)
	assert.Equal(t, 990, started.State.Balance)
	assert.True(t, started.State.DealerHidden)

	over := rec.Events[5].(GameOverEvent)
	require.Len(t, over.Results, 1)
	assert.Equal(t, OutcomeWin, over.Results[0].Outcome)
	assert.Equal(t, 10, over.Net)
	assert.Equal(t, 25, over.DealerValue)

	completed := rec.Events[6].(HandCompletedEvent)
	assert.Equal(t, "round-1", completed.Entry.RoundID)
	assert.Equal(t, 10, completed.Entry.NetChange)
}

func TestHandlerActingOnGameStarted(t *testing.T) {
	// Player Ts 5s (15) stands at once; dealer 6h Th draws 2c to 18.
	rec := &EventRecorder{}
	e := NewTestEngine("Ts 6h 5s Th 2c 9d")
	e.Subscribe(rec)
	e.On(EventGameStarted, func(GameEvent) { e.Stand() })

	e.StartGame(10)

	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Equal(t, 990, e.Balance())
	assert.Equal(t, []EventType{
		EventGameStarted,
		EventPlayerStand,
		EventDealerTurn,
		EventDealerHit,
		EventGameOver,
		EventHandCompleted,
	}, rec.Types())
}

func TestHandlerAnsweringInsuranceOnGameStarted(t *testing.T) {
	// Dealer shows As with 7d in the hole; the handler declines before the offer event.
	rec := &EventRecorder{}
	e := NewTestEngine("ThAs9h7d")
	e.Subscribe(rec)
	e.On(EventGameStarted, func(GameEvent) { e.RespondToInsurance(false) })

	e.StartGame(10)

	started := rec.Events[0].(GameStartedEvent)
	assert.Equal(t, PhaseInsuranceOffer, started.State.Phase)
	assert.Equal(t, PhasePlayerTurn, e.Phase())
	assert.Equal(t, 0, rec.Count(EventInsuranceOffered))
	assert.Equal(t, 1, rec.Count(EventInsuranceResolved))
}

func TestHandlerMayStartNextRound(t *testing.T) {
	e := NewTestEngine("Ts 9h 8s 8d 5s 6h 5d Th")

	rebet := true
	e.On(EventGameOver, func(GameEvent) {
		if rebet {
			rebet = false
			e.StartGame(10)
		}
	})

	e.StartGame(10)
	e.Stand()

	assert.Equal(t, PhasePlayerTurn, e.Phase())
	assert.Equal(t, "round-2", e.Round().ID)
	assert.Equal(t, 1000, e.Balance())

	entries := e.History()
	require.Len(t, entries, 1)
	assert.Equal(t, "round-1", entries[0].RoundID)
}

func TestHandlerActingDuringPlayerEvent(t *testing.T) {
	// A handler that stands as soon as a card is hit must not make the dealer
	// play twice.
	rec := &EventRecorder{}
	e := NewTestEngine("Ts 9h 2s 8d 3c")
	e.On(EventPlayerHit, func(GameEvent) { e.Stand() })
	e.Subscribe(rec)

	e.StartGame(10)
	e.Hit()

	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Equal(t, 1, rec.Count(EventDealerTurn))
	assert.Equal(t, 1, rec.Count(EventGameOver))
}
