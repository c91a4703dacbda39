package game

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/randutil"
)

// NewTestEngine creates an engine that deals cards in the given order, in the
// compact form accepted by deck.ParseCards. The deal order is player, dealer,
// player, dealer, then draws in the order actions request them. Round IDs are
// sequential ("round-1", "round-2", ...) and logging is discarded.
func NewTestEngine(cards string, opts ...Option) *Engine {
	n := 0
	base := []Option{
		WithShoe(StackedShoe(cards)),
		WithRoundIDs(func() string {
			n++
			return fmt.Sprintf("round-%d", n)
		}),
	}
	return NewEngine(log.New(io.Discard), append(base, opts...)...)
}

// StackedShoe returns a shoe dealing cards in order, seeded deterministically
// for any reshuffle.
func StackedShoe(cards string) *deck.Shoe {
	return deck.NewStackedShoe(randutil.New(42), deck.MustParseCards(cards))
}

// EventRecorder is an EventSubscriber that keeps every event it receives.
type EventRecorder struct {
	Events []GameEvent
}

func (r *EventRecorder) OnEvent(event GameEvent) {
	r.Events = append(r.Events, event)
}

// Types returns the recorded event types in delivery order.
func (r *EventRecorder) Types() []EventType {
	types := make([]EventType, len(r.Events))
	for i, ev := range r.Events {
		types[i] = ev.EventType()
	}
	return types
}

// Last returns the most recent event of the given type.
func (r *EventRecorder) Last(eventType EventType) (GameEvent, bool) {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].EventType() == eventType {
			return r.Events[i], true
		}
	}
	return nil, false
}

// Count returns how many events of the given type were recorded.
func (r *EventRecorder) Count(eventType EventType) int {
	n := 0
	for _, ev := range r.Events {
		if ev.EventType() == eventType {
			n++
		}
	}
	return n
}

func (r *EventRecorder) Reset() { r.Events = nil }
