package game

import (
	"reflect"
	"slices"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/strategy"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for round lifecycle events
const (
	EventGameStarted       EventType = "game:started"
	EventDeckShuffle       EventType = "deck:shuffle"
	EventInsuranceOffered  EventType = "insurance:offered"
	EventInsuranceResolved EventType = "insurance:resolved"
	EventPlayerHit         EventType = "player:hit"
	EventPlayerStand       EventType = "player:stand"
	EventPlayerDouble      EventType = "player:double"
	EventPlayerSurrender   EventType = "player:surrender"
	EventHandBust          EventType = "hand:bust"
	EventDealerTurn        EventType = "dealer:turn"
	EventDealerHit         EventType = "dealer:hit"
	EventGameOver          EventType = "game:over"
	EventHandCompleted     EventType = "hand:completed"
	EventBalanceDepleted   EventType = "balance:depleted"
	EventBankrollReset     EventType = "bankroll:reset"
	EventTrainingFeedback  EventType = "training:feedback"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a round
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// GameStartedEvent is published once the initial four cards are dealt
type GameStartedEvent struct {
	State     State
	timestamp time.Time
}

func (e GameStartedEvent) EventType() EventType { return EventGameStarted }
func (e GameStartedEvent) Timestamp() time.Time { return e.timestamp }

// ShuffleEvent is published when the shoe is rebuilt before a deal
type ShuffleEvent struct {
	Decks     int
	Remaining int
	Total     int
	Shuffles  int
	timestamp time.Time
}

func (e ShuffleEvent) EventType() EventType { return EventDeckShuffle }
func (e ShuffleEvent) Timestamp() time.Time { return e.timestamp }

// InsuranceOfferedEvent is published when the dealer shows an ace
type InsuranceOfferedEvent struct {
	Cost      int
	UpCard    deck.Card
	timestamp time.Time
}

func (e InsuranceOfferedEvent) EventType() EventType { return EventInsuranceOffered }
func (e InsuranceOfferedEvent) Timestamp() time.Time { return e.timestamp }

// InsuranceResolvedEvent is published after the player answers the offer
type InsuranceResolvedEvent struct {
	Accepted        bool
	Taken           bool
	Stake           int
	DealerBlackjack bool
	timestamp       time.Time
}

func (e InsuranceResolvedEvent) EventType() EventType { return EventInsuranceResolved }
func (e InsuranceResolvedEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published for hit, stand, double and surrender. Card is
// set for actions that drew one.
type PlayerActionEvent struct {
	Action    strategy.Action
	HandIndex int
	Hand      Hand
	Card      *deck.Card
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType {
	switch e.Action {
	case strategy.Hit:
		return EventPlayerHit
	case strategy.Double:
		return EventPlayerDouble
	case strategy.Surrender:
		return EventPlayerSurrender
	default:
		return EventPlayerStand
	}
}
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// NewPlayerActionEvent creates a new player action event
func NewPlayerActionEvent(action strategy.Action, index int, hand *Hand, card *deck.Card, at time.Time) PlayerActionEvent {
	return PlayerActionEvent{
		Action:    action,
		HandIndex: index,
		Hand:      hand.clone(),
		Card:      card,
		timestamp: at,
	}
}

// HandBustEvent is published when a player hand goes over 21
type HandBustEvent struct {
	HandIndex int
	Value     int
	timestamp time.Time
}

func (e HandBustEvent) EventType() EventType { return EventHandBust }
func (e HandBustEvent) Timestamp() time.Time { return e.timestamp }

// DealerTurnEvent is published when the hole card is revealed. Skipped is set
// when no player hand remains that the dealer needs to beat.
type DealerTurnEvent struct {
	Cards     []deck.Card
	Value     int
	Skipped   bool
	timestamp time.Time
}

func (e DealerTurnEvent) EventType() EventType { return EventDealerTurn }
func (e DealerTurnEvent) Timestamp() time.Time { return e.timestamp }

// DealerHitEvent is published for each card the dealer draws
type DealerHitEvent struct {
	Card      deck.Card
	Value     int
	timestamp time.Time
}

func (e DealerHitEvent) EventType() EventType { return EventDealerHit }
func (e DealerHitEvent) Timestamp() time.Time { return e.timestamp }

// HandResult is the settlement of one player hand
type HandResult struct {
	HandIndex int     `json:"hand_index"`
	Outcome   Outcome `json:"outcome"`
	Value     int     `json:"value"`
	Bet       int     `json:"bet"`
	Return    int     `json:"return"`
	Net       int     `json:"net"`
}

// GameOverEvent is published once every hand is settled
type GameOverEvent struct {
	RoundID         string
	Results         []HandResult
	DealerCards     []deck.Card
	DealerValue     int
	DealerBlackjack bool
	InsuranceNet    int
	Net             int
	Balance         int
	timestamp       time.Time
}

func (e GameOverEvent) EventType() EventType { return EventGameOver }
func (e GameOverEvent) Timestamp() time.Time { return e.timestamp }

// HandCompletedEvent carries the history entry for a settled round
type HandCompletedEvent struct {
	Entry     history.Entry
	timestamp time.Time
}

func (e HandCompletedEvent) EventType() EventType { return EventHandCompleted }
func (e HandCompletedEvent) Timestamp() time.Time { return e.timestamp }

// BalanceEvent is published for balance:depleted and bankroll:reset
type BalanceEvent struct {
	Type      EventType
	Balance   int
	MinBet    int
	timestamp time.Time
}

func (e BalanceEvent) EventType() EventType { return e.Type }
func (e BalanceEvent) Timestamp() time.Time { return e.timestamp }

// TrainingFeedbackEvent grades an action against basic strategy before it is applied
type TrainingFeedbackEvent struct {
	HandIndex  int
	Evaluation strategy.Evaluation
	timestamp  time.Time
}

func (e TrainingFeedbackEvent) EventType() EventType { return EventTrainingFeedback }
func (e TrainingFeedbackEvent) Timestamp() time.Time { return e.timestamp }

// Handler receives events registered with On
type Handler func(GameEvent)

// EventSubscriber interface for components that want to receive every event
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus interface for publishing and subscribing to events
type EventBus interface {
	On(eventType EventType, handler Handler)
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

type registration struct {
	eventType  EventType // empty matches every event
	handler    Handler
	subscriber EventSubscriber
}

// SimpleEventBus delivers events synchronously, in registration order, on the
// publishing goroutine. Handlers may publish or call back into the engine.
type SimpleEventBus struct {
	registrations []registration
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// On registers handler for a single event type
func (bus *SimpleEventBus) On(eventType EventType, handler Handler) {
	bus.registrations = append(bus.registrations, registration{eventType: eventType, handler: handler})
}

// Subscribe adds a subscriber to receive all events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.registrations = append(bus.registrations, registration{handler: subscriber.OnEvent, subscriber: subscriber})
}

// Unsubscribe removes a subscriber from receiving events. Subscribers are
// matched by identity, so they should be pointers; a subscriber whose
// dynamic type is not comparable cannot be removed and is left in place.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if subscriber == nil || !reflect.TypeOf(subscriber).Comparable() {
		return
	}
	bus.registrations = slices.DeleteFunc(bus.registrations, func(r registration) bool {
		return r.subscriber != nil && r.subscriber == subscriber
	})
}

// Publish sends an event to every matching handler. Registrations made while
// an event is being delivered take effect from the next Publish.
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, r := range slices.Clone(bus.registrations) {
		if r.eventType == "" || r.eventType == event.EventType() {
			r.handler(event)
		}
	}
}
