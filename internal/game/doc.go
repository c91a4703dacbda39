// Package game implements a single-player blackjack round engine.
//
// The main type is Engine, which owns the player's balance, the shoe and the
// state of the current Round. Every action is a synchronous method call; the
// engine publishes GameEvents on an EventBus as the round progresses.
//
// # Basic Usage
//
//	e := game.NewEngine(logger)
//	e.On(game.EventGameOver, func(ev game.GameEvent) {
//	    over := ev.(game.GameOverEvent)
//	    fmt.Println(over.Net, over.Balance)
//	})
//	e.StartGame(25)
//	e.Hit()
//	e.Stand()
//
// An action whose preconditions are not met (wrong phase, insufficient balance,
// illegal split) is ignored and leaves the engine unchanged.
//
// # Deterministic Testing
//
// NewTestEngine deals from a stacked shoe so every card is known in advance:
//
//	e := game.NewTestEngine("Ts 9h 6s 7d")
//	e.StartGame(10) // player Ts 6s, dealer 9h 7d
//
// # Phases
//
// A round moves Idle → Betting → Dealing → (InsuranceOffer) → PlayerTurn →
// DealerTurn → Settlement → Idle. Only Idle, InsuranceOffer and PlayerTurn are
// observable between calls; the others are passed through inside a single call.
// game:started is published once the round is in InsuranceOffer or PlayerTurn,
// so a handler may act on it directly.
package game
