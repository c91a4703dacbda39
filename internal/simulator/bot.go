package simulator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/lox/blackjack/internal/strategy"
)

// maxDecisions bounds a single round; a round that needs more has stalled.
const maxDecisions = 64

// ErrRoundStalled is returned when the engine stops accepting decisions
// before the round settles.
var ErrRoundStalled = errors.New("round did not settle")

// ErrBetRejected is returned when the engine refuses to deal.
var ErrBetRejected = errors.New("bet rejected")

// PlayRound plays one round of basic strategy on e and reports the outcome.
// Insurance is always declined.
func PlayRound(e *game.Engine, bet int) (statistics.RoundResult, error) {
	before, hands := e.Balance(), e.HandNumber()
	e.StartGame(bet)
	if e.HandNumber() == hands {
		return statistics.RoundResult{}, fmt.Errorf("%w: %d with balance %d", ErrBetRejected, bet, before)
	}

	for range maxDecisions {
		switch e.Phase() {
		case game.PhaseIdle:
			return summarize(e.Round(), bet, e.Balance()-before), nil
		case game.PhaseInsuranceOffer:
			e.RespondToInsurance(false)
		case game.PhasePlayerTurn:
			apply(e, decide(e))
		default:
			return statistics.RoundResult{}, fmt.Errorf("%w: stuck in phase %s", ErrRoundStalled, e.Phase())
		}
	}
	return statistics.RoundResult{}, fmt.Errorf("%w: more than %d decisions", ErrRoundStalled, maxDecisions)
}

// decide picks the basic strategy play for the current hand.
func decide(e *game.Engine) strategy.Action {
	state := e.State()
	available := state.Available
	hand := state.PlayerHands[state.CurrentHand]

	opts := strategy.Options{
		CanDouble:        slices.Contains(available, strategy.Double),
		CanSplit:         slices.Contains(available, strategy.Split),
		CanSurrender:     slices.Contains(available, strategy.Surrender),
		DoubleAfterSplit: e.Rules().DoubleAfterSplit,
	}
	rec := strategy.Recommend(hand.Cards, state.DealerCards[0], opts)
	if slices.Contains(available, rec.Action) {
		return rec.Action
	}
	if hand.Value() >= 17 {
		return strategy.Stand
	}
	return strategy.Hit
}

func apply(e *game.Engine, action strategy.Action) {
	switch action {
	case strategy.Hit:
		e.Hit()
	case strategy.Stand:
		e.Stand()
	case strategy.Double:
		e.Double()
	case strategy.Split:
		e.Split()
	case strategy.Surrender:
		e.Surrender()
	}
}

// summarize converts a settled round into a result.
func summarize(r game.Round, bet, net int) statistics.RoundResult {
	result := statistics.RoundResult{
		Bet:     bet,
		Net:     net,
		Hands:   len(r.PlayerHands),
		Split:   len(r.PlayerHands) > 1,
		Insured: r.Insurance.Taken,
		Wagered: r.Insurance.Stake,
	}
	for _, h := range r.PlayerHands {
		result.Wagered += h.Bet
		if h.Doubled {
			result.Doubled = true
		}
		switch h.Outcome {
		case game.OutcomeBlackjack:
			result.Blackjack = true
			result.Wins++
		case game.OutcomeWin:
			result.Wins++
		case game.OutcomePush:
			result.Pushes++
		case game.OutcomeSurrender:
			result.Surrender = true
			result.Losses++
		default:
			result.Losses++
		}
	}
	return result
}
