package game

import (
	"slices"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/history"
)

// playDealer reveals the hole card and draws to the dealer's standing rule,
// then settles the round.
func (e *Engine) playDealer(r *Round) {
	r.Phase = PhaseDealerTurn
	r.DealerRevealed = true

	skip := !slices.ContainsFunc(r.PlayerHands, func(h *Hand) bool {
		return h.Status != StatusBust && h.Status != StatusSurrender && h.Status != StatusBlackjack
	})

	e.publish(DealerTurnEvent{
		Cards:     slices.Clone(r.Dealer.Cards),
		Value:     r.Dealer.Value(),
		Skipped:   skip,
		timestamp: e.clock.Now(),
	})
	if e.round != r {
		return
	}

	if !skip {
		for e.dealerShouldHit(r) {
			card := e.draw()
			r.Dealer.Cards = append(r.Dealer.Cards, card)
			e.publish(DealerHitEvent{Card: card, Value: r.Dealer.Value(), timestamp: e.clock.Now()})
		}
	}
	e.settle(r)
}

func (e *Engine) dealerShouldHit(r *Round) bool {
	v := r.Dealer.Value()
	if v < 17 {
		return true
	}
	return v == 17 && r.Dealer.IsSoft() && e.rules.DealerHitsSoft17
}

// settle pays every hand, records statistics and history, and returns the
// engine to PhaseIdle.
func (e *Engine) settle(r *Round) {
	r.Phase = PhaseSettlement
	r.DealerRevealed = true

	dealerValue := r.Dealer.Value()
	dealerBlackjack := r.Dealer.IsBlackjack()
	single := len(r.PlayerHands) == 1

	var wagered, returned int
	natural := false
	results := make([]HandResult, len(r.PlayerHands))
	for i, h := range r.PlayerHands {
		isNatural := single && h.IsBlackjack()
		natural = natural || isNatural

		h.Outcome, h.Payout = e.resolve(h, isNatural, dealerValue, dealerBlackjack)
		if h.Status != StatusBust && h.Status != StatusSurrender {
			h.Status = StatusSettled
		}

		wagered += h.Bet
		returned += h.Payout + h.Refund
		e.balance += h.Payout
		e.stats.RecordHand(h.Outcome.Result(), h.Outcome == OutcomeBlackjack)

		results[i] = HandResult{
			HandIndex: i,
			Outcome:   h.Outcome,
			Value:     h.Value(),
			Bet:       h.Bet,
			Return:    h.Payout + h.Refund,
			Net:       h.Payout + h.Refund - h.Bet,
		}
	}

	insuranceNet := 0
	if r.Insurance.Taken {
		if dealerBlackjack {
			r.Insurance.Payout = r.Insurance.Stake * (1 + e.rules.InsurancePayout)
			e.balance += r.Insurance.Payout
		}
		insuranceNet = r.Insurance.Payout - r.Insurance.Stake
	}

	net := returned - wagered + insuranceNet
	e.stats.RecordRound(wagered, net, e.balance)

	entry := history.Entry{
		HandNumber:  r.HandNumber,
		RoundID:     r.ID,
		Timestamp:   e.clock.Now(),
		PlayerHands: make([][]deck.Card, len(r.PlayerHands)),
		DealerCards: slices.Clone(r.Dealer.Cards),
		UpCard:      r.Dealer.UpCard(),
		Actions:     slices.Clone(r.Actions),
		Result:      overallResult(r.PlayerHands),
		Bet:         r.Bet,
		NetChange:   net,
		Blackjack:   natural,
	}
	for i, h := range r.PlayerHands {
		entry.PlayerHands[i] = slices.Clone(h.Cards)
	}
	if e.training && r.graded > 0 {
		optimal := r.mistakes == 0
		entry.StrategyOptimal = &optimal
	}

	r.Phase = PhaseIdle
	depleted := e.balance < max(e.rules.MinBet, 1)
	e.logger.Debug("Round settled", "round", r.ID, "dealer", dealerValue, "net", net, "balance", e.balance)
	e.save()

	e.publish(GameOverEvent{
		RoundID:         r.ID,
		Results:         results,
		DealerCards:     slices.Clone(r.Dealer.Cards),
		DealerValue:     dealerValue,
		DealerBlackjack: dealerBlackjack,
		InsuranceNet:    insuranceNet,
		Net:             net,
		Balance:         e.balance,
		timestamp:       e.clock.Now(),
	})
	e.publish(HandCompletedEvent{Entry: entry, timestamp: e.clock.Now()})
	if depleted {
		e.logger.Info("Balance depleted", "user", e.userID, "balance", e.balance)
		e.publish(BalanceEvent{
			Type:      EventBalanceDepleted,
			Balance:   e.balance,
			MinBet:    e.rules.MinBet,
			timestamp: e.clock.Now(),
		})
	}
}

// resolve returns the outcome of a hand and the amount paid back to the
// balance for it. Stakes were deducted when placed.
func (e *Engine) resolve(h *Hand, natural bool, dealerValue int, dealerBlackjack bool) (Outcome, int) {
	playerValue := h.Value()
	switch {
	case h.Status == StatusSurrender:
		return OutcomeSurrender, 0
	case h.Status == StatusBust:
		return OutcomeLose, 0
	case dealerBlackjack && natural:
		return OutcomePush, h.Bet
	case dealerBlackjack:
		return OutcomeLose, 0
	case natural:
		return OutcomeBlackjack, e.rules.blackjackPayout(h.Bet)
	case dealerValue > 21, playerValue > dealerValue:
		return OutcomeWin, 2 * h.Bet
	case playerValue == dealerValue:
		return OutcomePush, h.Bet
	default:
		return OutcomeLose, 0
	}
}

func overallResult(hands []*Hand) history.Result {
	if len(hands) == 1 {
		return hands[0].Outcome.Result()
	}
	allLost := true
	for _, h := range hands {
		switch h.Outcome.Result() {
		case history.ResultWin:
			return history.ResultWin
		case history.ResultPush:
			allLost = false
		}
	}
	if allLost {
		return history.ResultLose
	}
	return history.ResultPush
}
