package game

import (
	"errors"
	"fmt"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/history"
)

// ErrInvalidRules is wrapped by Rules.Validate.
var ErrInvalidRules = errors.New("invalid rules")

// Rules are the table rules an engine enforces.
type Rules struct {
	Decks int `json:"decks"`
	// ReshuffleThreshold is the remaining-card count below which the shoe is
	// rebuilt before a deal. Zero means 20% of the shoe.
	ReshuffleThreshold int  `json:"reshuffle_threshold"`
	DealerHitsSoft17   bool `json:"dealer_hits_soft_17"`
	// Blackjack pays BlackjackPayNum:BlackjackPayDen on top of the stake.
	BlackjackPayNum  int  `json:"blackjack_pay_num"`
	BlackjackPayDen  int  `json:"blackjack_pay_den"`
	InsurancePayout  int  `json:"insurance_payout"`
	MinBet           int  `json:"min_bet"`
	MaxHands         int  `json:"max_hands"`
	DoubleAfterSplit bool `json:"double_after_split"`
	Surrender        bool `json:"surrender"`
	InitialBalance   int  `json:"initial_balance"`
	HistorySize      int  `json:"history_size"`
}

// DefaultRules: six decks, dealer hits soft 17, blackjack pays 3:2, insurance
// 2:1, late surrender and double after split allowed.
func DefaultRules() Rules {
	return Rules{
		Decks:              deck.DefaultDecks,
		ReshuffleThreshold: deck.DefaultThreshold(deck.DefaultDecks),
		DealerHitsSoft17:   true,
		BlackjackPayNum:    3,
		BlackjackPayDen:    2,
		InsurancePayout:    2,
		MinBet:             10,
		MaxHands:           4,
		DoubleAfterSplit:   true,
		Surrender:          true,
		InitialBalance:     1000,
		HistorySize:        history.DefaultSize,
	}
}

// Validate reports the first rule that cannot be played.
func (r Rules) Validate() error {
	switch {
	case r.Decks < 1 || r.Decks > 8:
		return fmt.Errorf("%w: decks must be between 1 and 8, got %d", ErrInvalidRules, r.Decks)
	case r.ReshuffleThreshold < 0 || r.ReshuffleThreshold >= r.Decks*52:
		return fmt.Errorf("%w: reshuffle threshold %d outside shoe of %d cards", ErrInvalidRules, r.ReshuffleThreshold, r.Decks*52)
	case r.BlackjackPayNum < 1 || r.BlackjackPayDen < 1:
		return fmt.Errorf("%w: blackjack payout %d:%d", ErrInvalidRules, r.BlackjackPayNum, r.BlackjackPayDen)
	case r.InsurancePayout < 0:
		return fmt.Errorf("%w: insurance payout %d", ErrInvalidRules, r.InsurancePayout)
	case r.MinBet < 1:
		return fmt.Errorf("%w: minimum bet must be positive, got %d", ErrInvalidRules, r.MinBet)
	case r.MaxHands < 1:
		return fmt.Errorf("%w: max hands must be positive, got %d", ErrInvalidRules, r.MaxHands)
	case r.InitialBalance < r.MinBet:
		return fmt.Errorf("%w: initial balance %d below minimum bet %d", ErrInvalidRules, r.InitialBalance, r.MinBet)
	}
	return nil
}

func (r Rules) blackjackPayout(bet int) int {
	return bet + bet*r.BlackjackPayNum/r.BlackjackPayDen
}
