// Package evaluator scores blackjack hands.
//
// Every function is pure: it reads a slice of cards and never keeps state, so
// the engine, the strategy tables and the UI can all share it freely.
package evaluator

import (
	"github.com/lox/blackjack/internal/deck"
)

// Blackjack is the best possible hand total.
const Blackjack = 21

// HandType classifies a hand for strategy lookups
type HandType int

const (
	Hard HandType = iota
	Soft
	Pair
)

// String returns the string representation of a hand type
func (ht HandType) String() string {
	switch ht {
	case Hard:
		return "hard"
	case Soft:
		return "soft"
	case Pair:
		return "pair"
	default:
		return "unknown"
	}
}

// HandStats is the result of scoring a hand in one pass.
type HandStats struct {
	Value int
	// SoftAces is the number of aces still counted as 11 after reduction.
	// It is 0 or 1 for any hand that is not bust.
	SoftAces int
}

// IsSoft reports whether an ace is still counted as 11.
func (s HandStats) IsSoft() bool {
	return s.SoftAces > 0
}

// Stats scores cards: faces count 10, aces start at 11 and drop to 1 one at a
// time while the total is over 21.
func Stats(cards []deck.Card) HandStats {
	value, aces := 0, 0
	for _, c := range cards {
		value += c.Points()
		if c.IsAce() {
			aces++
		}
	}
	for value > Blackjack && aces > 0 {
		value -= 10
		aces--
	}
	return HandStats{Value: value, SoftAces: aces}
}

// Value returns the best total for cards.
func Value(cards []deck.Card) int {
	return Stats(cards).Value
}

// IsSoft reports whether the best total counts an ace as 11.
func IsSoft(cards []deck.Card) bool {
	return Stats(cards).IsSoft()
}

// IsBust reports whether the hand is over 21.
func IsBust(cards []deck.Card) bool {
	return Value(cards) > Blackjack
}

// IsBlackjack reports a two-card 21.
func IsBlackjack(cards []deck.Card) bool {
	return len(cards) == 2 && Value(cards) == Blackjack
}

// IsPair reports two cards of the same rank. Mixed ten-value cards (10 and J)
// are not a pair.
func IsPair(cards []deck.Card) bool {
	return len(cards) == 2 && cards[0].Rank == cards[1].Rank
}

// Classification describes a hand for basic strategy.
type Classification struct {
	Type  HandType
	Total int
	// PairRank is set when Type is Pair.
	PairRank deck.Rank
}

// Classify buckets cards into pair, soft or hard.
func Classify(cards []deck.Card) Classification {
	stats := Stats(cards)
	switch {
	case IsPair(cards):
		return Classification{Type: Pair, Total: stats.Value, PairRank: cards[0].Rank}
	case stats.IsSoft():
		return Classification{Type: Soft, Total: stats.Value}
	default:
		return Classification{Type: Hard, Total: stats.Value}
	}
}
