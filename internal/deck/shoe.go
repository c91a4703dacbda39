package deck

import (
	"errors"
	rand "math/rand/v2"
)

// DefaultDecks is the number of 52-card decks in a standard shoe.
const DefaultDecks = 6

// ErrEmptyShoe is returned by Draw when no cards remain. The engine's
// reshuffle policy makes this unreachable in normal play.
var ErrEmptyShoe = errors.New("shoe is empty")

// Shoe is a multi-deck pool of cards dealt from one end.
type Shoe struct {
	cards     []Card // draw end is the tail
	decks     int
	threshold int
	rng       *rand.Rand
	shuffles  int
}

// ShoeOption configures a Shoe.
type ShoeOption func(*Shoe)

// WithDecks sets the number of decks in the shoe.
func WithDecks(n int) ShoeOption {
	return func(s *Shoe) {
		if n > 0 {
			s.decks = n
		}
	}
}

// WithThreshold sets the remaining-card count below which the shoe asks to be
// reshuffled. Zero keeps the default of one fifth of the shoe.
func WithThreshold(n int) ShoeOption {
	return func(s *Shoe) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// NewShoe creates a full, shuffled shoe drawing randomness from rng.
func NewShoe(rng *rand.Rand, opts ...ShoeOption) *Shoe {
	s := &Shoe{
		decks: DefaultDecks,
		rng:   rng,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.threshold == 0 {
		s.threshold = DefaultThreshold(s.decks)
	}
	s.Reset()
	return s
}

// NewStackedShoe returns a shoe that deals cards in exactly the given order,
// cards[0] first. It never asks for a reshuffle on its own; once Reset is
// called it behaves like a regular shoe seeded from rng.
func NewStackedShoe(rng *rand.Rand, cards []Card, opts ...ShoeOption) *Shoe {
	s := &Shoe{
		decks: DefaultDecks,
		rng:   rng,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cards = make([]Card, len(cards))
	for i, c := range cards {
		s.cards[len(cards)-1-i] = c
	}
	return s
}

// DefaultThreshold is the reshuffle point for a shoe of n decks: 20% of the
// cards remaining.
func DefaultThreshold(decks int) int {
	return decks * 52 / 5
}

// Reset rebuilds every card of every deck and shuffles them.
func (s *Shoe) Reset() {
	s.cards = s.cards[:0]
	for range s.decks {
		for _, suit := range Suits {
			for _, rank := range Ranks {
				s.cards = append(s.cards, Card{Rank: rank, Suit: suit})
			}
		}
	}
	s.shuffle()
	s.shuffles++
}

// shuffle applies a Fisher-Yates permutation.
func (s *Shoe) shuffle() {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Draw removes and returns the next card.
func (s *Shoe) Draw() (Card, error) {
	n := len(s.cards)
	if n == 0 {
		return Card{}, ErrEmptyShoe
	}
	card := s.cards[n-1]
	s.cards = s.cards[:n-1]
	return card, nil
}

// NeedsReshuffle reports whether fewer cards than the threshold remain.
func (s *Shoe) NeedsReshuffle() bool {
	return len(s.cards) < s.threshold
}

// Remaining returns the number of undealt cards.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Total returns the number of cards in a full shoe.
func (s *Shoe) Total() int {
	return s.decks * 52
}

// Decks returns the number of decks in the shoe.
func (s *Shoe) Decks() int {
	return s.decks
}

// Threshold returns the reshuffle threshold.
func (s *Shoe) Threshold() int {
	return s.threshold
}

// Shuffles counts how many times the shoe has been rebuilt.
func (s *Shoe) Shuffles() int {
	return s.shuffles
}

// Penetration returns the dealt fraction of the shoe in [0, 1].
func (s *Shoe) Penetration() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	dealt := total - len(s.cards)
	if dealt < 0 {
		dealt = 0
	}
	return float64(dealt) / float64(total)
}
