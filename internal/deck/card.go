package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in shoe-building order.
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Ranks lists every rank in shoe-building order.
var Ranks = [...]Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Points returns the blackjack pip value of the rank. Aces count 11 here;
// reducing them to 1 is the evaluator's job.
func (r Rank) Points() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r)
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Points returns the blackjack value of the card (ace = 11).
func (c Card) Points() int {
	return c.Rank.Points()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsTenValue reports whether the card counts ten (10, J, Q, K).
func (c Card) IsTenValue() bool {
	return c.Rank >= Ten && c.Rank <= King
}

// ParseCard parses a single card such as "As", "Th", "10d" or "kc".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rankPart, suitPart := s[:len(s)-1], s[len(s)-1:]

	rank, err := parseRank(rankPart)
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	suit, err := parseSuit(suitPart)
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a compact card list such as "AsKh10d2c". Whitespace and
// commas between cards are ignored.
func ParseCards(s string) ([]Card, error) {
	s = strings.NewReplacer(" ", "", ",", "").Replace(s)
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); {
		width := 2
		if strings.HasPrefix(s[i:], "10") {
			width = 3
		}
		if i+width > len(s) {
			return nil, fmt.Errorf("truncated card at offset %d in %q", i, s)
		}
		card, err := ParseCard(s[i : i+width])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
		i += width
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixtures; it panics on malformed input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

func parseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return Rank(s[0] - '0'), nil
	case "T", "10":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

func parseSuit(s string) (Suit, error) {
	switch strings.ToLower(s) {
	case "s":
		return Spades, nil
	case "h":
		return Hearts, nil
	case "d":
		return Diamonds, nil
	case "c":
		return Clubs, nil
	}
	return 0, fmt.Errorf("unknown suit %q", s)
}

// Code returns the compact two-character form, e.g. "As" or "Th".
func (c Card) Code() string {
	rank := c.Rank.String()
	if c.Rank == Ten {
		rank = "T"
	}
	return rank + string("shdc"[c.Suit])
}

// MarshalText encodes the card as its Code. The zero Card encodes as "".
func (c Card) MarshalText() ([]byte, error) {
	if c == (Card{}) {
		return []byte{}, nil
	}
	if c.Rank < Two || c.Rank > Ace || c.Suit < Spades || c.Suit > Clubs {
		return nil, fmt.Errorf("invalid card rank=%d suit=%d", c.Rank, c.Suit)
	}
	return []byte(c.Code()), nil
}

// UnmarshalText accepts anything ParseCard does.
func (c *Card) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = Card{}
		return nil
	}
	card, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = card
	return nil
}
