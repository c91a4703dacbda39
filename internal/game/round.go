package game

import (
	"slices"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/evaluator"
	"github.com/lox/blackjack/internal/history"
	"github.com/lox/blackjack/internal/strategy"
)

// Phase is the stage a round is in.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseBetting        Phase = "betting"
	PhaseDealing        Phase = "dealing"
	PhaseInsuranceOffer Phase = "insurance"
	PhasePlayerTurn     Phase = "player_turn"
	PhaseDealerTurn     Phase = "dealer_turn"
	PhaseSettlement     Phase = "settlement"
)

func (p Phase) String() string { return string(p) }

// HandStatus tracks a player hand through the round.
type HandStatus string

const (
	StatusPlaying   HandStatus = "playing"
	StatusStand     HandStatus = "stand"
	StatusBust      HandStatus = "bust"
	StatusBlackjack HandStatus = "blackjack"
	StatusSurrender HandStatus = "surrender"
	StatusSettled   HandStatus = "settled"
)

// Outcome is how a single hand was paid.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeBlackjack Outcome = "blackjack"
	OutcomePush      Outcome = "push"
	OutcomeLose      Outcome = "lose"
	OutcomeSurrender Outcome = "surrender"
)

// Result maps a hand outcome onto the coarser history result.
func (o Outcome) Result() history.Result {
	switch o {
	case OutcomeWin, OutcomeBlackjack:
		return history.ResultWin
	case OutcomePush:
		return history.ResultPush
	case OutcomeSurrender:
		return history.ResultSurrender
	default:
		return history.ResultLose
	}
}

// Hand is one player hand. Bet is the amount currently at stake on it,
// including any double.
type Hand struct {
	Cards     []deck.Card `json:"cards"`
	Bet       int         `json:"bet"`
	Status    HandStatus  `json:"status"`
	Doubled   bool        `json:"doubled,omitempty"`
	SplitAces bool        `json:"split_aces,omitempty"`
	Refund    int         `json:"refund,omitempty"`
	Outcome   Outcome     `json:"outcome,omitempty"`
	Payout    int         `json:"payout,omitempty"`
}

func (h *Hand) Value() int        { return evaluator.Value(h.Cards) }
func (h *Hand) IsSoft() bool      { return evaluator.IsSoft(h.Cards) }
func (h *Hand) IsBust() bool      { return evaluator.IsBust(h.Cards) }
func (h *Hand) IsBlackjack() bool { return evaluator.IsBlackjack(h.Cards) }

func (h *Hand) clone() Hand {
	c := *h
	c.Cards = slices.Clone(h.Cards)
	return c
}

// DealerHand holds the dealer's cards. The second card is the hole card.
type DealerHand struct {
	Cards []deck.Card `json:"cards"`
}

func (d *DealerHand) Value() int        { return evaluator.Value(d.Cards) }
func (d *DealerHand) IsSoft() bool      { return evaluator.IsSoft(d.Cards) }
func (d *DealerHand) IsBlackjack() bool { return evaluator.IsBlackjack(d.Cards) }

// UpCard is the dealer's face-up card.
func (d *DealerHand) UpCard() deck.Card {
	if len(d.Cards) == 0 {
		return deck.Card{}
	}
	return d.Cards[0]
}

// Insurance is the side bet offered against a dealer ace.
type Insurance struct {
	Offered bool `json:"offered"`
	Taken   bool `json:"taken"`
	Stake   int  `json:"stake"`
	Payout  int  `json:"payout"`
}

// Round is the state of one dealt round. After settlement the engine keeps
// the last round, in PhaseIdle, until the next deal.
type Round struct {
	ID             string            `json:"id"`
	HandNumber     int               `json:"hand_number"`
	Bet            int               `json:"bet"`
	Phase          Phase             `json:"phase"`
	PlayerHands    []*Hand           `json:"player_hands"`
	Dealer         DealerHand        `json:"dealer"`
	CurrentHand    int               `json:"current_hand"`
	Insurance      Insurance         `json:"insurance"`
	DealerRevealed bool              `json:"dealer_revealed"`
	Actions        []strategy.Action `json:"actions"`
	StartedAt      time.Time         `json:"started_at"`

	// graded and mistakes count training-mode evaluations.
	graded   int
	mistakes int
}

// Clone returns a deep copy.
func (r *Round) Clone() Round {
	c := *r
	c.PlayerHands = make([]*Hand, len(r.PlayerHands))
	for i, h := range r.PlayerHands {
		hc := h.clone()
		c.PlayerHands[i] = &hc
	}
	c.Dealer.Cards = slices.Clone(r.Dealer.Cards)
	c.Actions = slices.Clone(r.Actions)
	return c
}

func (r *Round) current() *Hand {
	if r.CurrentHand < 0 || r.CurrentHand >= len(r.PlayerHands) {
		return nil
	}
	return r.PlayerHands[r.CurrentHand]
}

// State is the player's view of the table. The dealer's hole card is omitted
// until it has been revealed.
type State struct {
	RoundID       string            `json:"round_id,omitempty"`
	HandNumber    int               `json:"hand_number"`
	Phase         Phase             `json:"phase"`
	Balance       int               `json:"balance"`
	Bet           int               `json:"bet"`
	PlayerHands   []Hand            `json:"player_hands"`
	CurrentHand   int               `json:"current_hand"`
	DealerCards   []deck.Card       `json:"dealer_cards"`
	DealerValue   int               `json:"dealer_value"`
	DealerHidden  bool              `json:"dealer_hidden"`
	Insurance     Insurance         `json:"insurance"`
	Available     []strategy.Action `json:"available"`
	ShoeRemaining int               `json:"shoe_remaining"`
	ShoeTotal     int               `json:"shoe_total"`
}
