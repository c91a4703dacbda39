// Package strategy encodes multi-deck basic strategy for blackjack and grades
// player decisions against it.
package strategy

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/evaluator"
)

// Action is a player decision
type Action string

const (
	Hit       Action = "hit"
	Stand     Action = "stand"
	Double    Action = "double"
	Split     Action = "split"
	Surrender Action = "surrender"
)

// String returns the string representation of an action
func (a Action) String() string {
	return string(a)
}

// Code is a raw basic strategy table entry.
type Code string

const (
	CodeHit              Code = "H"
	CodeStand            Code = "S"
	CodeDoubleOrHit      Code = "D"
	CodeDoubleOrStand    Code = "DS"
	CodeSplit            Code = "P"
	CodeSplitIfDAS       Code = "SP"
	CodeSurrenderOrHit   Code = "SU"
	CodeSurrenderOrStand Code = "US"
)

var explanations = map[Code]string{
	CodeHit:              "Basic strategy says hit.",
	CodeStand:            "Basic strategy says stand.",
	CodeDoubleOrHit:      "Doubling is the most profitable play here.",
	CodeDoubleOrStand:    "Double if allowed, otherwise stand.",
	CodeSplit:            "Splitting this pair maximises expected return.",
	CodeSplitIfDAS:       "Split if doubling after split is allowed, otherwise hit.",
	CodeSurrenderOrHit:   "Surrender cuts the expected loss, otherwise hit.",
	CodeSurrenderOrStand: "Surrender if allowed, otherwise stand.",
}

// Options describes what the player may do right now.
type Options struct {
	CanDouble        bool
	CanSplit         bool
	CanSurrender     bool
	DoubleAfterSplit bool
}

// AllowAll permits every action; used when grading in the abstract.
var AllowAll = Options{CanDouble: true, CanSplit: true, CanSurrender: true, DoubleAfterSplit: true}

// Recommendation is the basic strategy play for a hand.
type Recommendation struct {
	Action      Action
	Code        Code
	HandType    evaluator.HandType
	Total       int
	Explanation string
}

// Recommend looks up the basic strategy play for cards against the dealer's upcard.
func Recommend(cards []deck.Card, upcard deck.Card, opts Options) Recommendation {
	if len(cards) == 0 {
		return Recommendation{Action: Hit, Code: CodeHit, Explanation: explanations[CodeHit]}
	}

	col := dealerColumn(upcard)
	class := evaluator.Classify(cards)
	handType := class.Type

	var code Code
	switch {
	case class.Type == evaluator.Pair && opts.CanSplit:
		code = pairTable[pairKey(class.PairRank)][col]
	case evaluator.IsSoft(cards):
		handType = evaluator.Soft
		if row, ok := softTable[class.Total-11]; ok {
			code = row[col]
		} else if class.Total >= 19 {
			code = CodeStand
		} else {
			code = CodeHit
		}
	default:
		handType = evaluator.Hard
		total := min(21, max(5, class.Total))
		code = hardTable[total][col]
	}

	return Recommendation{
		Action:      resolve(code, opts, class.Type == evaluator.Pair),
		Code:        code,
		HandType:    handType,
		Total:       class.Total,
		Explanation: explanations[code],
	}
}

// resolve turns a table code into a concrete action given what is allowed.
func resolve(code Code, opts Options, isPair bool) Action {
	canSplit := opts.CanSplit && isPair
	switch code {
	case CodeStand:
		return Stand
	case CodeDoubleOrHit:
		if opts.CanDouble {
			return Double
		}
		return Hit
	case CodeDoubleOrStand:
		if opts.CanDouble {
			return Double
		}
		return Stand
	case CodeSplit:
		if canSplit {
			return Split
		}
		return Hit
	case CodeSplitIfDAS:
		if canSplit && opts.DoubleAfterSplit {
			return Split
		}
		return Hit
	case CodeSurrenderOrHit:
		if opts.CanSurrender {
			return Surrender
		}
		return Hit
	case CodeSurrenderOrStand:
		if opts.CanSurrender {
			return Surrender
		}
		return Stand
	default:
		return Hit
	}
}

// Evaluation grades a decision against basic strategy.
type Evaluation struct {
	Action      Action
	Recommended Action
	Optimal     bool
	// Suboptimal is set when the action is in the same family as the
	// recommendation (stand vs surrender, hit vs double).
	Suboptimal  bool
	Wrong       bool
	Explanation string
}

// Evaluate compares action with the recommended play.
func Evaluate(action Action, cards []deck.Card, upcard deck.Card, opts Options) Evaluation {
	rec := Recommend(cards, upcard, opts)
	eval := Evaluation{
		Action:      action,
		Recommended: rec.Action,
		Explanation: rec.Explanation,
	}
	if action == rec.Action {
		eval.Optimal = true
		return eval
	}
	eval.Suboptimal = sameFamily(action, rec.Action)
	eval.Wrong = !eval.Suboptimal
	return eval
}

func sameFamily(a, b Action) bool {
	defensive := func(x Action) bool { return x == Stand || x == Surrender }
	aggressive := func(x Action) bool { return x == Hit || x == Double }
	return (defensive(a) && defensive(b)) || (aggressive(a) && aggressive(b))
}

// dealerColumn maps an upcard to a table column: 2..9 → 0..7, ten-value → 8, ace → 9.
func dealerColumn(upcard deck.Card) int {
	switch {
	case upcard.IsAce():
		return 9
	case upcard.Rank >= deck.Ten:
		return 8
	case upcard.Rank >= deck.Two:
		return int(upcard.Rank) - 2
	default:
		return 8
	}
}

func pairKey(r deck.Rank) deck.Rank {
	if r >= deck.Ten && r <= deck.King {
		return deck.Ten
	}
	return r
}
