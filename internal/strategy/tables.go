package strategy

import "github.com/lox/blackjack/internal/deck"

// Columns are dealer upcards 2, 3, 4, 5, 6, 7, 8, 9, 10, A.
type row [10]Code

const (
	h  = CodeHit
	s  = CodeStand
	d  = CodeDoubleOrHit
	ds = CodeDoubleOrStand
	p  = CodeSplit
	sp = CodeSplitIfDAS
	su = CodeSurrenderOrHit
	us = CodeSurrenderOrStand
)

// hardTable is keyed by player total 5..21.
var hardTable = map[int]row{
	5:  {h, h, h, h, h, h, h, h, h, h},
	6:  {h, h, h, h, h, h, h, h, h, h},
	7:  {h, h, h, h, h, h, h, h, h, h},
	8:  {h, h, h, h, h, h, h, h, h, h},
	9:  {h, d, d, d, d, h, h, h, h, h},
	10: {d, d, d, d, d, d, d, d, h, h},
	11: {d, d, d, d, d, d, d, d, d, h},
	12: {h, h, s, s, s, h, h, h, h, h},
	13: {s, s, s, s, s, h, h, h, h, h},
	14: {s, s, s, s, s, h, h, h, h, h},
	15: {s, s, s, s, s, h, h, h, su, h},
	16: {s, s, s, s, s, h, h, su, su, su},
	17: {s, s, s, s, s, s, s, s, s, us},
	18: {s, s, s, s, s, s, s, s, s, s},
	19: {s, s, s, s, s, s, s, s, s, s},
	20: {s, s, s, s, s, s, s, s, s, s},
	21: {s, s, s, s, s, s, s, s, s, s},
}

// softTable is keyed by the non-ace part of the total (A+2 .. A+9).
var softTable = map[int]row{
	2: {h, h, h, d, d, h, h, h, h, h},
	3: {h, h, h, d, d, h, h, h, h, h},
	4: {h, h, d, d, d, h, h, h, h, h},
	5: {h, h, d, d, d, h, h, h, h, h},
	6: {h, d, d, d, d, h, h, h, h, h},
	7: {ds, ds, ds, ds, ds, s, s, h, h, h},
	8: {s, s, s, s, s, s, s, s, s, s},
	9: {s, s, s, s, s, s, s, s, s, s},
}

// pairTable is keyed by pair rank; all ten-value pairs share the Ten row.
var pairTable = map[deck.Rank]row{
	deck.Two:   {sp, sp, p, p, p, p, h, h, h, h},
	deck.Three: {sp, sp, p, p, p, p, h, h, h, h},
	deck.Four:  {h, h, h, sp, sp, h, h, h, h, h},
	deck.Five:  {d, d, d, d, d, d, d, d, h, h},
	deck.Six:   {sp, p, p, p, p, h, h, h, h, h},
	deck.Seven: {p, p, p, p, p, p, h, h, h, h},
	deck.Eight: {p, p, p, p, p, p, p, p, p, p},
	deck.Nine:  {p, p, p, p, p, s, p, p, s, s},
	deck.Ten:   {s, s, s, s, s, s, s, s, s, s},
	deck.Ace:   {p, p, p, p, p, p, p, p, p, p},
}
