package strategy

import (
	"testing"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/evaluator"
	"github.com/stretchr/testify/assert"
)

func card(s string) deck.Card {
	return deck.MustParseCards(s)[0]
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name   string
		cards  string
		upcard string
		opts   Options
		want   Action
		code   Code
	}{
		{"hard 16 vs 10 surrenders", "Ts6h", "Kd", AllowAll, Surrender, CodeSurrenderOrHit},
		{"hard 16 vs 10 without surrender hits", "Ts6h", "Kd", Options{CanDouble: true}, Hit, CodeSurrenderOrHit},
		{"hard 11 vs 6 doubles", "5s6h", "6d", AllowAll, Double, CodeDoubleOrHit},
		{"hard 11 after three cards hits", "2s3h6d", "6d", Options{}, Hit, CodeDoubleOrHit},
		{"hard 12 vs 4 stands", "Ts2h", "4d", AllowAll, Stand, CodeStand},
		{"hard 17 vs ace surrenders", "Ts7h", "Ad", AllowAll, Surrender, CodeSurrenderOrStand},
		{"hard 17 vs ace stands without surrender", "Ts7h", "Ad", Options{}, Stand, CodeSurrenderOrStand},
		{"soft 18 vs 6 doubles", "As7h", "6d", AllowAll, Double, CodeDoubleOrStand},
		{"soft 18 vs 6 stands without double", "As7h", "6d", Options{}, Stand, CodeDoubleOrStand},
		{"soft 18 vs 9 hits", "As7h", "9d", AllowAll, Hit, CodeHit},
		{"soft 19 stands", "As8h", "6d", AllowAll, Stand, CodeStand},
		{"eights always split", "8s8h", "Ad", AllowAll, Split, CodeSplit},
		{"aces always split", "AsAh", "Td", AllowAll, Split, CodeSplit},
		{"tens never split", "KsQs", "6d", AllowAll, Stand, CodeStand},
		{"mixed tens are not a pair", "KsTs", "6d", AllowAll, Stand, CodeStand},
		{"fives play as ten", "5s5h", "9d", AllowAll, Double, CodeDoubleOrHit},
		{"twos vs 2 need DAS", "2s2h", "2d", Options{CanSplit: true}, Hit, CodeSplitIfDAS},
		{"twos vs 2 with DAS", "2s2h", "2d", Options{CanSplit: true, DoubleAfterSplit: true}, Split, CodeSplitIfDAS},
		{"unsplittable eights play hard 16", "8s8h", "Td", Options{}, Hit, CodeSurrenderOrHit},
		{"multi-card soft total", "As2h3d", "5d", AllowAll, Double, CodeDoubleOrHit},
		{"soft 21 stands", "As8h2d", "5d", AllowAll, Stand, CodeStand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend(deck.MustParseCards(tt.cards), card(tt.upcard), tt.opts)
			assert.Equal(t, tt.want, rec.Action)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, rec.Explanation)
		})
	}
}

func TestRecommendHandType(t *testing.T) {
	rec := Recommend(deck.MustParseCards("As6h"), card("7d"), AllowAll)
	assert.Equal(t, evaluator.Soft, rec.HandType)
	assert.Equal(t, 17, rec.Total)

	rec = Recommend(deck.MustParseCards("9s9h"), card("7d"), AllowAll)
	assert.Equal(t, evaluator.Pair, rec.HandType)
	assert.Equal(t, Stand, rec.Action)
}

func TestRecommendEmptyHand(t *testing.T) {
	rec := Recommend(nil, card("7d"), AllowAll)
	assert.Equal(t, Hit, rec.Action)
}

func TestEvaluate(t *testing.T) {
	cards := deck.MustParseCards("Ts6h")
	up := card("Kd")

	eval := Evaluate(Surrender, cards, up, AllowAll)
	assert.True(t, eval.Optimal)
	assert.False(t, eval.Wrong)

	eval = Evaluate(Stand, cards, up, AllowAll)
	assert.False(t, eval.Optimal)
	assert.True(t, eval.Suboptimal, "stand and surrender are both defensive")
	assert.Equal(t, Surrender, eval.Recommended)

	eval = Evaluate(Double, cards, up, AllowAll)
	assert.True(t, eval.Wrong)
	assert.False(t, eval.Suboptimal)
}

func TestDealerColumn(t *testing.T) {
	assert.Equal(t, 0, dealerColumn(card("2s")))
	assert.Equal(t, 7, dealerColumn(card("9s")))
	assert.Equal(t, 8, dealerColumn(card("Ts")))
	assert.Equal(t, 8, dealerColumn(card("Qs")))
	assert.Equal(t, 9, dealerColumn(card("As")))
}
