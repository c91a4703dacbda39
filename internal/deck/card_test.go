package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "blackjack",
			input: "AsKh",
			expected: []Card{
				{Rank: Ace, Suit: Spades},
				{Rank: King, Suit: Hearts},
			},
		},
		{
			name:  "ten written both ways",
			input: "Td10c",
			expected: []Card{
				{Rank: Ten, Suit: Diamonds},
				{Rank: Ten, Suit: Clubs},
			},
		},
		{
			name:  "separators and case",
			input: "as, 8H 3d",
			expected: []Card{
				{Rank: Ace, Suit: Spades},
				{Rank: Eight, Suit: Hearts},
				{Rank: Three, Suit: Diamonds},
			},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AsKx",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMustParseCardsPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseCards("invalid") })
}

func TestCardPoints(t *testing.T) {
	tests := []struct {
		card string
		want int
	}{
		{"2s", 2},
		{"9h", 9},
		{"Td", 10},
		{"Jc", 10},
		{"Qs", 10},
		{"Kh", 10},
		{"Ad", 11},
	}
	for _, tt := range tests {
		t.Run(tt.card, func(t *testing.T) {
			c, err := ParseCard(tt.card)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Points())
		})
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♠", NewCard(Ace, Spades).String())
	assert.Equal(t, "10♥", NewCard(Ten, Hearts).String())
	assert.True(t, NewCard(Ten, Hearts).IsRed())
	assert.True(t, NewCard(Queen, Clubs).IsTenValue())
	assert.False(t, NewCard(Ace, Clubs).IsTenValue())
}

func TestCardJSON(t *testing.T) {
	hand := MustParseCards("As10hKd")

	data, err := json.Marshal(hand)
	require.NoError(t, err)
	assert.JSONEq(t, `["As","Th","Kd"]`, string(data))

	var decoded []Card
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, hand, decoded)

	_, err = json.Marshal(Card{Rank: 1, Suit: Spades})
	assert.Error(t, err)
}
