package domain

import "testing"

func TestCardPoints(t *testing.T) {
	tests := []struct {
		name string
		card Card
		want int
	}{
		{"joker", Card{Rank: Joker}, 50},
		{"two", Card{Suit: Clubs, Rank: Two}, 20},
		{"three", Card{Suit: Hearts, Rank: 3}, 5},
		{"nine", Card{Suit: Spades, Rank: 9}, 5},
		{"ten", Card{Suit: Hearts, Rank: 10}, 10},
		{"jack", Card{Suit: Diamonds, Rank: Jack}, 10},
		{"queen", Card{Suit: Clubs, Rank: Queen}, 10},
		{"king", Card{Suit: Spades, Rank: King}, 10},
		{"ace", Card{Suit: Spades, Rank: Ace}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CardPoints(tt.card); got != tt.want {
				t.Errorf("CardPoints(%+v) = %d, want %d", tt.card, got, tt.want)
			}
		})
	}
}

func TestScoreHand(t *testing.T) {
	hand := []Card{
		{Rank: Joker},
		{Suit: Clubs, Rank: Two},
		{Suit: Hearts, Rank: 10},
		{Suit: Spades, Rank: Ace},
	}
	if got := ScoreHand(hand); got != 95 {
		t.Fatalf("ScoreHand = %d, want 95", got)
	}
	if got := ScoreHand(nil); got != 0 {
		t.Fatalf("empty hand scores %d, want 0", got)
	}
}
