package domain

import "testing"

func joker() Card               { return Card{Rank: Joker} }
func card(s Suit, r Rank) Card  { return Card{Suit: s, Rank: r} }

func TestIsValidGroup(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		valid bool
	}{
		{
			name:  "three eights",
			cards: []Card{card(Hearts, 8), card(Spades, 8), card(Clubs, 8)},
			valid: true,
		},
		{
			name:  "mixed ranks",
			cards: []Card{card(Hearts, 8), card(Spades, 9), card(Clubs, 8)},
			valid: false,
		},
		{
			name:  "two cards only",
			cards: []Card{card(Hearts, 8), card(Spades, 8)},
			valid: false,
		},
		{
			name:  "wilds substitute",
			cards: []Card{card(Hearts, King), joker(), card(Clubs, Two)},
			valid: true,
		},
		{
			name:  "all wild",
			cards: []Card{joker(), card(Hearts, Two), card(Spades, Two)},
			valid: true,
		},
		{
			name:  "duplicate copies from the double deck",
			cards: []Card{card(Hearts, 8), card(Hearts, 8), card(Clubs, 8), card(Clubs, 8)},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidGroup(tt.cards); got != tt.valid {
				t.Errorf("IsValidGroup() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func runCases() []struct {
	name  string
	cards []Card
	valid bool
} {
	return []struct {
		name  string
		cards []Card
		valid bool
	}{
		{
			name:  "plain four-card run",
			cards: []Card{card(Hearts, 3), card(Hearts, 4), card(Hearts, 5), card(Hearts, 6)},
			valid: true,
		},
		{
			name:  "wild fills the four",
			cards: []Card{card(Hearts, 3), card(Hearts, 5), joker(), card(Hearts, 6)},
			valid: true,
		},
		{
			name:  "too short",
			cards: []Card{card(Hearts, 3), card(Hearts, 4), card(Hearts, 5)},
			valid: false,
		},
		{
			name: "thirteen cards",
			cards: []Card{
				card(Spades, 3), card(Spades, 4), card(Spades, 5), card(Spades, 6),
				card(Spades, 7), card(Spades, 8), card(Spades, 9), card(Spades, 10),
				card(Spades, Jack), card(Spades, Queen), card(Spades, King), card(Spades, Ace),
				joker(),
			},
			valid: false,
		},
		{
			name:  "mixed suits",
			cards: []Card{card(Hearts, 3), card(Spades, 4), card(Hearts, 5), card(Hearts, 6)},
			valid: false,
		},
		{
			name:  "duplicate ordinal",
			cards: []Card{card(Hearts, 3), card(Hearts, 3), card(Hearts, 4), card(Hearts, 5)},
			valid: false,
		},
		{
			name:  "gap too wide for the wilds",
			cards: []Card{card(Hearts, 3), joker(), card(Hearts, 7), card(Hearts, 8)},
			valid: false,
		},
		{
			name:  "wilds blocked at the ace spill into the left extension",
			cards: []Card{card(Hearts, Queen), card(Hearts, King), card(Hearts, Ace), joker(), joker(), joker(), joker()},
			valid: true,
		},
		{
			name:  "leftover wilds extend both ends",
			cards: []Card{joker(), card(Hearts, 5), card(Hearts, 6), card(Hearts, 7), joker()},
			valid: true,
		},
		{
			name:  "two acts as a wild not a rank",
			cards: []Card{card(Hearts, Two), card(Hearts, 4), card(Hearts, 5), card(Hearts, 6)},
			valid: true,
		},
		{
			name:  "all wild",
			cards: []Card{joker(), joker(), card(Clubs, Two), card(Diamonds, Two)},
			valid: true,
		},
		{
			name: "all wild but too long",
			cards: []Card{
				joker(), joker(), joker(), joker(),
				card(Clubs, Two), card(Diamonds, Two), card(Hearts, Two), card(Spades, Two),
				card(Clubs, Two), card(Diamonds, Two), card(Hearts, Two), card(Spades, Two),
				card(Clubs, Two),
			},
			valid: false,
		},
		{
			name: "full ladder with wild ends",
			cards: []Card{
				card(Diamonds, 4), card(Diamonds, 5), card(Diamonds, 6), card(Diamonds, 7),
				card(Diamonds, 8), card(Diamonds, 9), card(Diamonds, 10), card(Diamonds, Jack),
				card(Diamonds, Queen), card(Diamonds, King), joker(), joker(),
			},
			valid: true,
		},
	}
}

func TestIsValidRun(t *testing.T) {
	for _, tt := range runCases() {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidRun(tt.cards); got != tt.valid {
				t.Errorf("IsValidRun() = %v, want %v (reason: %q)", got, tt.valid, WhyRunInvalid(tt.cards))
			}
		})
	}
}

// WhyRunInvalid must agree with IsValidRun on every input: empty reason iff valid.
func TestWhyRunInvalidConsistency(t *testing.T) {
	for _, tt := range runCases() {
		t.Run(tt.name, func(t *testing.T) {
			reason := WhyRunInvalid(tt.cards)
			if (reason == "") != IsValidRun(tt.cards) {
				t.Errorf("WhyRunInvalid %q disagrees with IsValidRun %v", reason, IsValidRun(tt.cards))
			}
			if !tt.valid && reason == "" {
				t.Errorf("invalid run produced no reason")
			}
		})
	}
}

// A valid run's display arrangement must be a permutation of its cards.
func TestArrangeRunRoundTrip(t *testing.T) {
	for _, tt := range runCases() {
		if !tt.valid {
			continue
		}
		t.Run(tt.name, func(t *testing.T) {
			arranged := ArrangeRun(tt.cards)
			if len(arranged) != len(tt.cards) {
				t.Fatalf("arranged length = %d, want %d", len(arranged), len(tt.cards))
			}
			want := make(map[Card]int)
			got := make(map[Card]int)
			for i := range tt.cards {
				want[tt.cards[i]]++
				got[arranged[i]]++
			}
			for c, n := range want {
				if got[c] != n {
					t.Fatalf("card %+v count changed: %d != %d", c, got[c], n)
				}
			}

			// Non-wild cards must land in ascending ordinal order.
			prev := 0
			for _, c := range arranged {
				if c.IsWild() {
					continue
				}
				if o := c.RunOrdinal(); o <= prev {
					t.Fatalf("non-wild ordinals not ascending in %+v", arranged)
				} else {
					prev = o
				}
			}
		})
	}
}

func TestArrangeGroup(t *testing.T) {
	got := ArrangeGroup([]Card{joker(), card(Spades, 8), card(Clubs, 8), card(Hearts, 8)})
	want := []Card{card(Clubs, 8), card(Hearts, 8), card(Spades, 8), joker()}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ArrangeGroup = %+v, want %+v", got, want)
		}
	}
}
