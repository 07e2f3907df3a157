package domain

import (
	"math/rand"
	"strconv"
)

// Suit identifies one of the four standard suits. A Joker carries no suit.
type Suit string

const (
	Clubs    Suit = "C"
	Diamonds Suit = "D"
	Hearts   Suit = "H"
	Spades   Suit = "S"
)

// suitOrder is the canonical display order: Clubs < Diamonds < Hearts < Spades.
var suitOrder = map[Suit]int{Clubs: 0, Diamonds: 1, Hearts: 2, Spades: 3}

// Rank is the face value of a card. Numeric ranks use their own value,
// court cards continue upward, and the Joker sits outside the ladder.
type Rank int

const (
	Joker Rank = 0
	Two   Rank = 2
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// Card is a single card from the double deck. A Joker has an empty suit.
type Card struct {
	Suit Suit `json:"suit,omitempty"`
	Rank Rank `json:"rank"`
}

// String renders the card for event lines, e.g. "QH", "10C" or "Joker".
func (c Card) String() string {
	if c.Rank == Joker {
		return "Joker"
	}
	names := map[Rank]string{Jack: "J", Queen: "Q", King: "K", Ace: "A"}
	name, ok := names[c.Rank]
	if !ok {
		name = strconv.Itoa(int(c.Rank))
	}
	return name + string(c.Suit)
}

// IsWild reports whether the card substitutes freely in melds.
// Jokers and every two are wild.
func (c Card) IsWild() bool {
	return c.Rank == Joker || c.Rank == Two
}

// RunOrdinal returns the card's position on the run ladder (3..14, Ace high).
// Only meaningful for non-wild cards; a two never appears non-wild in a run.
func (c Card) RunOrdinal() int {
	return int(c.Rank)
}

const (
	// RunOrdinalMin and RunOrdinalMax bound the run ladder: 3 up to Ace (14).
	RunOrdinalMin = 3
	RunOrdinalMax = 14

	// DoubleDeckSize is the fixed card count for every hand: two 54-card decks.
	DoubleDeckSize = 108
)

// NewDoubleDeck builds the ordered 108-card source: two standard decks of 52
// ranked cards plus 2 Jokers each.
func NewDoubleDeck() []Card {
	deck := make([]Card, 0, DoubleDeckSize)
	for copies := 0; copies < 2; copies++ {
		for _, s := range []Suit{Clubs, Diamonds, Hearts, Spades} {
			for r := Two; r <= Ace; r++ {
				deck = append(deck, Card{Suit: s, Rank: r})
			}
		}
		deck = append(deck, Card{Rank: Joker}, Card{Rank: Joker})
	}
	return deck
}

// ShuffleCards permutes cards in place using the provided rng.
func ShuffleCards(rng *rand.Rand, cards []Card) {
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

// Pile is an ordered stack of cards; the last element is the top.
type Pile []Card

// DrawTop removes and returns the top card. ok is false when the pile is empty.
func (p *Pile) DrawTop() (Card, bool) {
	if len(*p) == 0 {
		return Card{}, false
	}
	top := (*p)[len(*p)-1]
	*p = (*p)[:len(*p)-1]
	return top, true
}

// Top returns the top card without removing it.
func (p Pile) Top() (Card, bool) {
	if len(p) == 0 {
		return Card{}, false
	}
	return p[len(p)-1], true
}

// Size returns the number of cards remaining.
func (p Pile) Size() int {
	return len(p)
}

// PickAt returns the cards at the given hand positions without mutating the
// hand. ok is false when any position is out of range or repeated.
func PickAt(hand []Card, positions []int) ([]Card, bool) {
	seen := make(map[int]bool, len(positions))
	picked := make([]Card, 0, len(positions))
	for _, pos := range positions {
		if pos < 0 || pos >= len(hand) || seen[pos] {
			return nil, false
		}
		seen[pos] = true
		picked = append(picked, hand[pos])
	}
	return picked, true
}

// RemoveAt returns a new hand with the given positions spliced out.
// Callers must have validated positions via PickAt first.
func RemoveAt(hand []Card, positions []int) []Card {
	drop := make(map[int]bool, len(positions))
	for _, pos := range positions {
		drop[pos] = true
	}
	out := make([]Card, 0, len(hand)-len(positions))
	for i, c := range hand {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}

// RemoveCard removes the first card matching suit and rank from a hand.
// ok is false when the hand does not contain the card.
func RemoveCard(hand []Card, card Card) ([]Card, bool) {
	for i, c := range hand {
		if c == card {
			out := make([]Card, 0, len(hand)-1)
			out = append(out, hand[:i]...)
			out = append(out, hand[i+1:]...)
			return out, true
		}
	}
	return hand, false
}
