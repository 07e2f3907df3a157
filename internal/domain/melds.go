package domain

import "sort"

// MeldKind distinguishes the two laid meld shapes.
type MeldKind string

const (
	// GroupMeld is three or more cards of one rank.
	GroupMeld MeldKind = "group"
	// RunMeld is four to twelve suited cards in an unbroken ascending sequence.
	RunMeld MeldKind = "run"
)

// Meld is a laid-down group or run on the table.
type Meld struct {
	Kind  MeldKind `json:"kind"`
	Cards []Card   `json:"cards"`
}

const (
	// MinGroupSize is the smallest legal group.
	MinGroupSize = 3
	// MinRunSize and MaxRunSize bound legal runs. Twelve covers the whole
	// 3..Ace ladder.
	MinRunSize = 4
	MaxRunSize = 12
)

// IsValidGroup reports whether cards form a legal group: at least three cards
// with every non-wild card sharing one rank. Wild count is unconstrained,
// including an all-wild group.
func IsValidGroup(cards []Card) bool {
	if len(cards) < MinGroupSize {
		return false
	}
	rank := Rank(-1)
	for _, c := range cards {
		if c.IsWild() {
			continue
		}
		if rank == -1 {
			rank = c.Rank
			continue
		}
		if c.Rank != rank {
			return false
		}
	}
	return true
}

// IsValidRun reports whether cards form a legal run.
func IsValidRun(cards []Card) bool {
	return WhyRunInvalid(cards) == ""
}

// WhyRunInvalid evaluates the run rules in order and returns the first failing
// rule as a client-facing reason, or "" when the cards form a legal run. It is
// the single source of truth for run validity; IsValidRun delegates to it so
// the two can never disagree.
func WhyRunInvalid(cards []Card) string {
	if len(cards) < MinRunSize || len(cards) > MaxRunSize {
		return "a run needs 4 to 12 cards"
	}

	ordinals := make([]int, 0, len(cards))
	suit := Suit("")
	for _, c := range cards {
		if c.IsWild() {
			continue
		}
		if suit == "" {
			suit = c.Suit
		} else if c.Suit != suit {
			return "all non-wild cards in a run must share one suit"
		}
		o := c.RunOrdinal()
		if o < RunOrdinalMin || o > RunOrdinalMax {
			return "only ranks 3 through Ace can anchor a run"
		}
		ordinals = append(ordinals, o)
	}

	// An all-wild selection has no anchors to constrain it.
	if len(ordinals) == 0 {
		return ""
	}

	sort.Ints(ordinals)
	for i := 1; i < len(ordinals); i++ {
		if ordinals[i] == ordinals[i-1] {
			return "a run cannot repeat a rank"
		}
	}

	wildCount := len(cards) - len(ordinals)
	needed := 0
	for i := 1; i < len(ordinals); i++ {
		needed += ordinals[i] - ordinals[i-1] - 1
	}
	remaining := wildCount - needed
	if remaining < 0 {
		return "not enough wilds to fill the gaps in the sequence"
	}

	first, last := ordinals[0], ordinals[len(ordinals)-1]
	maxExtend := (first - RunOrdinalMin) + (RunOrdinalMax - last)
	if remaining > maxExtend {
		return "too many wilds to extend the sequence within 3 to Ace"
	}

	span := last - first + 1
	if span+remaining != len(cards) {
		return "the cards do not settle into one unbroken sequence"
	}
	return ""
}

// ArrangeGroup returns a display ordering for a group: non-wild cards by rank
// then canonical suit order, wilds trailing. Cosmetic only.
func ArrangeGroup(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		wi, wj := out[i].IsWild(), out[j].IsWild()
		if wi != wj {
			return !wi
		}
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return suitOrder[out[i].Suit] < suitOrder[out[j].Suit]
	})
	return out
}

// ArrangeRun reconstructs the canonical ascending sequence for a valid run,
// slotting wilds into the ordinal positions that lack a non-wild card and
// spending leftover wilds on the left extension first. Cosmetic only; callers
// must have validated the run.
func ArrangeRun(cards []Card) []Card {
	anchors := make(map[int]Card)
	wilds := make([]Card, 0, len(cards))
	first, last := RunOrdinalMax+1, RunOrdinalMin-1
	for _, c := range cards {
		if c.IsWild() {
			wilds = append(wilds, c)
			continue
		}
		o := c.RunOrdinal()
		anchors[o] = c
		if o < first {
			first = o
		}
		if o > last {
			last = o
		}
	}
	if len(anchors) == 0 {
		out := make([]Card, len(cards))
		copy(out, cards)
		return out
	}

	takeWild := func() Card {
		w := wilds[0]
		wilds = wilds[1:]
		return w
	}
	internal := 0
	for o := first; o <= last; o++ {
		if _, ok := anchors[o]; !ok {
			internal++
		}
	}
	remaining := len(wilds) - internal
	leftExtend := first - RunOrdinalMin
	if remaining < leftExtend {
		leftExtend = remaining
	}

	out := make([]Card, 0, len(cards))
	for i := 0; i < leftExtend; i++ {
		out = append(out, takeWild())
	}
	for o := first; o <= last; o++ {
		if c, ok := anchors[o]; ok {
			out = append(out, c)
		} else {
			out = append(out, takeWild())
		}
	}
	out = append(out, wilds...)
	return out
}
