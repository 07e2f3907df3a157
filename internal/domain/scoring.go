package domain

// CardPoints returns the penalty value of a card left in hand at hand end.
func CardPoints(c Card) int {
	switch {
	case c.Rank == Joker:
		return 50
	case c.Rank == Two:
		return 20
	case c.Rank >= 3 && c.Rank <= 9:
		return 5
	case c.Rank == 10, c.Rank == Jack, c.Rank == Queen, c.Rank == King:
		return 10
	case c.Rank == Ace:
		return 15
	}
	return 0
}

// ScoreHand sums the penalty points for every card still in a hand.
// Going out with an empty hand scores zero.
func ScoreHand(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += CardPoints(c)
	}
	return total
}
