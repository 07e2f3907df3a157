package domain

// MaxRound is the number of hands in a full match.
const MaxRound = 6

// RoundRule is the per-round deal size and meld quota. A seat must have laid
// at least Groups groups and Runs runs before it may hit existing melds.
type RoundRule struct {
	DealSize int
	Groups   int
	Runs     int
}

var roundRules = map[int]RoundRule{
	1: {DealSize: 7, Groups: 2, Runs: 0},
	2: {DealSize: 8, Groups: 1, Runs: 1},
	3: {DealSize: 9, Groups: 0, Runs: 2},
	4: {DealSize: 10, Groups: 3, Runs: 0},
	5: {DealSize: 11, Groups: 2, Runs: 1},
	6: {DealSize: 12, Groups: 1, Runs: 2},
}

// RoundRuleFor looks up the rule for a round number 1..6. Unknown rounds
// yield a zero rule so callers never trip on a bad round counter.
func RoundRuleFor(round int) RoundRule {
	return roundRules[round]
}
