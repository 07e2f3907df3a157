package app

// MinPlayersToStart defines the minimum number of occupied seats required to
// start a match. Centralized so tests or local runs can adjust the rule in one
// place.
const MinPlayersToStart = 2

// SettlementStake is the chip amount each losing seat pays the match winner.
const SettlementStake = 100
