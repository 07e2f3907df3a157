package app

// Code classifies every action failure returned to a caller. All of these are
// non-fatal: the room state is left untouched and the code travels back to the
// acting client.
type Code string

const (
	CodeNotFound     Code = "not_found"     // room, seat, meld or card index unresolvable
	CodeNotPlayer    Code = "not_player"    // actor does not own the seat it claims
	CodeTurn         Code = "turn"          // actor is not the turn holder
	CodeAlreadyDrawn Code = "already_drawn" // turn-order violation around the draw
	CodeNeedDraw     Code = "need_draw"     // action requires a completed draw first
	CodeNeedDiscard  Code = "need_discard"  // action requires the discard first
	CodeNeedLaid     Code = "need_laid"     // hitting requires the meld quota met
	CodeCount        Code = "count"         // meld size out of bounds
	CodeLimit        Code = "limit"         // meld quota for this kind already filled
	CodeInvalid      Code = "invalid"       // cards fail the rules engine
	CodeEmpty        Code = "empty"         // pile exhausted with nothing to reshuffle
	CodeInProgress   Code = "in_progress"   // room lifecycle does not allow this now
	CodeFull         Code = "full"          // no free seat
	CodeStarted      Code = "started"       // match already started
)

// Fault is a coded, client-safe action failure.
type Fault struct {
	Code   Code
	Reason string
}

func (f *Fault) Error() string {
	return string(f.Code) + ": " + f.Reason
}

func fault(code Code, reason string) *Fault {
	return &Fault{Code: code, Reason: reason}
}

var (
	ErrNotSeated        = fault(CodeNotPlayer, "actor does not hold a seat here")
	ErrNotYourTurn      = fault(CodeTurn, "it is not this seat's turn")
	ErrAlreadyDrawn     = fault(CodeAlreadyDrawn, "this seat already drew this turn")
	ErrAlreadyDiscarded = fault(CodeAlreadyDrawn, "this seat already discarded this turn")
	ErrNeedDraw         = fault(CodeNeedDraw, "draw a card first")
	ErrNeedDiscard      = fault(CodeNeedDiscard, "discard before ending the turn")
	ErrNeedLaid         = fault(CodeNeedLaid, "meet the round's meld quota before hitting")
	ErrPileEmpty        = fault(CodeEmpty, "the pile is exhausted")
	ErrRoomFull         = fault(CodeFull, "no free seat")
	ErrAlreadyStarted   = fault(CodeStarted, "the match has already started")
	ErrNotInLobby       = fault(CodeInProgress, "only possible in the lobby")
	ErrNotPlaying       = fault(CodeInProgress, "no hand is in progress")
	ErrHandNotComplete  = fault(CodeInProgress, "the hand is not complete")
	ErrTooFewPlayers    = fault(CodeCount, "at least two seated players are required")
	ErrMustKeepOne      = fault(CodeCount, "a card must remain in hand for the discard")
)
