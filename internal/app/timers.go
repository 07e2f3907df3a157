package app

import "liverpool/internal/domain"

// TimerKind names the room-level deadlines. Grace deadlines are per seat and
// live on the Seat itself.
type TimerKind int

const (
	TimerTurn TimerKind = iota
	TimerLobby
	TimerMatch
	TimerTeardown
)

// Timing carries every duration the state machine schedules, in seconds.
// Ticks arrive at one per second, so tick arithmetic is second arithmetic.
type Timing struct {
	// TurnSeconds of 0 leaves turns unclocked.
	TurnSeconds     int
	LobbySeconds    int
	MatchSeconds    int
	GraceSeconds    int
	TeardownSeconds int
}

// deadlineSlot is the single accessor for a room's deadline of a given kind,
// so arm/cancel discipline cannot scatter across call sites.
func deadlineSlot(r *domain.Room, kind TimerKind) *int64 {
	switch kind {
	case TimerTurn:
		return &r.Deadlines.Turn
	case TimerLobby:
		return &r.Deadlines.Lobby
	case TimerMatch:
		return &r.Deadlines.Match
	default:
		return &r.Deadlines.Teardown
	}
}

// Arm schedules the timer to fire after seconds ticks. A non-positive duration
// cancels instead, so an unset config value disables the clock.
func Arm(r *domain.Room, kind TimerKind, seconds int, now int64) {
	if seconds <= 0 {
		Cancel(r, kind)
		return
	}
	*deadlineSlot(r, kind) = now + int64(seconds)
}

// Cancel disarms the timer.
func Cancel(r *domain.Room, kind TimerKind) {
	*deadlineSlot(r, kind) = 0
}

// Due reports whether the timer is armed and has reached its deadline. A fired
// timer whose guard state has already advanced simply never reads as due
// again, because every transition cancels or re-arms it here.
func Due(r *domain.Room, kind TimerKind, now int64) bool {
	d := *deadlineSlot(r, kind)
	return d != 0 && now >= d
}
