package app

import (
	"fmt"

	"liverpool/internal/domain"
)

// Timer fire handlers. Each one re-checks its guard state first: a tick that
// arrives after the guarded event already happened must no-op, never error.

// OnTurnTimeout plays out an expired turn: draw from the pile if the seat has
// not drawn, discard an arbitrary card (top of hand) if one remains, then
// advance exactly as a normal end of turn.
func (s *Service) OnTurnTimeout(room *domain.Room, now int64) []Event {
	if room.Phase != domain.PhasePlaying || !Due(room, TimerTurn, now) {
		return nil
	}
	seat := room.CurrentSeat()
	if seat == nil {
		Cancel(room, TimerTurn)
		return nil
	}

	var events []Event
	if !seat.HasDrawn {
		if c, err := s.drawFromStock(room); err == nil {
			seat.Hand = append(seat.Hand, c)
			seat.HasDrawn = true
			events = append(events, Event{
				Kind:       EventCardDrawn,
				Payload:    CardDrawnPayload{UserID: seat.UserID, Card: c},
				Line:       fmt.Sprintf("%s ran out of time and drew automatically", seat.DisplayName),
				Recipients: []string{seat.UserID},
			})
		}
	}

	if !seat.HasDiscarded && len(seat.Hand) > 0 {
		card := seat.Hand[len(seat.Hand)-1]
		seat.Hand = seat.Hand[:len(seat.Hand)-1]
		room.DiscardPile = append(room.DiscardPile, card)
		seat.HasDiscarded = true
		events = append(events, Event{
			Kind:    EventCardDiscarded,
			Payload: CardDiscardedPayload{UserID: seat.UserID, Card: card},
			Line:    fmt.Sprintf("%s discarded %s on time-out", seat.DisplayName, card),
		})
		if len(seat.Hand) == 0 {
			return append(events, s.finishHand(room, "went_out", seat.UserID, now)...)
		}
	}

	return append(events, s.advanceTurn(room, seat, true, now)...)
}

// OnLobbyTimeout closes an empty lobby. A lobby with anyone seated re-arms
// for another interval: populated lobbies never auto-close, only an explicit
// close or a start ends them.
func (s *Service) OnLobbyTimeout(room *domain.Room, now int64) []Event {
	if room.Phase != domain.PhaseLobby || !Due(room, TimerLobby, now) {
		return nil
	}
	if len(room.Seats) > 0 {
		Arm(room, TimerLobby, s.timing.LobbySeconds, now)
		return nil
	}
	Cancel(room, TimerLobby)
	return []Event{{
		Kind:    EventRoomClosed,
		Payload: RoomClosedPayload{Reason: "lobby_expired"},
		Line:    "the lobby expired with no one seated",
	}}
}

// OnMatchTimeout force-completes the current hand with scores as they stand
// and ends the match.
func (s *Service) OnMatchTimeout(room *domain.Room, now int64) []Event {
	if !Due(room, TimerMatch, now) {
		return nil
	}
	var events []Event
	if room.Phase == domain.PhasePlaying {
		events = s.finishHand(room, "time", "", now)
	}
	if room.Phase == domain.PhaseLobby || room.Phase == domain.PhaseMatchComplete {
		Cancel(room, TimerMatch)
		return events
	}
	return append(events, s.endMatch(room, "time", now)...)
}

// OnGraceTimeout vacates a seat whose connection never resumed, with full
// leave semantics: an active hand ends by forfeit.
func (s *Service) OnGraceTimeout(room *domain.Room, userID string, now int64) []Event {
	idx := room.SeatIndexOf(userID)
	if idx == -1 {
		return nil
	}
	seat := room.Seats[idx]
	if seat.GraceDeadline == 0 || now < seat.GraceDeadline {
		return nil
	}
	seat.GraceDeadline = 0
	events, err := s.LeaveSeat(room, userID, now)
	if err != nil {
		return nil
	}
	return events
}

// MarkDisconnected arms a seat's reconnect grace window. No-op for
// spectators and for rooms already torn down.
func (s *Service) MarkDisconnected(room *domain.Room, userID string, now int64) bool {
	idx := room.SeatIndexOf(userID)
	if idx == -1 {
		return false
	}
	room.Seats[idx].GraceDeadline = now + int64(s.timing.GraceSeconds)
	return true
}

// MarkResumed clears a seat's grace window after a successful reconnect.
func (s *Service) MarkResumed(room *domain.Room, userID string) bool {
	idx := room.SeatIndexOf(userID)
	if idx == -1 {
		return false
	}
	room.Seats[idx].GraceDeadline = 0
	return true
}

// DueGraceSeats lists the user ids whose grace window has expired.
func (s *Service) DueGraceSeats(room *domain.Room, now int64) []string {
	var due []string
	for _, seat := range room.Seats {
		if seat.GraceDeadline != 0 && now >= seat.GraceDeadline {
			due = append(due, seat.UserID)
		}
	}
	return due
}
