package app

import (
	"testing"

	"liverpool/internal/domain"
)

func TestTurnTimeoutPlaysOutTheTurn(t *testing.T) {
	s := newTestService()
	room := playingRoom(t, s, "p1", "p2")
	handBefore := len(room.Seats[0].Hand)

	if evs := s.OnTurnTimeout(room, 29); evs != nil {
		t.Fatalf("fired before the deadline: %v", kinds(evs))
	}

	events := s.OnTurnTimeout(room, 30)
	if len(events) != 3 {
		t.Fatalf("events %v", kinds(events))
	}
	if events[0].Kind != EventCardDrawn || events[1].Kind != EventCardDiscarded || events[2].Kind != EventTurnEnded {
		t.Fatalf("events %v", kinds(events))
	}
	if !events[2].Payload.(TurnEndedPayload).Forced {
		t.Fatal("timed-out turn not flagged as forced")
	}

	// Draw plus discard nets out to the same hand size.
	if got := len(room.Seats[0].Hand); got != handBefore {
		t.Fatalf("hand size %d, dealt %d", got, handBefore)
	}
	if room.Current != 1 {
		t.Fatalf("current %d", room.Current)
	}
	if room.Deadlines.Turn != 30+30 {
		t.Fatalf("turn clock %d", room.Deadlines.Turn)
	}
	if n := domain.CountCards(room); n != domain.DoubleDeckSize {
		t.Fatalf("cards in play %d", n)
	}
}

func TestTurnTimeoutAfterManualDiscardOnlyAdvances(t *testing.T) {
	s := newTestService()
	room := playingRoom(t, s, "p1", "p2")

	if _, err := s.Draw(room, "p1", false, 1); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if _, err := s.Discard(room, "p1", room.Seats[0].Hand[0], 2); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	handAfter := len(room.Seats[0].Hand)

	events := s.OnTurnTimeout(room, 30)
	if len(events) != 1 || events[0].Kind != EventTurnEnded {
		t.Fatalf("events %v", kinds(events))
	}
	if got := len(room.Seats[0].Hand); got != handAfter {
		t.Fatal("timeout touched a hand that already discarded")
	}
}

func TestTurnTimeoutCanGoOut(t *testing.T) {
	s := newTestService()
	room := playingRoom(t, s, "p1", "p2")
	room.Seats[0].Hand = []domain.Card{{Suit: domain.Clubs, Rank: 9}}
	room.Seats[0].HasDrawn = true

	events := s.OnTurnTimeout(room, 30)
	last := events[len(events)-1]
	if last.Kind != EventHandEnded {
		t.Fatalf("events %v", kinds(events))
	}
	if room.Phase != domain.PhaseHandComplete {
		t.Fatalf("phase %s", room.Phase)
	}
}

func TestLobbyTimeoutRearmsWhileSeated(t *testing.T) {
	s := newTestService()
	room := lobbyRoom(t, s, "p1")

	if evs := s.OnLobbyTimeout(room, 119); evs != nil {
		t.Fatalf("fired before the deadline: %v", kinds(evs))
	}
	if evs := s.OnLobbyTimeout(room, 120); evs != nil {
		t.Fatalf("populated lobby closed: %v", kinds(evs))
	}
	if room.Deadlines.Lobby != 120+120 {
		t.Fatalf("lobby clock not re-armed: %d", room.Deadlines.Lobby)
	}
}

func TestLobbyTimeoutClosesEmptyRoom(t *testing.T) {
	s := newTestService()
	room := s.NewRoom(0)

	events := s.OnLobbyTimeout(room, 120)
	if len(events) != 1 || events[0].Kind != EventRoomClosed {
		t.Fatalf("events %v", kinds(events))
	}
	if events[0].Payload.(RoomClosedPayload).Reason != "lobby_expired" {
		t.Fatalf("payload %+v", events[0].Payload)
	}
	if room.Deadlines.Lobby != 0 {
		t.Fatal("lobby clock still armed")
	}
}

func TestMatchTimeoutEndsEverything(t *testing.T) {
	s := newTestService()
	room := playingRoom(t, s, "p1", "p2")
	room.Seats[0].TotalScore = 20

	events := s.OnMatchTimeout(room, 1800)
	got := kinds(events)
	if len(got) != 2 || got[0] != EventHandEnded || got[1] != EventMatchEnded {
		t.Fatalf("events %v", got)
	}
	if events[0].Payload.(HandEndedPayload).Reason != "time" {
		t.Fatalf("hand payload %+v", events[0].Payload)
	}
	if events[1].Payload.(MatchEndedPayload).Reason != "time" {
		t.Fatalf("match payload %+v", events[1].Payload)
	}
	if room.Phase != domain.PhaseMatchComplete {
		t.Fatalf("phase %s", room.Phase)
	}

	// Already complete: the clock is gone, a later tick is silent.
	if evs := s.OnMatchTimeout(room, 1801); evs != nil {
		t.Fatalf("fired twice: %v", kinds(evs))
	}
}

func TestDisconnectGraceFlow(t *testing.T) {
	s := newTestService()
	room := playingRoom(t, s, "p1", "p2")

	if s.MarkDisconnected(room, "ghost", 10) {
		t.Fatal("spectator marked disconnected")
	}
	if !s.MarkDisconnected(room, "p2", 10) {
		t.Fatal("seated player not marked")
	}
	if room.Seats[1].GraceDeadline != 10+60 {
		t.Fatalf("grace deadline %d", room.Seats[1].GraceDeadline)
	}

	if due := s.DueGraceSeats(room, 69); len(due) != 0 {
		t.Fatalf("due before the window: %v", due)
	}

	// A resume inside the window clears the clock.
	if !s.MarkResumed(room, "p2") {
		t.Fatal("resume failed")
	}
	if evs := s.OnGraceTimeout(room, "p2", 70); evs != nil {
		t.Fatalf("fired after resume: %v", kinds(evs))
	}

	// Dropping again and staying away forfeits.
	s.MarkDisconnected(room, "p2", 100)
	due := s.DueGraceSeats(room, 160)
	if len(due) != 1 || due[0] != "p2" {
		t.Fatalf("due %v", due)
	}
	events := s.OnGraceTimeout(room, "p2", 160)
	got := kinds(events)
	if len(got) != 2 || got[0] != EventSeatLeft || got[1] != EventMatchEnded {
		t.Fatalf("events %v", got)
	}
	if room.Phase != domain.PhaseMatchComplete {
		t.Fatalf("phase %s", room.Phase)
	}
}

func TestGraceTimeoutInLobbyJustFreesTheSeat(t *testing.T) {
	s := newTestService()
	room := lobbyRoom(t, s, "p1", "p2")

	s.MarkDisconnected(room, "p2", 0)
	events := s.OnGraceTimeout(room, "p2", 60)
	if len(events) != 1 || events[0].Kind != EventSeatLeft {
		t.Fatalf("events %v", kinds(events))
	}
	if len(room.Seats) != 1 || room.Phase != domain.PhaseLobby {
		t.Fatalf("seats %d phase %s", len(room.Seats), room.Phase)
	}
}

func TestArmCancelDue(t *testing.T) {
	room := domain.NewRoom()

	Arm(room, TimerTurn, 30, 100)
	if Due(room, TimerTurn, 129) {
		t.Fatal("due early")
	}
	if !Due(room, TimerTurn, 130) {
		t.Fatal("not due at the deadline")
	}

	Cancel(room, TimerTurn)
	if Due(room, TimerTurn, 1000) {
		t.Fatal("due after cancel")
	}

	// A non-positive duration disarms rather than arming at now.
	Arm(room, TimerTurn, 0, 100)
	if Due(room, TimerTurn, 1000) {
		t.Fatal("zero-duration arm left the clock running")
	}
}
