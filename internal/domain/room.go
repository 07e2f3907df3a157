package domain

// Phase represents the lifecycle stage of a room.
type Phase string

const (
	// PhaseLobby is the pre-match state where seats are taken and freed.
	PhaseLobby Phase = "lobby"
	// PhasePlaying is the active turn loop within a hand.
	PhasePlaying Phase = "playing"
	// PhaseHandComplete sits between hands: scores tallied, next deal pending.
	PhaseHandComplete Phase = "hand_complete"
	// PhaseMatchComplete is reached after round six, or on forfeit/time-out;
	// the room tears down after a grace window.
	PhaseMatchComplete Phase = "match_complete"
)

// SeatCapacity is the authoritative seat limit, applied on every join path.
const SeatCapacity = 6

// Seat holds one player's state within a room. Seat order in Room.Seats is
// turn order.
type Seat struct {
	UserID      string
	DisplayName string

	Hand []Card

	// Per-turn flags, reset when the turn passes to this seat.
	HasDrawn     bool
	HasDiscarded bool

	Groups []Meld
	Runs   []Meld

	TotalScore int
	Ready      bool

	// GraceDeadline is the tick by which a dropped connection must resume,
	// or 0 while connected.
	GraceDeadline int64
}

// LaidComplete reports whether the seat has met the round's meld quota and may
// hit existing melds.
func (s *Seat) LaidComplete(rule RoundRule) bool {
	return len(s.Groups) >= rule.Groups && len(s.Runs) >= rule.Runs
}

// MeldsOf returns the seat's melds of one kind.
func (s *Seat) MeldsOf(kind MeldKind) []Meld {
	if kind == GroupMeld {
		return s.Groups
	}
	return s.Runs
}

// Deadlines carries the room's tick-based timers; 0 means disarmed.
type Deadlines struct {
	Turn     int64
	Lobby    int64
	Match    int64
	Teardown int64
}

// Room is the authoritative mutable state of one match room. All mutation
// happens in the app service, one action at a time.
type Room struct {
	Phase Phase
	Round int

	// Seats in turn order; Current indexes the turn holder. Current is only
	// meaningful while Seats is non-empty.
	Seats   []*Seat
	Current int

	DrawPile    Pile
	DiscardPile Pile

	// LastScores maps user id to the penalty scored in the most recently
	// completed hand.
	LastScores map[string]int

	Deadlines Deadlines
}

// NewRoom creates an empty room in the lobby phase.
func NewRoom() *Room {
	return &Room{Phase: PhaseLobby}
}

// SeatIndexOf returns the seat index for a user id, or -1.
func (r *Room) SeatIndexOf(userID string) int {
	for i, s := range r.Seats {
		if s.UserID == userID {
			return i
		}
	}
	return -1
}

// CurrentSeat returns the turn holder, or nil when no one is seated.
func (r *Room) CurrentSeat() *Seat {
	if len(r.Seats) == 0 || r.Current < 0 || r.Current >= len(r.Seats) {
		return nil
	}
	return r.Seats[r.Current]
}

// NextIndex is the single place circular turn arithmetic lives.
func (r *Room) NextIndex(i int) int {
	if len(r.Seats) == 0 {
		return 0
	}
	return (i + 1) % len(r.Seats)
}

// RemoveSeat splices a seat out and renumbers Current so the turn pointer
// never desynchronizes from the seat list.
func (r *Room) RemoveSeat(i int) {
	if i < 0 || i >= len(r.Seats) {
		return
	}
	r.Seats = append(r.Seats[:i], r.Seats[i+1:]...)
	if len(r.Seats) == 0 {
		r.Current = 0
		return
	}
	if r.Current > i {
		r.Current--
	}
	if r.Current >= len(r.Seats) {
		r.Current = 0
	}
}

// CountCards tallies the multiset size across every hand, every laid meld and
// both piles. For any reachable in-hand state it must equal DoubleDeckSize.
func CountCards(r *Room) int {
	n := r.DrawPile.Size() + r.DiscardPile.Size()
	for _, s := range r.Seats {
		n += len(s.Hand)
		for _, m := range s.Groups {
			n += len(m.Cards)
		}
		for _, m := range s.Runs {
			n += len(m.Cards)
		}
	}
	return n
}
