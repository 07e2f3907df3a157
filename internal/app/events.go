package app

import "liverpool/internal/domain"

// EventKind identifies emitted room events for gateway dispatch.
type EventKind string

const (
	EventSeatTaken     EventKind = "seat_taken"
	EventSeatLeft      EventKind = "seat_left"
	EventReadySet      EventKind = "ready_set"
	EventMatchStarted  EventKind = "match_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventCardDrawn     EventKind = "card_drawn"
	EventCardDiscarded EventKind = "card_discarded"
	EventTurnEnded     EventKind = "turn_ended"
	EventDiscardGiven  EventKind = "discard_given"
	EventMeldLaid      EventKind = "meld_laid"
	EventMeldHit       EventKind = "meld_hit"
	EventHandEnded     EventKind = "hand_ended"
	EventMatchEnded    EventKind = "match_ended"
	EventLobbyExtended EventKind = "lobby_extended"
	EventRoomClosed    EventKind = "room_closed"
)

// Event is a room event with an advisory human-readable line and optional
// targeted recipients. Empty Recipients means broadcast to the whole room.
type Event struct {
	Kind       EventKind
	Payload    any
	Line       string
	Recipients []string
}

type SeatTakenPayload struct {
	UserID      string `json:"user_id"`
	SeatIndex   int    `json:"seat_index"`
	DisplayName string `json:"display_name"`
}

type SeatLeftPayload struct {
	UserID    string `json:"user_id"`
	SeatIndex int    `json:"seat_index"`
	Forfeit   bool   `json:"forfeit"`
}

type ReadySetPayload struct {
	UserID string `json:"user_id"`
	Ready  bool   `json:"ready"`
}

type MatchStartedPayload struct {
	Round int `json:"round"`
}

// HandDealtPayload is delivered privately to its seat.
type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Round  int           `json:"round"`
	Hand   []domain.Card `json:"hand"`
}

// CardDrawnPayload carries the drawn card only to the drawing seat; everyone
// else learns the source pile from the event line and the snapshot.
type CardDrawnPayload struct {
	UserID      string      `json:"user_id"`
	FromDiscard bool        `json:"from_discard"`
	Card        domain.Card `json:"card"`
}

type CardDiscardedPayload struct {
	UserID string      `json:"user_id"`
	Card   domain.Card `json:"card"`
}

type TurnEndedPayload struct {
	UserID    string `json:"user_id"`
	NextIndex int    `json:"next_index"`
	Forced    bool   `json:"forced"`
}

// DiscardGivenPayload is delivered privately to the receiving seat with the
// two cards it gained.
type DiscardGivenPayload struct {
	FromUserID string        `json:"from_user_id"`
	ToUserID   string        `json:"to_user_id"`
	Cards      []domain.Card `json:"cards"`
}

type MeldLaidPayload struct {
	UserID       string          `json:"user_id"`
	Kind         domain.MeldKind `json:"kind"`
	Cards        []domain.Card   `json:"cards"`
	LaidComplete bool            `json:"laid_complete"`
}

type MeldHitPayload struct {
	UserID      string          `json:"user_id"`
	TargetIndex int             `json:"target_index"`
	Kind        domain.MeldKind `json:"kind"`
	MeldIndex   int             `json:"meld_index"`
	Cards       []domain.Card   `json:"cards"`
}

type HandEndedPayload struct {
	Round      int            `json:"round"`
	Reason     string         `json:"reason"` // went_out or time
	WentOutBy  string         `json:"went_out_by,omitempty"`
	HandScores map[string]int `json:"hand_scores"`
	Totals     map[string]int `json:"totals"`
}

type MatchEndedPayload struct {
	Reason      string           `json:"reason"` // finished, forfeit or time
	WinnerID    string           `json:"winner_id"`
	FinalScores map[string]int   `json:"final_scores"`
	Settlement  map[string]int64 `json:"settlement"`
}

type LobbyExtendedPayload struct {
	UserID  string `json:"user_id"`
	Seconds int    `json:"seconds"`
}

type RoomClosedPayload struct {
	Reason string `json:"reason"`
}
