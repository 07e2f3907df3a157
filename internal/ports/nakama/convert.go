package nakama

import (
	"liverpool/internal/app"
	"liverpool/internal/domain"
)

// Inbound message payloads. Payloads ride as JSON on the match data channel,
// keyed by opcode.

type takeSeatRequest struct {
	DisplayName string `json:"display_name"`
}

type setReadyRequest struct {
	Ready bool `json:"ready"`
}

type drawRequest struct {
	FromDiscard bool `json:"from_discard"`
}

type discardRequest struct {
	Card domain.Card `json:"card"`
}

type giveDiscardRequest struct {
	TargetIndex int `json:"target_index"`
}

type layMeldRequest struct {
	Positions []int `json:"positions"`
}

type hitRequest struct {
	TargetIndex int             `json:"target_index"`
	Kind        domain.MeldKind `json:"kind"`
	MeldIndex   int             `json:"meld_index"`
	Positions   []int           `json:"positions"`
}

type extendLobbyRequest struct {
	Seconds int `json:"seconds"`
}

// Outbound envelopes.

type eventEnvelope struct {
	Line    string `json:"line"`
	Payload any    `json:"payload,omitempty"`
}

type actionErrorEvent struct {
	Op     int64  `json:"op"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// eventOpCode maps an app event kind to its wire opcode.
func eventOpCode(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventSeatTaken:
		return OpSeatTaken, true
	case app.EventSeatLeft:
		return OpSeatLeft, true
	case app.EventReadySet:
		return OpReadySet, true
	case app.EventMatchStarted:
		return OpMatchStarted, true
	case app.EventHandDealt:
		return OpHandDealt, true
	case app.EventCardDrawn:
		return OpCardDrawn, true
	case app.EventCardDiscarded:
		return OpCardDiscarded, true
	case app.EventTurnEnded:
		return OpTurnEnded, true
	case app.EventDiscardGiven:
		return OpDiscardGiven, true
	case app.EventMeldLaid:
		return OpMeldLaid, true
	case app.EventMeldHit:
		return OpMeldHit, true
	case app.EventHandEnded:
		return OpHandEnded, true
	case app.EventMatchEnded:
		return OpMatchEnded, true
	case app.EventLobbyExtended:
		return OpLobbyExtended, true
	case app.EventRoomClosed:
		return OpRoomClosed, true
	}
	return 0, false
}
