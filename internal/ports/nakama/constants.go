package nakama

const (
	// RpcQuickMatch finds or creates a joinable lobby.
	RpcQuickMatch = "quick_match"
	// RpcListRooms returns the room directory for the lobby browser.
	RpcListRooms = "list_rooms"
	// RpcRecentMatches returns the bounded recent-matches list.
	RpcRecentMatches = "recent_matches"
	// RpcReclaimToken issues a seat-reclaim token for the caller's seat.
	RpcReclaimToken = "reclaim_token"

	// MatchName is the authoritative match handler name registered with Nakama.
	MatchName = "liverpool_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpTakeSeat    int64 = 1
	OpLeaveSeat   int64 = 2
	OpSetReady    int64 = 3
	OpStartMatch  int64 = 4
	OpDraw        int64 = 5
	OpDiscard     int64 = 6
	OpEndTurn     int64 = 7
	OpGiveDiscard int64 = 8
	OpLayGroup    int64 = 9
	OpLayRun      int64 = 10
	OpHit         int64 = 11
	OpNextHand    int64 = 12
	OpExtendLobby int64 = 13
	OpCloseRoom   int64 = 14

	// Server -> Client events
	OpSnapshot      int64 = 101
	OpSeatTaken     int64 = 102
	OpSeatLeft      int64 = 103
	OpReadySet      int64 = 104
	OpMatchStarted  int64 = 105
	OpHandDealt     int64 = 106 // sent privately
	OpCardDrawn     int64 = 107 // sent privately
	OpCardDiscarded int64 = 108
	OpTurnEnded     int64 = 109
	OpDiscardGiven  int64 = 110 // sent privately to the receiver
	OpMeldLaid      int64 = 111
	OpMeldHit       int64 = 112
	OpHandEnded     int64 = 113
	OpMatchEnded    int64 = 114
	OpLobbyExtended int64 = 115
	OpRoomClosed    int64 = 116
	OpActionError   int64 = 117 // sent privately to the actor
)
