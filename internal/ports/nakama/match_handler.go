package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"liverpool/internal/app"
	"liverpool/internal/config"
	"liverpool/internal/domain"
	"liverpool/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// Label is the match label advertised for quick-match and directory queries.
type Label struct {
	Open       bool        `json:"open"`
	Game       string      `json:"game"`
	Phase      string      `json:"phase"`
	Round      int         `json:"round"`
	Seats      []LabelSeat `json:"seats"`
	Spectators int         `json:"spectators"`
}

// LabelSeat is the directory view of one seat.
type LabelSeat struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// MatchState holds the authoritative runtime state for one room. The Nakama
// match loop delivers messages and ticks one at a time, which is the
// single-threaded room actor the state machine relies on.
type MatchState struct {
	Room      *domain.Room
	Presences map[string]runtime.Presence

	App     *app.Service
	Reclaim *app.ReclaimService
	Economy ports.EconomyPort
	History ports.HistoryPort

	Tick  int64
	Ended bool // match result already settled and recorded
}

func (ms *MatchState) spectatorCount() int {
	n := 0
	for userID := range ms.Presences {
		if ms.Room.SeatIndexOf(userID) == -1 {
			n++
		}
	}
	return n
}

type matchHandler struct{}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

// MatchInit builds the room, its service and its clocks. Tick rate is one per
// second so deadline arithmetic is second arithmetic.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: could not load game config: %v", err)
	}

	timing := app.Timing{
		TurnSeconds:     config.TurnSeconds(),
		LobbySeconds:    config.LobbySeconds(),
		MatchSeconds:    config.MatchMinutes() * 60,
		GraceSeconds:    config.GraceSeconds(),
		TeardownSeconds: config.TeardownSeconds(),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if v, ok := intFromEnv(env, "liverpool_turn_seconds"); ok {
		timing.TurnSeconds = config.ClampTurnSeconds(v)
	}
	if v, ok := intFromEnv(env, "liverpool_match_minutes"); ok {
		timing.MatchSeconds = config.ClampMatchMinutes(v) * 60
	}

	// Per-room overrides via match creation params, fixed before start.
	if v, ok := intFromParam(params, "turn_seconds"); ok {
		timing.TurnSeconds = config.ClampTurnSeconds(v)
	}
	if v, ok := intFromParam(params, "match_minutes"); ok {
		timing.MatchSeconds = config.ClampMatchMinutes(v) * 60
	}

	svc := app.NewService(nil, timing)
	state := &MatchState{
		Room:      svc.NewRoom(0),
		Presences: make(map[string]runtime.Presence),
		App:       svc,
		Reclaim:   app.NewReclaimService(config.ReclaimSecret(), config.ReclaimIssuer(), time.Duration(timing.GraceSeconds)*time.Second),
		Economy:   NewNakamaEconomyAdapter(nk),
		History:   NewNakamaHistoryAdapter(nk),
	}

	return state, 1, buildLabel(state)
}

// MatchJoinAttempt admits everyone: an unseated joiner is a spectator until
// they take a seat; a returning seat holder resumes in MatchJoin.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	ms, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if token := metadata["reclaim_token"]; token != "" {
		claim, err := ms.Reclaim.Verify(token)
		if err != nil {
			logger.Warn("MatchJoinAttempt: bad reclaim token from %s: %v", presence.GetUserId(), err)
			return ms, false, "bad reclaim token"
		}
		if claim.UserID != presence.GetUserId() {
			return ms, false, "reclaim token belongs to another user"
		}
	}

	return ms, true, ""
}

// MatchJoin registers presences and resumes dropped seats.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	ms.Tick = tick

	for _, p := range presences {
		ms.Presences[p.GetUserId()] = p
		if ms.App.MarkResumed(ms.Room, p.GetUserId()) {
			logger.Info("MatchJoin: %s resumed their seat", p.GetUserId())
		}
	}

	mh.broadcastSnapshot(ms, dispatcher, logger)
	mh.updateLabel(ms, dispatcher, logger)
	return ms
}

// MatchLeave arms the reconnect grace window for seated players; spectators
// simply drop out.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	ms.Tick = tick

	for _, p := range presences {
		delete(ms.Presences, p.GetUserId())
		if ms.App.MarkDisconnected(ms.Room, p.GetUserId(), tick) {
			logger.Info("MatchLeave: %s dropped, grace window armed", p.GetUserId())
		}
	}

	mh.broadcastSnapshot(ms, dispatcher, logger)
	mh.updateLabel(ms, dispatcher, logger)
	return ms
}

// MatchLoop processes inbound actions, then the room's clocks. Returning nil
// destroys the room.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		return state
	}
	ms.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(ctx, ms, dispatcher, logger, msg)
	}

	if closed := mh.runTimers(ctx, ms, dispatcher, logger); closed {
		return nil
	}

	if app.Due(ms.Room, app.TimerTeardown, tick) {
		logger.Info("MatchLoop: teardown window elapsed, destroying room")
		return nil
	}

	return ms
}

// runTimers fires every due clock. Returns true when the room should be
// destroyed now.
func (mh *matchHandler) runTimers(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	if evs := ms.App.OnTurnTimeout(ms.Room, ms.Tick); len(evs) > 0 {
		mh.dispatchEvents(ctx, ms, dispatcher, logger, evs)
	}
	if evs := ms.App.OnMatchTimeout(ms.Room, ms.Tick); len(evs) > 0 {
		mh.dispatchEvents(ctx, ms, dispatcher, logger, evs)
	}
	for _, userID := range ms.App.DueGraceSeats(ms.Room, ms.Tick) {
		if evs := ms.App.OnGraceTimeout(ms.Room, userID, ms.Tick); len(evs) > 0 {
			mh.dispatchEvents(ctx, ms, dispatcher, logger, evs)
		}
	}
	if evs := ms.App.OnLobbyTimeout(ms.Room, ms.Tick); len(evs) > 0 {
		mh.dispatchEvents(ctx, ms, dispatcher, logger, evs)
		for _, ev := range evs {
			if ev.Kind == app.EventRoomClosed {
				logger.Info("MatchLoop: empty lobby expired, destroying room")
				return true
			}
		}
	}
	return false
}

func (mh *matchHandler) handleMessage(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	userID := msg.GetUserId()
	now := ms.Tick

	var events []app.Event
	var err error

	switch msg.GetOpCode() {
	case OpTakeSeat:
		var req takeSeatRequest
		if len(msg.GetData()) > 0 {
			err = json.Unmarshal(msg.GetData(), &req)
		}
		if err == nil {
			name := req.DisplayName
			if name == "" {
				name = msg.GetUsername()
			}
			events, err = ms.App.TakeSeat(ms.Room, userID, name, now)
		}
	case OpLeaveSeat:
		events, err = ms.App.LeaveSeat(ms.Room, userID, now)
	case OpSetReady:
		var req setReadyRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = ms.App.SetReady(ms.Room, userID, req.Ready)
		}
	case OpStartMatch:
		events, err = ms.App.Start(ms.Room, userID, now)
	case OpDraw:
		var req drawRequest
		if len(msg.GetData()) > 0 {
			err = json.Unmarshal(msg.GetData(), &req)
		}
		if err == nil {
			events, err = ms.App.Draw(ms.Room, userID, req.FromDiscard, now)
		}
	case OpDiscard:
		var req discardRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = ms.App.Discard(ms.Room, userID, req.Card, now)
		}
	case OpEndTurn:
		events, err = ms.App.EndTurn(ms.Room, userID, now)
	case OpGiveDiscard:
		var req giveDiscardRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = ms.App.GiveDiscard(ms.Room, userID, req.TargetIndex, now)
		}
	case OpLayGroup:
		var req layMeldRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = ms.App.LayGroup(ms.Room, userID, req.Positions, now)
		}
	case OpLayRun:
		var req layMeldRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = ms.App.LayRun(ms.Room, userID, req.Positions, now)
		}
	case OpHit:
		var req hitRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = ms.App.Hit(ms.Room, userID, req.TargetIndex, req.Kind, req.MeldIndex, req.Positions, now)
		}
	case OpNextHand:
		events, err = ms.App.NextHand(ms.Room, userID, now)
	case OpExtendLobby:
		var req extendLobbyRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = ms.App.ExtendLobby(ms.Room, userID, req.Seconds, now)
		}
	case OpCloseRoom:
		events, err = ms.App.CloseRoom(ms.Room, userID, now)
	default:
		logger.Warn("MatchLoop: unknown opcode %d from %s", msg.GetOpCode(), userID)
		return
	}

	if err != nil {
		mh.sendError(ms, dispatcher, logger, userID, msg.GetOpCode(), err)
		return
	}

	mh.dispatchEvents(ctx, ms, dispatcher, logger, events)
	mh.broadcastSnapshot(ms, dispatcher, logger)
	mh.updateLabel(ms, dispatcher, logger)
}

// dispatchEvents converts app events to wire messages, honoring targeted
// recipients, and performs the side effects tied to a match result.
func (mh *matchHandler) dispatchEvents(ctx context.Context, ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		if ev.Kind == app.EventMatchEnded && !ms.Ended {
			mh.settleMatch(ctx, ms, logger, ev)
		}

		opCode, ok := eventOpCode(ev.Kind)
		if !ok {
			logger.Warn("dispatchEvents: unknown event kind %q", ev.Kind)
			continue
		}
		data, err := json.Marshal(eventEnvelope{Line: ev.Line, Payload: ev.Payload})
		if err != nil {
			logger.Error("dispatchEvents: marshal %q: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := ms.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// A targeted event with no connected recipient must not fall back
			// to a broadcast.
			if len(recipients) == 0 {
				continue
			}
		}
		if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
			logger.Error("dispatchEvents: broadcast %q: %v", ev.Kind, err)
		}
	}
}

// settleMatch pays out the chip settlement and records the match for the
// recent-matches listing.
func (mh *matchHandler) settleMatch(ctx context.Context, ms *MatchState, logger runtime.Logger, ev app.Event) {
	ms.Ended = true
	p, ok := ev.Payload.(app.MatchEndedPayload)
	if !ok {
		logger.Error("settleMatch: unexpected payload type")
		return
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	if ms.Economy != nil {
		updates := make([]ports.WalletUpdate, 0, len(p.Settlement))
		for userID, amount := range p.Settlement {
			if amount == 0 {
				continue
			}
			updates = append(updates, ports.WalletUpdate{
				UserID: userID,
				Amount: amount,
				Metadata: map[string]interface{}{
					"match_id": matchID,
					"reason":   "match_settlement",
				},
			})
		}
		if err := ms.Economy.UpdateBalances(ctx, updates); err != nil {
			logger.Error("settleMatch: failed to update balances: %v", err)
		}
	}

	if ms.History != nil {
		rec := ports.MatchRecord{
			ID:          uuid.NewString(),
			RoomID:      matchID,
			EndedAt:     time.Now().UTC(),
			Reason:      p.Reason,
			FinalScores: p.FinalScores,
		}
		if err := ms.History.RecordMatch(ctx, rec); err != nil {
			logger.Error("settleMatch: failed to record match: %v", err)
		}
	}
}

func (mh *matchHandler) broadcastSnapshot(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	data, err := json.Marshal(app.BuildSnapshot(ms.Room))
	if err != nil {
		logger.Error("broadcastSnapshot: marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpSnapshot, data, nil, nil, true); err != nil {
		logger.Error("broadcastSnapshot: %v", err)
	}
}

// sendError returns a structured failure to the acting presence only.
func (mh *matchHandler) sendError(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, op int64, actErr error) {
	code := "invalid"
	reason := actErr.Error()
	if f, ok := actErr.(*app.Fault); ok {
		code = string(f.Code)
		reason = f.Reason
	} else {
		// Unexpected internal failure: log it, drop the action, keep the room.
		logger.Error("sendError: internal error on op %d from %s: %v", op, userID, actErr)
	}

	p, ok := ms.Presences[userID]
	if !ok {
		return
	}
	data, err := json.Marshal(actionErrorEvent{Op: op, Code: code, Reason: reason})
	if err != nil {
		logger.Error("sendError: marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpActionError, data, []runtime.Presence{p}, nil, true); err != nil {
		logger.Error("sendError: %v", err)
	}
}

func (mh *matchHandler) updateLabel(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(buildLabel(ms)); err != nil {
		logger.Error("updateLabel: %v", err)
	}
}

func buildLabel(ms *MatchState) string {
	seats := make([]LabelSeat, 0, len(ms.Room.Seats))
	for _, s := range ms.Room.Seats {
		seats = append(seats, LabelSeat{Name: s.DisplayName, Score: s.TotalScore})
	}
	label := Label{
		Open:       ms.Room.Phase == domain.PhaseLobby && len(ms.Room.Seats) < domain.SeatCapacity,
		Game:       "liverpool",
		Phase:      string(ms.Room.Phase),
		Round:      ms.Room.Round,
		Seats:      seats,
		Spectators: ms.spectatorCount(),
	}
	b, _ := json.Marshal(label)
	return string(b)
}

// MatchTerminate runs on match shutdown.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: match terminated for reason %d", reason)
	return state
}

// MatchSignal handles out-of-band signals; unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

func intFromEnv(env map[string]string, key string) (int, bool) {
	if env == nil {
		return 0, false
	}
	v, ok := env[key]
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func intFromParam(params map[string]interface{}, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		if i, err := strconv.Atoi(t); err == nil {
			return i, true
		}
	}
	return 0, false
}
