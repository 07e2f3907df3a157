package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"liverpool/internal/app"
	"liverpool/internal/domain"
	"liverpool/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// testPresence is a minimal runtime.Presence.
type testPresence struct {
	userID string
}

func (p testPresence) GetUserId() string                 { return p.userID }
func (p testPresence) GetSessionId() string              { return "session-" + p.userID }
func (p testPresence) GetNodeId() string                 { return "node" }
func (p testPresence) GetHidden() bool                   { return false }
func (p testPresence) GetPersistence() bool              { return true }
func (p testPresence) GetUsername() string               { return p.userID }
func (p testPresence) GetStatus() string                 { return "" }
func (p testPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// testMessage is a minimal runtime.MatchData.
type testMessage struct {
	testPresence
	opCode int64
	data   []byte
}

func (m testMessage) GetOpCode() int64      { return m.opCode }
func (m testMessage) GetData() []byte       { return m.data }
func (m testMessage) GetReliable() bool     { return true }
func (m testMessage) GetReceiveTime() int64 { return 0 }

type broadcast struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcasts   []broadcast
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcasts = append(md.broadcasts, broadcast{
		opCode:     opCode,
		data:       append([]byte(nil), data...),
		recipients: presences,
	})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) opCodes() []int64 {
	out := make([]int64, len(md.broadcasts))
	for i, b := range md.broadcasts {
		out[i] = b.opCode
	}
	return out
}

func (md *mockDispatcher) sawOpCode(op int64) bool {
	for _, b := range md.broadcasts {
		if b.opCode == op {
			return true
		}
	}
	return false
}

type mockEconomy struct {
	updates []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

type mockHistory struct {
	records []ports.MatchRecord
}

func (mh *mockHistory) RecordMatch(ctx context.Context, rec ports.MatchRecord) error {
	mh.records = append(mh.records, rec)
	return nil
}

func (mh *mockHistory) ListRecent(ctx context.Context, userID string, limit int) ([]ports.MatchRecord, error) {
	return mh.records, nil
}

func newTestMatch(t *testing.T) (*matchHandler, *MatchState, string) {
	t.Helper()
	mh := &matchHandler{}
	state, tickRate, label := mh.MatchInit(context.Background(), noopLogger{}, nil, nil, map[string]interface{}{
		"turn_seconds": 30,
	})
	if tickRate != 1 {
		t.Fatalf("tick rate %d", tickRate)
	}
	ms := state.(*MatchState)
	ms.Economy = &mockEconomy{}
	ms.History = &mockHistory{}
	return mh, ms, label
}

func msg(userID string, opCode int64, payload any) runtime.MatchData {
	var data []byte
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	return testMessage{testPresence: testPresence{userID: userID}, opCode: opCode, data: data}
}

func joinUsers(mh *matchHandler, ms *MatchState, md *mockDispatcher, tick int64, users ...string) {
	presences := make([]runtime.Presence, len(users))
	for i, u := range users {
		presences[i] = testPresence{userID: u}
	}
	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, md, tick, ms, presences)
}

func TestMatchInitLabel(t *testing.T) {
	_, _, labelJSON := newTestMatch(t)

	var label Label
	if err := json.Unmarshal([]byte(labelJSON), &label); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if !label.Open || label.Game != "liverpool" || label.Phase != string(domain.PhaseLobby) {
		t.Fatalf("label %+v", label)
	}
}

func TestSeatAndStartFlow(t *testing.T) {
	mh, ms, _ := newTestMatch(t)
	md := &mockDispatcher{}
	joinUsers(mh, ms, md, 1, "p1", "p2")

	out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 2, ms, []runtime.MatchData{
		msg("p1", OpTakeSeat, takeSeatRequest{DisplayName: "Alice"}),
		msg("p2", OpTakeSeat, nil),
	})
	if out == nil {
		t.Fatal("loop destroyed the room")
	}
	if len(ms.Room.Seats) != 2 {
		t.Fatalf("seats %d", len(ms.Room.Seats))
	}
	if ms.Room.Seats[0].DisplayName != "Alice" || ms.Room.Seats[1].DisplayName != "p2" {
		t.Fatalf("names %q %q", ms.Room.Seats[0].DisplayName, ms.Room.Seats[1].DisplayName)
	}
	if !md.sawOpCode(OpSeatTaken) || !md.sawOpCode(OpSnapshot) {
		t.Fatalf("broadcast opcodes %v", md.opCodes())
	}
	if md.labelUpdates == 0 {
		t.Fatal("label never updated")
	}

	md.broadcasts = nil
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 3, ms, []runtime.MatchData{
		msg("p1", OpStartMatch, nil),
	})
	if ms.Room.Phase != domain.PhasePlaying {
		t.Fatalf("phase %s", ms.Room.Phase)
	}

	// Hands travel in targeted deal messages, one per seat.
	deals := 0
	for _, b := range md.broadcasts {
		if b.opCode == OpHandDealt {
			deals++
			if len(b.recipients) != 1 {
				t.Fatalf("deal recipients %d", len(b.recipients))
			}
		}
	}
	if deals != 2 {
		t.Fatalf("deal messages %d", deals)
	}

	var label Label
	if err := json.Unmarshal([]byte(md.lastLabel), &label); err != nil {
		t.Fatalf("label: %v", err)
	}
	if label.Open || label.Phase != string(domain.PhasePlaying) || label.Round != 1 {
		t.Fatalf("label %+v", label)
	}
}

func TestActionErrorGoesToTheActorOnly(t *testing.T) {
	mh, ms, _ := newTestMatch(t)
	md := &mockDispatcher{}
	joinUsers(mh, ms, md, 1, "p1", "p2")
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 2, ms, []runtime.MatchData{
		msg("p1", OpTakeSeat, nil),
		msg("p2", OpTakeSeat, nil),
		msg("p1", OpStartMatch, nil),
	})

	md.broadcasts = nil
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 3, ms, []runtime.MatchData{
		msg("p2", OpDraw, nil), // not p2's turn
	})

	var found *broadcast
	for i := range md.broadcasts {
		if md.broadcasts[i].opCode == OpActionError {
			found = &md.broadcasts[i]
		}
	}
	if found == nil {
		t.Fatalf("no action error in %v", md.opCodes())
	}
	if len(found.recipients) != 1 || found.recipients[0].GetUserId() != "p2" {
		t.Fatal("action error not targeted at the actor")
	}
	var ae actionErrorEvent
	if err := json.Unmarshal(found.data, &ae); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ae.Code != string(app.CodeTurn) || ae.Op != OpDraw {
		t.Fatalf("payload %+v", ae)
	}
}

func TestTurnTimeoutRunsInTheLoop(t *testing.T) {
	mh, ms, _ := newTestMatch(t)
	md := &mockDispatcher{}
	joinUsers(mh, ms, md, 1, "p1", "p2")
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 2, ms, []runtime.MatchData{
		msg("p1", OpTakeSeat, nil),
		msg("p2", OpTakeSeat, nil),
		msg("p1", OpStartMatch, nil),
	})

	deadline := ms.Room.Deadlines.Turn
	md.broadcasts = nil
	out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, deadline, ms, nil)
	if out == nil {
		t.Fatal("loop destroyed the room")
	}
	if ms.Room.Current != 1 {
		t.Fatalf("current %d after turn expiry", ms.Room.Current)
	}
	if !md.sawOpCode(OpTurnEnded) {
		t.Fatalf("broadcast opcodes %v", md.opCodes())
	}
}

func TestEmptyLobbyExpiryDestroysTheRoom(t *testing.T) {
	mh, ms, _ := newTestMatch(t)
	md := &mockDispatcher{}

	deadline := ms.Room.Deadlines.Lobby
	out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, deadline, ms, nil)
	if out != nil {
		t.Fatal("empty expired lobby kept running")
	}
	if !md.sawOpCode(OpRoomClosed) {
		t.Fatalf("broadcast opcodes %v", md.opCodes())
	}
}

func TestMatchEndSettlesAndRecords(t *testing.T) {
	mh, ms, _ := newTestMatch(t)
	md := &mockDispatcher{}
	joinUsers(mh, ms, md, 1, "p1", "p2")
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 2, ms, []runtime.MatchData{
		msg("p1", OpTakeSeat, nil),
		msg("p2", OpTakeSeat, nil),
		msg("p1", OpStartMatch, nil),
	})

	ms.Room.Phase = domain.PhaseHandComplete
	ms.Room.Round = domain.MaxRound
	ms.Room.Seats[0].TotalScore = 40
	ms.Room.Seats[1].TotalScore = 90

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 10, ms, []runtime.MatchData{
		msg("p1", OpNextHand, nil),
	})

	if ms.Room.Phase != domain.PhaseMatchComplete || !ms.Ended {
		t.Fatalf("phase %s ended %t", ms.Room.Phase, ms.Ended)
	}

	econ := ms.Economy.(*mockEconomy)
	if len(econ.updates) != 2 {
		t.Fatalf("wallet updates %d", len(econ.updates))
	}
	byUser := map[string]int64{}
	for _, u := range econ.updates {
		byUser[u.UserID] = u.Amount
	}
	if byUser["p1"] != app.SettlementStake || byUser["p2"] != -app.SettlementStake {
		t.Fatalf("settlement %v", byUser)
	}

	hist := ms.History.(*mockHistory)
	if len(hist.records) != 1 {
		t.Fatalf("history records %d", len(hist.records))
	}
	rec := hist.records[0]
	if rec.ID == "" || rec.Reason != "finished" {
		t.Fatalf("record %+v", rec)
	}
	if rec.FinalScores["p1"] != 40 || rec.FinalScores["p2"] != 90 {
		t.Fatalf("final scores %v", rec.FinalScores)
	}

	// The teardown window elapses and the room goes away.
	tearDown := ms.Room.Deadlines.Teardown
	if out := mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, tearDown, ms, nil); out != nil {
		t.Fatal("room survived its teardown deadline")
	}
}

func TestJoinAttemptVerifiesReclaimToken(t *testing.T) {
	mh, ms, _ := newTestMatch(t)

	token, err := ms.Reclaim.GenerateToken("room-1", "p1", 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, ok, _ := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 1, ms,
		testPresence{userID: "p1"}, map[string]string{"reclaim_token": token})
	if !ok {
		t.Fatal("holder rejected with a valid token")
	}

	_, ok, _ = mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 1, ms,
		testPresence{userID: "imposter"}, map[string]string{"reclaim_token": token})
	if ok {
		t.Fatal("another user admitted on a stolen token")
	}

	_, ok, _ = mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, nil, 1, ms,
		testPresence{userID: "spectator"}, nil)
	if !ok {
		t.Fatal("spectator without a token rejected")
	}
}

func TestLeaveArmsGraceAndResumeClearsIt(t *testing.T) {
	mh, ms, _ := newTestMatch(t)
	md := &mockDispatcher{}
	joinUsers(mh, ms, md, 1, "p1", "p2")
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 2, ms, []runtime.MatchData{
		msg("p1", OpTakeSeat, nil),
		msg("p2", OpTakeSeat, nil),
		msg("p1", OpStartMatch, nil),
	})

	mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, md, 3, ms, []runtime.Presence{
		testPresence{userID: "p2"},
	})
	if ms.Room.Seats[1].GraceDeadline == 0 {
		t.Fatal("grace window not armed on leave")
	}

	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, md, 4, ms, []runtime.Presence{
		testPresence{userID: "p2"},
	})
	if ms.Room.Seats[1].GraceDeadline != 0 {
		t.Fatal("grace window not cleared on resume")
	}

	// A drop that outlives the window forfeits the match on a later tick.
	mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, md, 5, ms, []runtime.Presence{
		testPresence{userID: "p2"},
	})
	grace := ms.Room.Seats[1].GraceDeadline
	md.broadcasts = nil
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, grace, ms, nil)
	if ms.Room.Phase != domain.PhaseMatchComplete {
		t.Fatalf("phase %s after grace expiry", ms.Room.Phase)
	}
	if !md.sawOpCode(OpMatchEnded) {
		t.Fatalf("broadcast opcodes %v", md.opCodes())
	}
}
