package app

import (
	"fmt"
	"math/rand"
	"time"

	"liverpool/internal/domain"
)

// Service contains the room/match use-cases operating on domain state. All
// methods validate the actor and the room phase before mutating anything, and
// return a coded Fault without side effects on any violation. The gateway
// guarantees one action at a time per room, so no locking happens here.
type Service struct {
	rng    *rand.Rand
	timing Timing
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand, timing Timing) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, timing: timing}
}

// NewRoom creates a lobby room with the lobby clock armed.
func (s *Service) NewRoom(now int64) *domain.Room {
	room := domain.NewRoom()
	Arm(room, TimerLobby, s.timing.LobbySeconds, now)
	return room
}

// TakeSeat seats a user. Seats are only taken in the lobby; an active seat
// whose occupant dropped is reclaimed through the gateway's resume path, not
// here.
func (s *Service) TakeSeat(room *domain.Room, userID, displayName string, now int64) ([]Event, error) {
	if room.Phase != domain.PhaseLobby {
		return nil, ErrAlreadyStarted
	}
	if room.SeatIndexOf(userID) != -1 {
		return nil, fault(CodeInProgress, "already seated")
	}
	if len(room.Seats) >= domain.SeatCapacity {
		return nil, ErrRoomFull
	}

	room.Seats = append(room.Seats, &domain.Seat{UserID: userID, DisplayName: displayName})
	idx := len(room.Seats) - 1
	return []Event{{
		Kind:    EventSeatTaken,
		Payload: SeatTakenPayload{UserID: userID, SeatIndex: idx, DisplayName: displayName},
		Line:    fmt.Sprintf("%s took seat %d", displayName, idx+1),
	}}, nil
}

// LeaveSeat vacates a seat. In the lobby the seat is simply freed and the
// leaver becomes a spectator; while a hand is active the match ends by
// forfeit. Between hands the seat is freed without forfeit.
func (s *Service) LeaveSeat(room *domain.Room, userID string, now int64) ([]Event, error) {
	idx := room.SeatIndexOf(userID)
	if idx == -1 {
		return nil, ErrNotSeated
	}

	if room.Phase == domain.PhasePlaying {
		return s.forfeit(room, idx, now), nil
	}

	seat := room.Seats[idx]
	room.RemoveSeat(idx)
	return []Event{{
		Kind:    EventSeatLeft,
		Payload: SeatLeftPayload{UserID: userID, SeatIndex: idx},
		Line:    fmt.Sprintf("%s left seat %d", seat.DisplayName, idx+1),
	}}, nil
}

// SetReady toggles a seat's lobby readiness flag. Advisory: Start does not
// require it, the lobby UI shows it.
func (s *Service) SetReady(room *domain.Room, userID string, ready bool) ([]Event, error) {
	if room.Phase != domain.PhaseLobby {
		return nil, ErrNotInLobby
	}
	idx := room.SeatIndexOf(userID)
	if idx == -1 {
		return nil, ErrNotSeated
	}

	seat := room.Seats[idx]
	seat.Ready = ready
	state := "ready"
	if !ready {
		state = "not ready"
	}
	return []Event{{
		Kind:    EventReadySet,
		Payload: ReadySetPayload{UserID: userID, Ready: ready},
		Line:    fmt.Sprintf("%s is %s", seat.DisplayName, state),
	}}, nil
}

// Start begins the match: deals hand one, drops the lobby clock and arms the
// match clock. The requester must hold a seat.
func (s *Service) Start(room *domain.Room, userID string, now int64) ([]Event, error) {
	if room.Phase != domain.PhaseLobby {
		return nil, ErrAlreadyStarted
	}
	if room.SeatIndexOf(userID) == -1 {
		return nil, ErrNotSeated
	}
	if len(room.Seats) < MinPlayersToStart {
		return nil, ErrTooFewPlayers
	}

	Cancel(room, TimerLobby)
	Arm(room, TimerMatch, s.timing.MatchSeconds, now)

	events := []Event{{
		Kind:    EventMatchStarted,
		Payload: MatchStartedPayload{Round: 1},
		Line:    "the match begins: round 1",
	}}
	events = append(events, s.dealRound(room, 1, now)...)
	return events, nil
}

// dealRound builds a fresh shuffled double deck, deals every seat the round's
// hand, flips the starting discard and hands the turn to seat zero.
func (s *Service) dealRound(room *domain.Room, round int, now int64) []Event {
	rule := domain.RoundRuleFor(round)

	deck := domain.NewDoubleDeck()
	domain.ShuffleCards(s.rng, deck)

	room.Phase = domain.PhasePlaying
	room.Round = round
	room.DrawPile = deck
	room.DiscardPile = nil
	room.LastScores = nil
	room.Current = 0

	events := make([]Event, 0, len(room.Seats)+1)
	for _, seat := range room.Seats {
		seat.Hand = nil
		seat.Groups = nil
		seat.Runs = nil
		seat.HasDrawn = false
		seat.HasDiscarded = false
		for i := 0; i < rule.DealSize; i++ {
			c, _ := room.DrawPile.DrawTop()
			seat.Hand = append(seat.Hand, c)
		}
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: seat.UserID, Round: round, Hand: seat.Hand},
			Line:       fmt.Sprintf("round %d: %d cards dealt", round, rule.DealSize),
			Recipients: []string{seat.UserID},
		})
	}

	flip, _ := room.DrawPile.DrawTop()
	room.DiscardPile = domain.Pile{flip}

	Arm(room, TimerTurn, s.timing.TurnSeconds, now)
	return events
}

// Draw gives the turn holder one card from the draw pile or the discard top.
func (s *Service) Draw(room *domain.Room, userID string, fromDiscard bool, now int64) ([]Event, error) {
	seat, err := s.turnSeat(room, userID)
	if err != nil {
		return nil, err
	}
	if seat.HasDrawn {
		return nil, ErrAlreadyDrawn
	}

	var card domain.Card
	if fromDiscard {
		c, ok := room.DiscardPile.DrawTop()
		if !ok {
			return nil, ErrPileEmpty
		}
		card = c
	} else {
		c, err := s.drawFromStock(room)
		if err != nil {
			return nil, err
		}
		card = c
	}

	seat.Hand = append(seat.Hand, card)
	seat.HasDrawn = true

	source := "the pile"
	if fromDiscard {
		source = "the discard (" + card.String() + ")"
	}
	return []Event{{
		Kind:       EventCardDrawn,
		Payload:    CardDrawnPayload{UserID: userID, FromDiscard: fromDiscard, Card: card},
		Line:       fmt.Sprintf("%s drew from %s", seat.DisplayName, source),
		Recipients: []string{userID},
	}}, nil
}

// drawFromStock pops the draw pile, reshuffling all-but-top of the discard
// pile into a fresh draw pile when it runs dry. With one or zero discard cards
// there is nothing to reshuffle and the draw fails with empty.
func (s *Service) drawFromStock(room *domain.Room) (domain.Card, error) {
	if c, ok := room.DrawPile.DrawTop(); ok {
		return c, nil
	}
	if room.DiscardPile.Size() <= 1 {
		return domain.Card{}, ErrPileEmpty
	}
	top := room.DiscardPile[len(room.DiscardPile)-1]
	stock := make(domain.Pile, len(room.DiscardPile)-1)
	copy(stock, room.DiscardPile[:len(room.DiscardPile)-1])
	domain.ShuffleCards(s.rng, stock)
	room.DrawPile = stock
	room.DiscardPile = domain.Pile{top}
	c, _ := room.DrawPile.DrawTop()
	return c, nil
}

// Discard moves one named card from the turn holder's hand to the discard
// pile. Emptying the hand goes out and ends the hand immediately.
func (s *Service) Discard(room *domain.Room, userID string, card domain.Card, now int64) ([]Event, error) {
	seat, err := s.turnSeat(room, userID)
	if err != nil {
		return nil, err
	}
	if !seat.HasDrawn {
		return nil, ErrNeedDraw
	}
	if seat.HasDiscarded {
		return nil, ErrAlreadyDiscarded
	}

	rest, ok := domain.RemoveCard(seat.Hand, card)
	if !ok {
		return nil, fault(CodeNotFound, "that card is not in hand")
	}
	seat.Hand = rest
	room.DiscardPile = append(room.DiscardPile, card)
	seat.HasDiscarded = true

	events := []Event{{
		Kind:    EventCardDiscarded,
		Payload: CardDiscardedPayload{UserID: userID, Card: card},
		Line:    fmt.Sprintf("%s discarded %s", seat.DisplayName, card),
	}}

	if len(seat.Hand) == 0 {
		events = append(events, s.finishHand(room, "went_out", userID, now)...)
	}
	return events, nil
}

// EndTurn passes the turn to the next seat and re-arms the turn clock.
func (s *Service) EndTurn(room *domain.Room, userID string, now int64) ([]Event, error) {
	seat, err := s.turnSeat(room, userID)
	if err != nil {
		return nil, err
	}
	if !seat.HasDiscarded {
		return nil, ErrNeedDiscard
	}
	return s.advanceTurn(room, seat, false, now), nil
}

func (s *Service) advanceTurn(room *domain.Room, from *domain.Seat, forced bool, now int64) []Event {
	room.Current = room.NextIndex(room.Current)
	next := room.CurrentSeat()
	next.HasDrawn = false
	next.HasDiscarded = false
	Arm(room, TimerTurn, s.timing.TurnSeconds, now)

	return []Event{{
		Kind:    EventTurnEnded,
		Payload: TurnEndedPayload{UserID: from.UserID, NextIndex: room.Current, Forced: forced},
		Line:    fmt.Sprintf("%s's turn", next.DisplayName),
	}}
}

// GiveDiscard hands the discard top plus one bonus pile card to another seat,
// then draws for the acting seat, which counts as its draw for the turn. The
// turn does not advance.
func (s *Service) GiveDiscard(room *domain.Room, userID string, targetIndex int, now int64) ([]Event, error) {
	seat, err := s.turnSeat(room, userID)
	if err != nil {
		return nil, err
	}
	if seat.HasDrawn {
		return nil, ErrAlreadyDrawn
	}
	if targetIndex < 0 || targetIndex >= len(room.Seats) {
		return nil, fault(CodeNotFound, "no such seat")
	}
	target := room.Seats[targetIndex]
	if target == seat {
		return nil, fault(CodeInvalid, "cannot give the discard to yourself")
	}
	if room.DiscardPile.Size() == 0 {
		return nil, ErrPileEmpty
	}
	// Two pile cards are needed: the target's bonus and the actor's own draw.
	// Checked up front so the action applies atomically or not at all.
	if room.DrawPile.Size() < 2 {
		return nil, ErrPileEmpty
	}

	top, _ := room.DiscardPile.DrawTop()
	bonus, _ := room.DrawPile.DrawTop()
	target.Hand = append(target.Hand, top, bonus)

	own, _ := room.DrawPile.DrawTop()
	seat.Hand = append(seat.Hand, own)
	seat.HasDrawn = true

	return []Event{
		{
			Kind:       EventDiscardGiven,
			Payload:    DiscardGivenPayload{FromUserID: userID, ToUserID: target.UserID, Cards: []domain.Card{top, bonus}},
			Line:       fmt.Sprintf("%s gave the discard to %s", seat.DisplayName, target.DisplayName),
			Recipients: []string{target.UserID},
		},
		{
			Kind:       EventCardDrawn,
			Payload:    CardDrawnPayload{UserID: userID, Card: own},
			Line:       fmt.Sprintf("%s drew from the pile", seat.DisplayName),
			Recipients: []string{userID},
		},
	}, nil
}

// LayGroup lays selected hand cards as a new group, within the round quota.
func (s *Service) LayGroup(room *domain.Room, userID string, positions []int, now int64) ([]Event, error) {
	return s.layMeld(room, userID, domain.GroupMeld, positions, now)
}

// LayRun lays selected hand cards as a new run, within the round quota.
func (s *Service) LayRun(room *domain.Room, userID string, positions []int, now int64) ([]Event, error) {
	return s.layMeld(room, userID, domain.RunMeld, positions, now)
}

func (s *Service) layMeld(room *domain.Room, userID string, kind domain.MeldKind, positions []int, now int64) ([]Event, error) {
	seat, err := s.turnSeat(room, userID)
	if err != nil {
		return nil, err
	}
	if !seat.HasDrawn {
		return nil, ErrNeedDraw
	}
	if seat.HasDiscarded {
		return nil, ErrAlreadyDiscarded
	}

	cards, ok := domain.PickAt(seat.Hand, positions)
	if !ok {
		return nil, fault(CodeNotFound, "bad hand positions")
	}
	if len(cards) >= len(seat.Hand) {
		return nil, ErrMustKeepOne
	}

	rule := domain.RoundRuleFor(room.Round)
	var quota int
	var arranged []domain.Card
	switch kind {
	case domain.GroupMeld:
		quota = rule.Groups
		if len(cards) < domain.MinGroupSize {
			return nil, fault(CodeCount, "a group needs at least 3 cards")
		}
		if !domain.IsValidGroup(cards) {
			return nil, fault(CodeInvalid, "those cards do not form a group")
		}
		arranged = domain.ArrangeGroup(cards)
	default:
		quota = rule.Runs
		if len(cards) < domain.MinRunSize || len(cards) > domain.MaxRunSize {
			return nil, fault(CodeCount, "a run needs 4 to 12 cards")
		}
		if why := domain.WhyRunInvalid(cards); why != "" {
			return nil, fault(CodeInvalid, why)
		}
		arranged = domain.ArrangeRun(cards)
	}
	if len(seat.MeldsOf(kind)) >= quota {
		return nil, fault(CodeLimit, "the round's quota for that meld is already laid")
	}

	seat.Hand = domain.RemoveAt(seat.Hand, positions)
	meld := domain.Meld{Kind: kind, Cards: arranged}
	if kind == domain.GroupMeld {
		seat.Groups = append(seat.Groups, meld)
	} else {
		seat.Runs = append(seat.Runs, meld)
	}

	return []Event{{
		Kind: EventMeldLaid,
		Payload: MeldLaidPayload{
			UserID:       userID,
			Kind:         kind,
			Cards:        arranged,
			LaidComplete: seat.LaidComplete(rule),
		},
		Line: fmt.Sprintf("%s laid a %s of %d cards", seat.DisplayName, kind, len(arranged)),
	}}, nil
}

// Hit appends hand cards to an already laid meld, own or another seat's. Legal
// only once the acting seat has met the round quota, and only if the combined
// meld still passes the rules engine; rejected atomically otherwise.
func (s *Service) Hit(room *domain.Room, userID string, targetIndex int, kind domain.MeldKind, meldIndex int, positions []int, now int64) ([]Event, error) {
	seat, err := s.turnSeat(room, userID)
	if err != nil {
		return nil, err
	}
	if !seat.HasDrawn {
		return nil, ErrNeedDraw
	}
	if seat.HasDiscarded {
		return nil, ErrAlreadyDiscarded
	}
	rule := domain.RoundRuleFor(room.Round)
	if !seat.LaidComplete(rule) {
		return nil, ErrNeedLaid
	}

	if targetIndex < 0 || targetIndex >= len(room.Seats) {
		return nil, fault(CodeNotFound, "no such seat")
	}
	target := room.Seats[targetIndex]
	melds := target.MeldsOf(kind)
	if meldIndex < 0 || meldIndex >= len(melds) {
		return nil, fault(CodeNotFound, "no such meld")
	}

	cards, ok := domain.PickAt(seat.Hand, positions)
	if !ok {
		return nil, fault(CodeNotFound, "bad hand positions")
	}
	if len(cards) == 0 {
		return nil, fault(CodeCount, "no cards selected")
	}
	if len(cards) >= len(seat.Hand) {
		return nil, ErrMustKeepOne
	}

	combined := append(append([]domain.Card{}, melds[meldIndex].Cards...), cards...)
	var arranged []domain.Card
	if kind == domain.GroupMeld {
		if !domain.IsValidGroup(combined) {
			return nil, fault(CodeInvalid, "the extended group is not valid")
		}
		arranged = domain.ArrangeGroup(combined)
	} else {
		if why := domain.WhyRunInvalid(combined); why != "" {
			return nil, fault(CodeInvalid, why)
		}
		arranged = domain.ArrangeRun(combined)
	}

	seat.Hand = domain.RemoveAt(seat.Hand, positions)
	melds[meldIndex].Cards = arranged

	return []Event{{
		Kind: EventMeldHit,
		Payload: MeldHitPayload{
			UserID:      userID,
			TargetIndex: targetIndex,
			Kind:        kind,
			MeldIndex:   meldIndex,
			Cards:       cards,
		},
		Line: fmt.Sprintf("%s hit %s's %s with %d cards", seat.DisplayName, target.DisplayName, kind, len(cards)),
	}}, nil
}

// NextHand deals the next round once a hand is complete, or ends the match
// after round six.
func (s *Service) NextHand(room *domain.Room, userID string, now int64) ([]Event, error) {
	if room.Phase != domain.PhaseHandComplete {
		return nil, ErrHandNotComplete
	}
	if room.SeatIndexOf(userID) == -1 {
		return nil, ErrNotSeated
	}

	if room.Round >= domain.MaxRound {
		return s.endMatch(room, "finished", now), nil
	}

	round := room.Round + 1
	events := []Event{{
		Kind:    EventMatchStarted,
		Payload: MatchStartedPayload{Round: round},
		Line:    fmt.Sprintf("round %d begins", round),
	}}
	events = append(events, s.dealRound(room, round, now)...)
	return events, nil
}

// CloseRoom shuts an unstarted room down explicitly. The room tears down
// after the close grace window.
func (s *Service) CloseRoom(room *domain.Room, userID string, now int64) ([]Event, error) {
	if room.Phase != domain.PhaseLobby {
		return nil, ErrNotInLobby
	}
	idx := room.SeatIndexOf(userID)
	if idx == -1 {
		return nil, ErrNotSeated
	}

	Cancel(room, TimerLobby)
	Arm(room, TimerTeardown, s.timing.TeardownSeconds, now)
	return []Event{{
		Kind:    EventRoomClosed,
		Payload: RoomClosedPayload{Reason: "closed"},
		Line:    fmt.Sprintf("%s closed the room", room.Seats[idx].DisplayName),
	}}, nil
}

// ExtendLobby pushes the lobby deadline out by the requested duration.
func (s *Service) ExtendLobby(room *domain.Room, userID string, seconds int, now int64) ([]Event, error) {
	if room.Phase != domain.PhaseLobby {
		return nil, ErrNotInLobby
	}
	idx := room.SeatIndexOf(userID)
	if idx == -1 {
		return nil, ErrNotSeated
	}
	if seconds <= 0 {
		return nil, fault(CodeInvalid, "extension must be positive")
	}

	room.Deadlines.Lobby += int64(seconds)
	return []Event{{
		Kind:    EventLobbyExtended,
		Payload: LobbyExtendedPayload{UserID: userID, Seconds: seconds},
		Line:    fmt.Sprintf("%s extended the lobby by %ds", room.Seats[idx].DisplayName, seconds),
	}}, nil
}

// finishHand scores every seat's remaining hand, records the hand scores and
// moves the room to hand-complete.
func (s *Service) finishHand(room *domain.Room, reason, wentOutBy string, now int64) []Event {
	scores := make(map[string]int, len(room.Seats))
	totals := make(map[string]int, len(room.Seats))
	for _, seat := range room.Seats {
		score := domain.ScoreHand(seat.Hand)
		seat.TotalScore += score
		scores[seat.UserID] = score
		totals[seat.UserID] = seat.TotalScore
	}
	room.LastScores = scores
	room.Phase = domain.PhaseHandComplete
	Cancel(room, TimerTurn)

	line := fmt.Sprintf("round %d is over", room.Round)
	if wentOutBy != "" {
		if i := room.SeatIndexOf(wentOutBy); i != -1 {
			line = fmt.Sprintf("%s went out: round %d is over", room.Seats[i].DisplayName, room.Round)
		}
	}
	return []Event{{
		Kind: EventHandEnded,
		Payload: HandEndedPayload{
			Round:      room.Round,
			Reason:     reason,
			WentOutBy:  wentOutBy,
			HandScores: scores,
			Totals:     totals,
		},
		Line: line,
	}}
}

// forfeit ends the match when a seated player walks out of an active hand.
// Every remaining seat is credited a zero-point hand and the room tears down
// after the close grace window.
func (s *Service) forfeit(room *domain.Room, leaverIndex int, now int64) []Event {
	leaver := room.Seats[leaverIndex]
	room.RemoveSeat(leaverIndex)

	scores := make(map[string]int, len(room.Seats))
	for _, seat := range room.Seats {
		scores[seat.UserID] = 0
	}
	room.LastScores = scores

	events := []Event{{
		Kind:    EventSeatLeft,
		Payload: SeatLeftPayload{UserID: leaver.UserID, SeatIndex: leaverIndex, Forfeit: true},
		Line:    fmt.Sprintf("%s abandoned the match", leaver.DisplayName),
	}}
	return append(events, s.endMatch(room, "forfeit", now)...)
}

// endMatch freezes totals as final scores, names the winner, settles chips and
// schedules teardown.
func (s *Service) endMatch(room *domain.Room, reason string, now int64) []Event {
	room.Phase = domain.PhaseMatchComplete
	Cancel(room, TimerTurn)
	Cancel(room, TimerMatch)
	Arm(room, TimerTeardown, s.timing.TeardownSeconds, now)

	finals := make(map[string]int, len(room.Seats))
	winner := ""
	for _, seat := range room.Seats {
		finals[seat.UserID] = seat.TotalScore
		// Lowest total wins; ties go to the earlier seat.
		if winner == "" || seat.TotalScore < finals[winner] {
			winner = seat.UserID
		}
	}

	settlement := make(map[string]int64, len(room.Seats))
	for _, seat := range room.Seats {
		if seat.UserID == winner {
			settlement[seat.UserID] = int64(SettlementStake) * int64(len(room.Seats)-1)
		} else {
			settlement[seat.UserID] = -int64(SettlementStake)
		}
	}

	line := "the match is over"
	if i := room.SeatIndexOf(winner); i != -1 {
		line = fmt.Sprintf("%s wins the match with %d points", room.Seats[i].DisplayName, finals[winner])
	}
	return []Event{{
		Kind: EventMatchEnded,
		Payload: MatchEndedPayload{
			Reason:      reason,
			WinnerID:    winner,
			FinalScores: finals,
			Settlement:  settlement,
		},
		Line: line,
	}}
}

// turnSeat resolves the acting user to the current turn holder, or fails.
func (s *Service) turnSeat(room *domain.Room, userID string) (*domain.Seat, error) {
	if room.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	idx := room.SeatIndexOf(userID)
	if idx == -1 {
		return nil, ErrNotSeated
	}
	if idx != room.Current {
		return nil, ErrNotYourTurn
	}
	return room.Seats[idx], nil
}
