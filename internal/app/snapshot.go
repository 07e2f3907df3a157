package app

import "liverpool/internal/domain"

// Snapshot is the full public view of a room, rebuilt and broadcast after
// every successful mutation. Hands never appear here; they travel in private
// events to their own seat.
type Snapshot struct {
	Phase          domain.Phase   `json:"phase"`
	Round          int            `json:"round"`
	CurrentIndex   int            `json:"current_index"`
	DrawCount      int            `json:"draw_count"`
	DiscardTop     *domain.Card   `json:"discard_top"`
	Seats          []SeatView     `json:"seats"`
	LastScores     map[string]int `json:"last_scores,omitempty"`
	TurnDeadline   int64          `json:"turn_deadline,omitempty"`
	LobbyDeadline  int64          `json:"lobby_deadline,omitempty"`
	MatchDeadline  int64          `json:"match_deadline,omitempty"`
}

// SeatView is the public face of one seat.
type SeatView struct {
	UserID       string        `json:"user_id"`
	DisplayName  string        `json:"display_name"`
	HandCount    int           `json:"hand_count"`
	HasDrawn     bool          `json:"has_drawn"`
	HasDiscarded bool          `json:"has_discarded"`
	Groups       []domain.Meld `json:"groups"`
	Runs         []domain.Meld `json:"runs"`
	LaidComplete bool          `json:"laid_complete"`
	TotalScore   int           `json:"total_score"`
	Ready        bool          `json:"ready"`
	Connected    bool          `json:"connected"`
}

// BuildSnapshot renders the room's current public state.
func BuildSnapshot(room *domain.Room) Snapshot {
	rule := domain.RoundRuleFor(room.Round)

	var top *domain.Card
	if c, ok := room.DiscardPile.Top(); ok {
		top = &c
	}

	seats := make([]SeatView, 0, len(room.Seats))
	for _, s := range room.Seats {
		seats = append(seats, SeatView{
			UserID:       s.UserID,
			DisplayName:  s.DisplayName,
			HandCount:    len(s.Hand),
			HasDrawn:     s.HasDrawn,
			HasDiscarded: s.HasDiscarded,
			Groups:       s.Groups,
			Runs:         s.Runs,
			LaidComplete: s.LaidComplete(rule),
			TotalScore:   s.TotalScore,
			Ready:        s.Ready,
			Connected:    s.GraceDeadline == 0,
		})
	}

	return Snapshot{
		Phase:         room.Phase,
		Round:         room.Round,
		CurrentIndex:  room.Current,
		DrawCount:     room.DrawPile.Size(),
		DiscardTop:    top,
		Seats:         seats,
		LastScores:    room.LastScores,
		TurnDeadline:  room.Deadlines.Turn,
		LobbyDeadline: room.Deadlines.Lobby,
		MatchDeadline: room.Deadlines.Match,
	}
}
