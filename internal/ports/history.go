package ports

import (
	"context"
	"time"
)

// MatchRecord is one finished match kept for the recent-matches listing.
type MatchRecord struct {
	ID          string         `json:"id"`
	RoomID      string         `json:"room_id"`
	EndedAt     time.Time      `json:"ended_at"`
	Reason      string         `json:"reason"`
	FinalScores map[string]int `json:"final_scores"`
}

// HistoryPort keeps a bounded list of recently finished matches for post-match
// display after a room is torn down.
type HistoryPort interface {
	// RecordMatch stores a finished match.
	RecordMatch(ctx context.Context, rec MatchRecord) error

	// ListRecent returns up to limit of the user's records, most recent
	// first.
	ListRecent(ctx context.Context, userID string, limit int) ([]MatchRecord, error)
}
