package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"liverpool/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	historyCollection = "match_history"
	historyListMax    = 50
)

// NakamaHistoryAdapter implements ports.HistoryPort on Nakama storage. Each
// finished match is written once per participant so per-user listings are a
// single storage list call.
type NakamaHistoryAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaHistoryAdapter creates a new history adapter.
func NewNakamaHistoryAdapter(nk runtime.NakamaModule) *NakamaHistoryAdapter {
	return &NakamaHistoryAdapter{nk: nk}
}

// RecordMatch stores the finished match under every participant.
func (a *NakamaHistoryAdapter) RecordMatch(ctx context.Context, rec ports.MatchRecord) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}

	writes := make([]*runtime.StorageWrite, 0, len(rec.FinalScores))
	for userID := range rec.FinalScores {
		writes = append(writes, &runtime.StorageWrite{
			Collection:      historyCollection,
			Key:             rec.ID,
			UserID:          userID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})
	}
	if len(writes) == 0 {
		return nil
	}

	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write match record %s: %w", rec.ID, err)
	}
	return nil
}

// ListRecent returns the user's finished matches, most recent first.
func (a *NakamaHistoryAdapter) ListRecent(ctx context.Context, userID string, limit int) ([]ports.MatchRecord, error) {
	if limit <= 0 || limit > historyListMax {
		limit = historyListMax
	}

	objects, _, err := a.nk.StorageList(ctx, "", userID, historyCollection, historyListMax, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list match records: %w", err)
	}

	records := make([]ports.MatchRecord, 0, len(objects))
	for _, obj := range objects {
		var rec ports.MatchRecord
		if err := json.Unmarshal([]byte(obj.Value), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].EndedAt.After(records[j].EndedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

var _ ports.HistoryPort = (*NakamaHistoryAdapter)(nil)
