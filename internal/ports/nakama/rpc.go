package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"liverpool/internal/app"
	"liverpool/internal/config"
	"liverpool/internal/domain"
	"liverpool/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is returned to clients asking for a joinable room.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RoomListing is one row of the room directory.
type RoomListing struct {
	MatchID string `json:"match_id"`
	Label   Label  `json:"label"`
	Size    int    `json:"size"`
}

type recentMatchesRequest struct {
	Limit int `json:"limit"`
}

type reclaimTokenRequest struct {
	MatchID   string `json:"match_id"`
	SeatIndex int    `json:"seat_index"`
}

type reclaimTokenResponse struct {
	Token string `json:"token"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	for name, fn := range map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcQuickMatch:    rpcQuickMatch,
		RpcListRooms:     rpcListRooms,
		RpcRecentMatches: rpcRecentMatches,
		RpcReclaimToken:  rpcReclaimToken,
	} {
		if err := initializer.RegisterRpc(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	// Find any open lobby of our game with a free seat.
	query := "+label.open:T +label.game:liverpool +label.phase:lobby"

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := domain.SeatCapacity - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcQuickMatch: MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// No open room; create one. Seating happens in the match loop.
	var params map[string]interface{}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &params); err != nil {
			logger.Warn("rpcQuickMatch: ignoring bad params payload: %v", err)
			params = nil
		}
	}
	matchID, err := nk.MatchCreate(ctx, MatchName, params)
	if err != nil {
		logger.Error("rpcQuickMatch: MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

func rpcListRooms(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	limit := 20
	authoritative := true

	matches, err := nk.MatchList(ctx, limit, authoritative, "", nil, nil, "+label.game:liverpool")
	if err != nil {
		logger.Error("rpcListRooms: MatchList error: %v", err)
		return "", err
	}

	listings := make([]RoomListing, 0, len(matches))
	for _, m := range matches {
		var label Label
		if m.Label != nil {
			if err := json.Unmarshal([]byte(m.Label.Value), &label); err != nil {
				continue
			}
		}
		listings = append(listings, RoomListing{
			MatchID: m.MatchId,
			Label:   label,
			Size:    int(m.Size),
		})
	}

	b, err := json.Marshal(listings)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func rpcRecentMatches(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("missing user id")
	}

	var req recentMatchesRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", fmt.Errorf("bad payload: %w", err)
		}
	}

	var history ports.HistoryPort = NewNakamaHistoryAdapter(nk)
	records, err := history.ListRecent(ctx, userID, req.Limit)
	if err != nil {
		logger.Error("rpcRecentMatches: %v", err)
		return "", err
	}

	b, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// rpcReclaimToken signs a short-lived token a dropped player presents in the
// join metadata to prove the seat is theirs.
func rpcReclaimToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("missing user id")
	}

	var req reclaimTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("bad payload: %w", err)
	}
	if req.MatchID == "" {
		return "", fmt.Errorf("match_id is required")
	}

	svc := app.NewReclaimService(config.ReclaimSecret(), config.ReclaimIssuer(), time.Duration(config.GraceSeconds())*time.Second)
	token, err := svc.GenerateToken(req.MatchID, userID, req.SeatIndex)
	if err != nil {
		logger.Error("rpcReclaimToken: %v", err)
		return "", err
	}

	b, _ := json.Marshal(reclaimTokenResponse{Token: token})
	return string(b), nil
}
