package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds the operator-tunable clocks and limits for rooms.
type GameConfig struct {
	// TurnSeconds of 0 leaves turns unclocked. Non-zero values clamp to 5..120.
	TurnSeconds int `json:"turn_seconds"`
	// LobbySeconds is the empty-lobby expiry interval.
	LobbySeconds int `json:"lobby_seconds"`
	// MatchMinutes clamps to 10..120 and is fixed once a match starts.
	MatchMinutes int `json:"match_minutes"`
	// GraceSeconds is the disconnect reconnect window.
	GraceSeconds int `json:"grace_seconds"`
	// TeardownSeconds is the close grace window after a match ends.
	TeardownSeconds int `json:"teardown_seconds"`
	// ReclaimSecret signs seat-reclaim tokens.
	ReclaimSecret string `json:"reclaim_secret"`
	// ReclaimIssuer names this deployment in reclaim tokens.
	ReclaimIssuer string `json:"reclaim_issuer"`
}

const (
	defaultLobbySeconds    = 120
	defaultMatchMinutes    = 30
	defaultGraceSeconds    = 60
	defaultTeardownSeconds = 15

	minTurnSeconds  = 5
	maxTurnSeconds  = 120
	minMatchMinutes = 10
	maxMatchMinutes = 120
)

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// TurnSeconds returns the clamped per-turn clock, 0 meaning unclocked.
func TurnSeconds() int {
	return ClampTurnSeconds(value().TurnSeconds)
}

// ClampTurnSeconds applies the operator bounds to a requested turn clock.
func ClampTurnSeconds(v int) int {
	if v <= 0 {
		return 0
	}
	if v < minTurnSeconds {
		return minTurnSeconds
	}
	if v > maxTurnSeconds {
		return maxTurnSeconds
	}
	return v
}

// LobbySeconds returns the empty-lobby expiry interval.
func LobbySeconds() int {
	if v := value().LobbySeconds; v > 0 {
		return v
	}
	return defaultLobbySeconds
}

// MatchMinutes returns the clamped match duration limit.
func MatchMinutes() int {
	return ClampMatchMinutes(value().MatchMinutes)
}

// ClampMatchMinutes applies the operator bounds to a requested match limit.
func ClampMatchMinutes(v int) int {
	if v <= 0 {
		return defaultMatchMinutes
	}
	if v < minMatchMinutes {
		return minMatchMinutes
	}
	if v > maxMatchMinutes {
		return maxMatchMinutes
	}
	return v
}

// GraceSeconds returns the disconnect reconnect window.
func GraceSeconds() int {
	if v := value().GraceSeconds; v > 0 {
		return v
	}
	return defaultGraceSeconds
}

// TeardownSeconds returns the close grace window.
func TeardownSeconds() int {
	if v := value().TeardownSeconds; v > 0 {
		return v
	}
	return defaultTeardownSeconds
}

// ReclaimSecret returns the reclaim token signing secret, empty when unset.
func ReclaimSecret() string {
	return value().ReclaimSecret
}

// ReclaimIssuer returns the reclaim token issuer.
func ReclaimIssuer() string {
	if v := value().ReclaimIssuer; v != "" {
		return v
	}
	return "liverpool"
}

func value() *GameConfig {
	if cfg == nil {
		return &GameConfig{}
	}
	return cfg
}
