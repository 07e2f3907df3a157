package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ReclaimService issues and verifies seat-reclaim tokens. When a seated
// connection drops, the gateway hands the player a signed token; presenting it
// on reconnect within the grace window resumes the seat instead of forfeiting.
type ReclaimService struct {
	secret string
	issuer string
	ttl    time.Duration
}

// NewReclaimService builds a token service. ttl should match the disconnect
// grace window.
func NewReclaimService(secret, issuer string, ttl time.Duration) *ReclaimService {
	return &ReclaimService{secret: secret, issuer: issuer, ttl: ttl}
}

// ReclaimClaim is the verified content of a reclaim token.
type ReclaimClaim struct {
	RoomID    string
	UserID    string
	SeatIndex int
}

// GenerateToken signs a reclaim token for a dropped seat.
func (s *ReclaimService) GenerateToken(roomID, userID string, seatIndex int) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("reclaim service is not configured")
	}
	if roomID == "" || userID == "" {
		return "", fmt.Errorf("room and user are required")
	}

	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  userID,
		"exp":  time.Now().Add(s.ttl).Unix(),
		"room": roomID,
		"seat": seatIndex,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify parses a reclaim token and returns its claim, rejecting bad
// signatures, foreign issuers and expired windows.
func (s *ReclaimService) Verify(tokenString string) (ReclaimClaim, error) {
	if s == nil || s.secret == "" {
		return ReclaimClaim{}, fmt.Errorf("reclaim service is not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return ReclaimClaim{}, fmt.Errorf("invalid reclaim token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ReclaimClaim{}, fmt.Errorf("invalid reclaim token")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return ReclaimClaim{}, fmt.Errorf("reclaim token has a foreign issuer")
	}

	roomID, _ := claims["room"].(string)
	userID, _ := claims["sub"].(string)
	seat, _ := claims["seat"].(float64)
	if roomID == "" || userID == "" {
		return ReclaimClaim{}, fmt.Errorf("reclaim token is missing claims")
	}
	return ReclaimClaim{RoomID: roomID, UserID: userID, SeatIndex: int(seat)}, nil
}
