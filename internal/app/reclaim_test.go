package app

import (
	"testing"
	"time"
)

func TestReclaimTokenRoundTrip(t *testing.T) {
	svc := NewReclaimService("test-secret", "liverpool", time.Minute)

	token, err := svc.GenerateToken("room-1", "user-1", 3)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claim, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claim.RoomID != "room-1" || claim.UserID != "user-1" || claim.SeatIndex != 3 {
		t.Fatalf("claim %+v", claim)
	}
}

func TestReclaimTokenRejectsForeignSigner(t *testing.T) {
	issuer := NewReclaimService("test-secret", "liverpool", time.Minute)
	other := NewReclaimService("other-secret", "liverpool", time.Minute)

	token, err := other.GenerateToken("room-1", "user-1", 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("foreign signature accepted")
	}
}

func TestReclaimTokenRejectsForeignIssuer(t *testing.T) {
	svc := NewReclaimService("test-secret", "liverpool", time.Minute)
	foreign := NewReclaimService("test-secret", "someone-else", time.Minute)

	token, err := foreign.GenerateToken("room-1", "user-1", 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.Verify(token); err == nil {
		t.Fatal("foreign issuer accepted")
	}
}

func TestReclaimTokenExpires(t *testing.T) {
	svc := NewReclaimService("test-secret", "liverpool", -time.Minute)

	token, err := svc.GenerateToken("room-1", "user-1", 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.Verify(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestReclaimTokenRequiresConfiguration(t *testing.T) {
	svc := NewReclaimService("", "liverpool", time.Minute)
	if _, err := svc.GenerateToken("room-1", "user-1", 0); err == nil {
		t.Fatal("unconfigured service signed a token")
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	svc := NewReclaimService("test-secret", "liverpool", time.Minute)
	if _, err := svc.Verify("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
