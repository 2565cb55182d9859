package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessToken_RoundTripCarriesRole(t *testing.T) {
	svc := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	id := uuid.New()

	tok, err := svc.GenerateAccessToken(id, "owner@example.com", "owner")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != id || claims.Role != "owner" || claims.TokenType != TokenTypeAccess {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if svc.IsRefreshToken(claims) {
		t.Fatalf("access token reported as refresh")
	}
}

func TestRefreshToken_IsRefresh(t *testing.T) {
	svc := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	tok, err := svc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !svc.IsRefreshToken(claims) {
		t.Fatalf("expected refresh token")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := svc.GenerateAccessToken(uuid.New(), "", "seeker")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.ValidateToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	a := NewHMACService("a", "b", time.Minute, time.Hour)
	b := NewHMACService("c", "d", time.Minute, time.Hour)

	tok, _ := a.GenerateAccessToken(uuid.New(), "", "seeker")
	if _, err := b.ValidateToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
