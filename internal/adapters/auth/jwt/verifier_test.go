package jwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rahaft/bcasco-site/internal/ports/auth"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func fixedVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier("test-secret", "bcasco-idp", "")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	v.now = func() time.Time { return now }
	return v
}

func TestVerifier_RoundTrip(t *testing.T) {
	now := time.Date(2025, 11, 21, 9, 0, 0, 0, time.UTC)
	v := fixedVerifier(t, now)

	tok, err := v.Sign("u-42", "bwiseman84@hotmail.com", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := v.Verify(context.Background(), tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u-42" || claims.Email != "bwiseman84@hotmail.com" {
		t.Fatalf("unexpected claims %#v", claims)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %s", claims.ExpiresAt)
	}
}

func TestVerifier_Expired(t *testing.T) {
	now := time.Date(2025, 11, 21, 9, 0, 0, 0, time.UTC)
	v := fixedVerifier(t, now)
	tok, _ := v.Sign("u-42", "bwiseman84@hotmail.com", time.Minute)

	v.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := v.Verify(context.Background(), tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifier_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Date(2025, 11, 21, 9, 0, 0, 0, time.UTC)
	v := fixedVerifier(t, now)

	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "u-1",
			Issuer:    "bcasco-idp",
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := v.Verify(context.Background(), tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifier_WrongIssuer(t *testing.T) {
	now := time.Date(2025, 11, 21, 9, 0, 0, 0, time.UTC)
	other, _ := NewVerifier("test-secret", "someone-else", "")
	other.now = func() time.Time { return now }
	tok, _ := other.Sign("u-1", "x@example.com", time.Hour)

	if _, err := fixedVerifier(t, now).Verify(context.Background(), tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
