package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rahaft/bcasco-site/internal/domain/identity"
	"github.com/rahaft/bcasco-site/internal/ports/auth"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (s stubVerifier) Verify(context.Context, string) (auth.Claims, error) { return s.claims, s.err }

func captureIdentity(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) *identity.Identity {
	t.Helper()
	var got *identity.Identity
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetIdentity(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestAuthContext_DevHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")
	req.Header.Set("X-Debug-User-Email", "rosiehaft@gmail.com")

	id := captureIdentity(t, AuthContext(nil), req)
	if id == nil || id.UserID != "u-1" || id.Email != "rosiehaft@gmail.com" {
		t.Fatalf("unexpected identity %#v", id)
	}
}

func TestAuthContext_VerifierIgnoresDebugHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "u-1")

	if id := captureIdentity(t, AuthContext(stubVerifier{}), req); id != nil {
		t.Fatalf("expected anonymous request, got %#v", id)
	}
}

func TestAuthContext_BearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")

	id := captureIdentity(t, AuthContext(stubVerifier{claims: auth.Claims{UserID: "u-9", Email: "leahmberlin@gmail.com"}}), req)
	if id == nil || id.Email != "leahmberlin@gmail.com" {
		t.Fatalf("unexpected identity %#v", id)
	}
}

func TestAuthContext_InvalidTokenIsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")

	if id := captureIdentity(t, AuthContext(stubVerifier{err: errors.New("expired")}), req); id != nil {
		t.Fatalf("expected anonymous request, got %#v", id)
	}
}
