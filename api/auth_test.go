package api

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestAuthAcceptsValidToken(t *testing.T) {
	auth := NewTestAuth(testSecret)
	raw := signedToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	sub, err := auth.UserIDFromAuthHeader("Bearer " + raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("unexpected subject: %q", sub)
	}
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	auth := NewTestAuth(testSecret)

	if _, err := auth.UserIDFromAuthHeader(""); !errors.Is(err, errMissingAuthorization) {
		t.Fatalf("expected missing header error, got %v", err)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	auth := NewTestAuth(testSecret)

	for _, h := range []string{"Bearer", "Bearer ", "Basic abc", "justatoken"} {
		if _, err := auth.UserIDFromAuthHeader(h); !errors.Is(err, errBadAuthorization) {
			t.Fatalf("header %q: expected bad header error, got %v", h, err)
		}
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	auth := NewTestAuth(testSecret)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	raw, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := auth.UserIDFromAuthHeader("Bearer " + raw); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	auth := NewTestAuth(testSecret)
	raw := signedToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := auth.UserIDFromAuthHeader("Bearer " + raw); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestAuthRejectsMissingSubject(t *testing.T) {
	auth := NewTestAuth(testSecret)
	raw := signedToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := auth.UserIDFromAuthHeader("Bearer " + raw); err == nil {
		t.Fatal("expected token without sub to be rejected")
	}
}

func TestNewTestAuthPanicsOnEmptySecret(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty secret")
		}
	}()
	NewTestAuth("")
}
