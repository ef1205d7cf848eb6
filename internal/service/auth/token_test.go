package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func validClaims() Claims {
	return Claims{
		CompanyID: "company-1",
		Role:      "DISPATCHER",
		Phone:     "+77001234567",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerify(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	identity, err := v.Verify(context.Background(), signToken(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", identity.UserID, "user-1")
	}
	if identity.CompanyID != "company-1" {
		t.Errorf("CompanyID = %q, want %q", identity.CompanyID, "company-1")
	}
	if identity.Role != types.RoleDispatcher {
		t.Errorf("Role = %q, want %q", identity.Role, types.RoleDispatcher)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	_, err := v.Verify(context.Background(), signToken(t, "other-secret", validClaims()))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	_, err := v.Verify(context.Background(), signToken(t, testSecret, claims))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsIncompleteClaims(t *testing.T) {
	v := NewTokenVerifier(testSecret)

	tests := []struct {
		name  string
		edit  func(*Claims)
	}{
		{"missing subject", func(c *Claims) { c.Subject = "" }},
		{"missing company", func(c *Claims) { c.CompanyID = "" }},
	}

	for _, tt := range tests {
		claims := validClaims()
		tt.edit(&claims)

		if _, err := v.Verify(context.Background(), signToken(t, testSecret, claims)); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", tt.name, err)
		}
	}
}
