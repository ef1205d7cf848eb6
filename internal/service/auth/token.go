// Package auth consumes externally-issued credentials. Issuing, refresh and
// revocation live outside this system; we only verify the signature and map
// claims onto a caller identity.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the externally-issued access token claims this system
// consumes.
type Claims struct {
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	Phone     string `json:"phone_number,omitempty"`
	jwt.RegisteredClaims
}

type TokenVerifier struct {
	secret string
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: secret}
}

// Verify parses and validates an access token and returns the caller
// identity it carries.
func (v *TokenVerifier) Verify(ctx context.Context, tokenString string) (*models.Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.CompanyID == "" {
		return nil, ErrInvalidToken
	}

	return &models.Identity{
		UserID:    claims.Subject,
		CompanyID: claims.CompanyID,
		Role:      types.UserRole(claims.Role),
		Phone:     claims.Phone,
	}, nil
}
