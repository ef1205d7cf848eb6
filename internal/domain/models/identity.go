package models

import (
	"context"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
)

// Identity is the externally-authenticated caller. Issuing and verifying
// credentials happens outside this system; we only consume the claims.
type Identity struct {
	UserID    string
	CompanyID string
	Role      types.UserRole
	Phone     string
}

var anonymous = &Identity{}

func AnonymousIdentity() *Identity {
	return anonymous
}

func (i *Identity) IsAnonymous() bool {
	return i == anonymous || (i.UserID == "" && i.CompanyID == "")
}

type identityCtxKey struct{}

var identityKey = identityCtxKey{}

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}
