package middleware

import (
	"context"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
)

type (
	// AuthService verifies externally-issued access tokens.
	AuthService interface {
		Verify(ctx context.Context, token string) (*models.Identity, error)
	}

	Middleware struct {
		auth AuthService
		log  logger.Logger
	}
)

func NewMiddleware(auth AuthService, log logger.Logger) *Middleware {
	return &Middleware{
		auth: auth,
		log:  log,
	}
}
