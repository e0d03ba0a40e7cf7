package application

import (
	"context"

	"github.com/ateliemimos/store/internal/admin/domain"
)

type AdminRepository interface {
	ByUsername(ctx context.Context, username string) (domain.AdminUser, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, u domain.AdminUser) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// SessionStore holds server-side admin sessions keyed by opaque token.
type SessionStore interface {
	Create(ctx context.Context, username string) (string, error)
	Username(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}
