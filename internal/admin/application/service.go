package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ateliemimos/store/internal/admin/domain"
)

var (
	// ErrBadCredentials is deliberately generic: it never reveals whether
	// the username exists.
	ErrBadCredentials = errors.New("incorrect credentials")
	ErrNoSession      = errors.New("no active session")

	ErrCurrentPassword  = errors.New("current password is incorrect")
	ErrPasswordTooShort = errors.New("new password must have at least 6 characters")
	ErrPasswordMismatch = errors.New("password confirmation does not match")
)

const minPasswordLen = 6

type Service struct {
	log      *slog.Logger
	repo     AdminRepository
	sessions SessionStore
}

func NewService(log *slog.Logger, repo AdminRepository, sessions SessionStore) *Service {
	return &Service{log: log, repo: repo, sessions: sessions}
}

// Login verifies the credentials and opens a server-side session. bcrypt's
// comparison is constant-time over the hash.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		return "", ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrBadCredentials
	}
	token, err := s.sessions.Create(ctx, u.Username)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.log.Info("admin login", "username", u.Username)
	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to the logged-in username.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	username, err := s.sessions.Username(ctx, token)
	if err != nil {
		return "", ErrNoSession
	}
	return username, nil
}

func (s *Service) ChangePassword(ctx context.Context, username, current, newPassword, confirm string) error {
	u, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		return ErrCurrentPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrCurrentPassword
	}
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, username, string(hash)); err != nil {
		return err
	}
	s.log.Info("admin password changed", "username", username)
	return nil
}

// Bootstrap creates the initial admin from configuration when no admin
// exists yet. Subsequent startups are no-ops.
func (s *Service) Bootstrap(ctx context.Context, username, password string) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := domain.AdminUser{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", "username", username)
	return nil
}
