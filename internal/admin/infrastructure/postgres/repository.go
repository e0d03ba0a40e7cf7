package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ateliemimos/store/internal/admin/domain"
)

var ErrNotFound = errors.New("admin not found")

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) ByUsername(ctx context.Context, username string) (domain.AdminUser, error) {
	var u domain.AdminUser
	err := r.pool.QueryRow(ctx, `SELECT id, username, password_hash, created_at FROM admins WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AdminUser{}, ErrNotFound
	}
	if err != nil {
		return domain.AdminUser{}, err
	}
	return u, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM admins`).Scan(&n)
	return n, err
}

func (r *Repository) Create(ctx context.Context, u domain.AdminUser) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO admins (id, username, password_hash, created_at) VALUES ($1,$2,$3,$4)`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt)
	return err
}

func (r *Repository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE admins SET password_hash=$2 WHERE username=$1`, username, passwordHash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
