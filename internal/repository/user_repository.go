package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-auth/internal/domain"
)

// UserRepository defines persistence access for privilege records.
// Records are created through AccountRepository.
type UserRepository interface {
	FindByIdentity(ctx context.Context, identity string) (*domain.User, error)
	SetPrivileges(ctx context.Context, identity string, privileges []string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) FindByIdentity(ctx context.Context, identity string) (*domain.User, error) {
	const query = `
        SELECT id, identity, privileges, status, created_at, updated_at
        FROM users WHERE identity=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, identity).Scan(
		&user.ID,
		&user.Identity,
		&user.Privileges,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepository) SetPrivileges(ctx context.Context, identity string, privileges []string) error {
	const query = `
        UPDATE users SET privileges=$1, updated_at=NOW()
        WHERE identity=$2`

	if privileges == nil {
		privileges = []string{}
	}
	cmd, err := r.pool.Exec(ctx, query, privileges, identity)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
