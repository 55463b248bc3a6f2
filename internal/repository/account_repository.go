package repository

import (
	"context"
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/domain"
)

// AccountRepository creates a privilege record together with its
// optional credential record. Either both rows exist afterwards or
// neither does; an identity already held by either table is ErrConflict.
type AccountRepository interface {
	CreateAccount(ctx context.Context, user *domain.User, credential *domain.CredentialRecord) error
}

// rowQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation that
// writes both records in one transaction.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) CreateAccount(ctx context.Context, user *domain.User, credential *domain.CredentialRecord) error {
	return mapError(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		if credential == nil {
			return nil
		}
		return insertCredential(ctx, tx, credential)
	}))
}

func insertUser(ctx context.Context, q rowQuerier, user *domain.User) error {
	const query = `
        INSERT INTO users (id, identity, privileges, status)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Privileges == nil {
		user.Privileges = []string{}
	}
	return mapError(q.QueryRow(ctx, query,
		user.ID,
		user.Identity,
		user.Privileges,
		user.Status,
	).Scan(&user.CreatedAt, &user.UpdatedAt))
}

func insertCredential(ctx context.Context, q rowQuerier, record *domain.CredentialRecord) error {
	const query = `
        INSERT INTO credentials (id, identity, password_digest, salt, scheme)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	return mapError(q.QueryRow(ctx, query,
		record.ID,
		record.Identity,
		base64.StdEncoding.EncodeToString(record.PasswordDigest),
		auth.EncodeSalt(record.Salt),
		record.Scheme,
	).Scan(&record.CreatedAt))
}
