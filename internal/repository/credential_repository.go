package repository

import (
	"context"
	"encoding/base64"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/domain"
)

// CredentialRepository reads password digests keyed by identity.
// Records are created through AccountRepository.
type CredentialRepository interface {
	FindByIdentity(ctx context.Context, identity string) (*domain.CredentialRecord, error)
}

type credentialRepository struct {
	pool *pgxpool.Pool
}

// NewCredentialRepository returns a Postgres-backed implementation.
func NewCredentialRepository(pool *pgxpool.Pool) CredentialRepository {
	return &credentialRepository{pool: pool}
}

func (r *credentialRepository) FindByIdentity(ctx context.Context, identity string) (*domain.CredentialRecord, error) {
	const query = `
        SELECT id, identity, password_digest, salt, scheme, created_at
        FROM credentials WHERE identity=$1`

	var (
		record       domain.CredentialRecord
		digest, salt string
	)
	if err := r.pool.QueryRow(ctx, query, identity).Scan(
		&record.ID,
		&record.Identity,
		&digest,
		&salt,
		&record.Scheme,
		&record.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}

	var err error
	if record.PasswordDigest, err = base64.StdEncoding.DecodeString(digest); err != nil {
		return nil, err
	}
	if record.Salt, err = auth.DecodeSalt(salt); err != nil {
		return nil, err
	}
	return &record, nil
}
