package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-auth/internal/domain"
)

func TestMemoryStoreUsers(t *testing.T) {
	store := NewMemoryStore()
	users := store.Users()
	ctx := context.Background()

	user := &domain.User{Identity: "u1", Status: domain.UserStatusActive}
	require.NoError(t, store.Accounts().CreateAccount(ctx, user, nil))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, []string{}, user.Privileges)
	assert.ErrorIs(t, store.Accounts().CreateAccount(ctx, &domain.User{Identity: "u1"}, nil), ErrConflict)

	require.NoError(t, users.SetPrivileges(ctx, "u1", []string{"a"}))
	found, err := users.FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, found.Privileges)

	found.Privileges[0] = "mutated"
	again, err := users.FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Privileges)

	_, err = users.FindByIdentity(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, users.SetPrivileges(ctx, "nobody", nil), ErrNotFound)
}

func TestMemoryStoreAccounts(t *testing.T) {
	store := NewMemoryStore()
	accounts := store.Accounts()
	ctx := context.Background()

	record := &domain.CredentialRecord{Identity: "u1", PasswordDigest: []byte{1}, Salt: []byte{2}, Scheme: "sha256"}
	require.NoError(t, accounts.CreateAccount(ctx, &domain.User{Identity: "u1"}, record))
	assert.NotEmpty(t, record.ID)

	rec, err := store.Credentials().FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, rec.ID)
	assert.Equal(t, []byte{2}, rec.Salt)

	err = accounts.CreateAccount(ctx, &domain.User{Identity: "u1"}, &domain.CredentialRecord{Identity: "u1"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStoreAccountsWriteNothingOnConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	store.credentials["u1"] = domain.CredentialRecord{Identity: "u1"}

	err := store.Accounts().CreateAccount(ctx, &domain.User{Identity: "u1"}, &domain.CredentialRecord{Identity: "u1"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.Users().FindByIdentity(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}
