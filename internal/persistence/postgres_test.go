package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/config"
	"github.com/spec-kit/campus-auth/internal/domain"
)

func TestStoresFallBackToMemory(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, pg.PoolHandle())
	assert.Error(t, pg.Ping(context.Background()))

	stores, durable := pg.Stores()
	assert.False(t, durable)

	ctx := context.Background()
	user := &domain.User{Identity: "u1", Status: domain.UserStatusActive}
	require.NoError(t, stores.Accounts.CreateAccount(ctx, user, nil))
	found, err := stores.Users.FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	other, _ := pg.Stores()
	_, err = other.Users.FindByIdentity(ctx, "u1")
	assert.Error(t, err)
}
