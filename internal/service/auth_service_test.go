package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/events"
	"github.com/spec-kit/campus-auth/internal/repository"
)

func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t, "posts:write")
	ctx := context.Background()

	user, issued, err := f.accounts.Register(ctx, "u1", "pw")
	require.NoError(t, err)
	assert.Equal(t, []string{"posts:write"}, user.Privileges)
	assert.Equal(t, f.clock.Now().Add(time.Hour).Unix(), issued.ExpiresAt.Unix())

	_, logged, err := f.accounts.Login(ctx, "u1", "pw")
	require.NoError(t, err)
	claims, err := f.sessions.Verify(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Identity)
	assert.Equal(t, []string{"posts:write"}, claims.Privileges)

	_, wrong, err := f.accounts.Login(ctx, "u1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, wrong.Token)

	assert.Equal(t, []events.EventType{
		events.EventAccountRegistered,
		events.EventLoginSucceeded,
		events.EventLoginFailed,
	}, f.recorder.types())
	assert.Equal(t, "password mismatch", f.recorder.last().Reason)
}

func TestRegisterStoresSaltedDigest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.accounts.Register(ctx, "a", "same")
	require.NoError(t, err)
	_, _, err = f.accounts.Register(ctx, "b", "same")
	require.NoError(t, err)

	a := f.credentials.records["a"]
	b := f.credentials.records["b"]
	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.PasswordDigest, b.PasswordDigest)
	assert.Equal(t, "sha256", a.Scheme)
}

func TestRegisterRejectsDuplicateIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.accounts.Register(ctx, "u1", "pw")
	require.NoError(t, err)
	_, _, err = f.accounts.Register(ctx, "u1", "other")
	assert.ErrorIs(t, err, ErrIdentityTaken)

	_, _, err = f.accounts.Login(ctx, "u1", "pw")
	assert.NoError(t, err)
}

func TestRegisterValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tc := range []struct {
		name, identity, password string
	}{
		{"empty identity", "", "pw"},
		{"padded identity", " u1", "pw"},
		{"empty password", "u1", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.accounts.Register(ctx, tc.identity, tc.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.accounts.Register(ctx, "u1", "pw")
	require.NoError(t, err)
	f.users.put("u1", domain.UserStatusSuspended)

	_, _, unknown := f.accounts.Login(ctx, "nobody", "pw")
	_, _, suspended := f.accounts.Login(ctx, "u1", "pw")
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.ErrorIs(t, suspended, ErrInvalidCredentials)
	assert.Equal(t, unknown.Error(), suspended.Error())
	assert.Equal(t, "account suspended", f.recorder.last().Reason)
}

func TestLoginStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.credentials.err = errors.New("connection refused")

	_, _, err := f.accounts.Login(context.Background(), "u1", "pw")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRetriesAfterStoreFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.credentials.err = errors.New("db blip")
	_, _, err := f.accounts.Register(ctx, "u1", "pw")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = f.users.FindByIdentity(ctx, "u1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	f.credentials.err = nil
	_, _, err = f.accounts.Register(ctx, "u1", "pw")
	require.NoError(t, err)
	_, _, err = f.accounts.Login(ctx, "u1", "pw")
	assert.NoError(t, err)
}

func TestSetPrivileges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.accounts.Register(ctx, "u1", "pw")
	require.NoError(t, err)

	require.NoError(t, f.accounts.SetPrivileges(ctx, "admin", "u1", []string{"a", " b ", "a", ""}))
	user, err := f.users.FindByIdentity(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, user.Privileges)

	ev := f.recorder.last()
	assert.Equal(t, events.EventPrivilegesChanged, ev.Type)
	assert.Equal(t, events.PrivilegesChangedPayload{ChangedBy: "admin", Privileges: []string{"a", "b"}}, ev.Payload)

	err = f.accounts.SetPrivileges(ctx, "admin", "ghost", []string{"a"})
	assert.ErrorIs(t, err, ErrUnknownIdentity)
}
