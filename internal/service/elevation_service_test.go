package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/events"
)

func newElevation(f *fixture) *ElevationService {
	return NewElevationService(f.sessions, f.users, f.accounts.dispatcher, f.clock, nil)
}

func issueFor(t *testing.T, f *fixture, identity string, privileges ...string) string {
	t.Helper()
	token, _, err := f.sessions.Sign(auth.Claims{Identity: identity, Privileges: privileges})
	require.NoError(t, err)
	return token
}

func TestElevateRequiresEveryRequestedPrivilege(t *testing.T) {
	f := newFixture(t)
	elevation := newElevation(f)
	ctx := context.Background()
	token := issueFor(t, f, "u1", "A")

	f.users.put("u1", domain.UserStatusActive, "A")
	_, err := elevation.Elevate(ctx, token, []string{"A", "B"})
	assert.ErrorIs(t, err, ErrInsufficientPrivileges)
	assert.Equal(t, events.EventElevationDenied, f.recorder.last().Type)
	assert.Equal(t, "missing privilege B", f.recorder.last().Reason)

	f.users.put("u1", domain.UserStatusActive, "A", "B")
	renewed, err := elevation.Elevate(ctx, token, []string{"A", "B"})
	require.NoError(t, err)

	claims, err := f.sessions.Verify(renewed.Token)
	require.NoError(t, err)
	// Renewal never grants: B is confirmed but not added.
	assert.Equal(t, auth.Claims{Identity: "u1", Privileges: []string{"A"}}, claims)
}

func TestElevateEmptyRequestOnlyNeedsValidToken(t *testing.T) {
	f := newFixture(t)
	elevation := newElevation(f)
	f.users.err = errors.New("store must not be consulted")
	token := issueFor(t, f, "ghost", "A")

	f.clock.Advance(30 * time.Minute)
	renewed, err := elevation.Elevate(context.Background(), token, nil)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(time.Hour).Unix(), renewed.ExpiresAt.Unix())
	assert.Equal(t, events.EventTokenRenewed, f.recorder.last().Type)
}

func TestElevateRejectsInvalidToken(t *testing.T) {
	f := newFixture(t)
	elevation := newElevation(f)
	token := issueFor(t, f, "u1")

	f.clock.Advance(time.Hour)
	_, err := elevation.Elevate(context.Background(), token, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = elevation.Elevate(context.Background(), "not-a-token", []string{"A"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, events.EventTokenRejected, f.recorder.last().Type)
}

func TestElevateMissingOrSuspendedRecord(t *testing.T) {
	f := newFixture(t)
	elevation := newElevation(f)
	token := issueFor(t, f, "u1", "A")

	_, err := elevation.Elevate(context.Background(), token, []string{"A"})
	assert.ErrorIs(t, err, ErrInsufficientPrivileges)

	f.users.put("u1", domain.UserStatusSuspended, "A")
	_, err = elevation.Elevate(context.Background(), token, []string{"A"})
	assert.ErrorIs(t, err, ErrInsufficientPrivileges)
}

func TestElevateStoreUnavailable(t *testing.T) {
	f := newFixture(t)
	elevation := newElevation(f)
	f.users.err = errors.New("timeout")

	_, err := elevation.Elevate(context.Background(), issueFor(t, f, "u1", "A"), []string{"A"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInsufficientPrivileges)
}
