package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setNXOnly implements the single command the guard issues.
type setNXOnly struct {
	redis.Cmdable
	keys map[string]time.Duration
	err  error
}

func (s *setNXOnly) SetNX(_ context.Context, key string, _ interface{}, ttl time.Duration) *redis.BoolCmd {
	if s.err != nil {
		return redis.NewBoolResult(false, s.err)
	}
	if _, ok := s.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	s.keys[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestReplayGuardClaimsOnce(t *testing.T) {
	store := &setNXOnly{keys: map[string]time.Duration{}}
	guard := NewReplayGuard(store, time.Minute)
	ctx := context.Background()

	fresh, err := guard.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = guard.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, fresh)

	assert.Equal(t, time.Minute, store.keys[replayKeyPrefix+"abc"])
}

func TestReplayGuardDefaultsWindowAndPropagatesErrors(t *testing.T) {
	store := &setNXOnly{keys: map[string]time.Duration{}, err: errors.New("connection reset")}
	guard := NewReplayGuard(store, 0)
	assert.Equal(t, 5*time.Minute, guard.window)

	_, err := guard.Claim(context.Background(), "abc")
	assert.Error(t, err)
}
