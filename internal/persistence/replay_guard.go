package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "campus-auth:payload:"

// ReplayGuard remembers consumed signed payloads in Redis for a fixed
// window.
type ReplayGuard struct {
	client redis.Cmdable
	window time.Duration
}

// NewReplayGuard returns a guard over client. A zero window falls back
// to five minutes.
func NewReplayGuard(client redis.Cmdable, window time.Duration) *ReplayGuard {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &ReplayGuard{client: client, window: window}
}

// Claim atomically marks key as consumed. It reports false when key was
// already claimed within the window.
func (g *ReplayGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, replayKeyPrefix+key, time.Now().Unix(), g.window).Result()
}
