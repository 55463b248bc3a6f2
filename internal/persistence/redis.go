package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/config"
)

const redisDialCheck = 2 * time.Second

// Redis is the connection the bootstrap flow records consumed payload
// envelopes in. Nothing else is stored there.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and checks it once. An unreachable server
// is only logged: bootstrap answers 503 until Redis responds, while
// login and elevation keep working.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	checkCtx, cancel := context.WithTimeout(ctx, redisDialCheck)
	defer cancel()
	if err := client.Ping(checkCtx).Err(); err != nil {
		logger.Warn("replay store unreachable; bootstrap will fail closed", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("replay store connected", zap.String("addr", cfg.Addr))
	}
	return &Redis{Client: client}
}

// ReplayGuard returns a guard that claims envelopes in this Redis for
// window.
func (r *Redis) ReplayGuard(window time.Duration) *ReplayGuard {
	return NewReplayGuard(r.Client, window)
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping backs the readiness probe's redis entry.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("replay store has no redis client")
	}
	return r.Client.Ping(ctx).Err()
}
