package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/config"
	"github.com/spec-kit/campus-auth/internal/repository"
)

// Postgres holds the pool behind the users and credentials tables. A
// zero Pool means the service runs on the in-memory account store.
type Postgres struct {
	Pool *pgxpool.Pool
}

// AccountStores are the repositories the auth services are built on.
type AccountStores struct {
	Accounts    repository.AccountRepository
	Credentials repository.CredentialRepository
	Users       repository.UserRepository
}

// NewPostgres connects when POSTGRES_DSN is set and returns a
// pool-less handle otherwise.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		logger.Info("POSTGRES_DSN not set; skipping database connection")
		return &Postgres{}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	applyPoolLimits(poolCfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("account store connected",
		zap.Int32("max_conns", poolCfg.MaxConns),
		zap.Int32("min_conns", poolCfg.MinConns))
	return &Postgres{Pool: pool}, nil
}

func applyPoolLimits(poolCfg *pgxpool.Config, cfg config.PostgresConfig) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
}

// Stores returns Postgres repositories over the pool, or a fresh
// MemoryStore's views when there is none. durable reports which.
func (p *Postgres) Stores() (stores AccountStores, durable bool) {
	if pool := p.PoolHandle(); pool != nil {
		return AccountStores{
			Accounts:    repository.NewAccountRepository(pool),
			Credentials: repository.NewCredentialRepository(pool),
			Users:       repository.NewUserRepository(pool),
		}, true
	}
	mem := repository.NewMemoryStore()
	return AccountStores{
		Accounts:    mem.Accounts(),
		Credentials: mem.Credentials(),
		Users:       mem.Users(),
	}, false
}

// Close releases the pool.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// PoolHandle returns the pool, or nil when running in memory.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}

// Ping backs the readiness probe's postgres entry.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("account store has no postgres pool")
	}
	return p.Pool.Ping(ctx)
}
