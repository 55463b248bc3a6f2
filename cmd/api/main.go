package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/campus-auth/internal/api/http"
	"github.com/spec-kit/campus-auth/internal/api/http/handlers"
	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/clock"
	"github.com/spec-kit/campus-auth/internal/config"
	"github.com/spec-kit/campus-auth/internal/events"
	"github.com/spec-kit/campus-auth/internal/observability"
	"github.com/spec-kit/campus-auth/internal/persistence"
	"github.com/spec-kit/campus-auth/internal/service"
	"github.com/spec-kit/campus-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Key material is parsed once, before anything listens.
	signatures, err := auth.LoadSignatureService(cfg.Auth.SigningPublicKey, cfg.Auth.SigningPrivateKey)
	if err != nil {
		logger.Fatal("failed to load signing keys", zap.Error(err))
	}
	cookies, err := auth.LoadEncryptionService(cfg.Auth.EncryptionPublicKey, cfg.Auth.EncryptionPrivateKey)
	if err != nil {
		logger.Fatal("failed to load encryption keys", zap.Error(err))
	}
	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordScheme)
	if err != nil {
		logger.Fatal("invalid password scheme", zap.Error(err))
	}

	clk := clock.Real()
	sessions, err := auth.NewTokenService(signatures, auth.TokenConfig{
		Issuer:   cfg.Auth.TokenIssuer,
		Audience: cfg.Auth.TokenAudience,
		TTL:      cfg.Auth.SessionTTL(),
	}, clk, logger.Named("session"))
	if err != nil {
		logger.Fatal("failed to build session tokens", zap.Error(err))
	}
	transport, err := auth.NewTokenService(signatures, auth.TokenConfig{
		Issuer:   cfg.Auth.TokenIssuer,
		Audience: cfg.Auth.TransportAudience,
		TTL:      cfg.Auth.TransportTTL(),
	}, clk, logger.Named("transport"))
	if err != nil {
		logger.Fatal("failed to build transport tokens", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), os.DirFS(persistence.MigrationsDir), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	readiness := map[string]handlers.Pinger{"redis": redis}
	stores, durable := pg.Stores()
	if durable {
		readiness["postgres"] = pg
	} else {
		logger.Warn("using in-memory account store; accounts are lost on restart")
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	authService := service.NewAuthService(service.AuthDependencies{
		AccountRepo:       stores.Accounts,
		CredentialRepo:    stores.Credentials,
		UserRepo:          stores.Users,
		Hasher:            hasher,
		Sessions:          sessions,
		Dispatcher:        dispatcher,
		Clock:             clk,
		Logger:            logger,
		DefaultPrivileges: cfg.Auth.DefaultPrivileges,
	})
	bootstrapService := service.NewBootstrapService(
		authService,
		auth.NewPayloadVerifier(signatures, logger.Named("payload")),
		transport,
		redis.ReplayGuard(cfg.Auth.ReplayWindow()),
	)
	elevationService := service.NewElevationService(sessions, stores.Users, dispatcher, clk, logger)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		Immutable: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Metrics: handlers.NewMetricsHandler(metrics),
		Auth: handlers.NewAuthHandler(authService, bootstrapService, elevationService, cookies, handlers.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		}),
		Admin:          handlers.NewAdminHandler(authService),
		Elevation:      elevationService,
		AuthMiddleware: auth.NewAuthMiddleware(sessions, cookies, cfg.Auth.CookieName, dispatcher),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
