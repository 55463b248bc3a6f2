package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-auth/internal/api/http/handlers"
	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Elevation      *service.ElevationService
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Get)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/bootstrap", cfg.Auth.Bootstrap)

	authGroup.Post("/elevate", cfg.AuthMiddleware.Handle, cfg.Auth.Elevate)
	authGroup.Get("/session", cfg.AuthMiddleware.Handle, cfg.Auth.Session)

	admin := app.Group("/admin",
		cfg.AuthMiddleware.Handle,
		auth.RequirePrivileges(domain.PrivilegeManageUsers),
		handlers.RequireStoredPrivileges(cfg.Elevation, domain.PrivilegeManageUsers),
	)
	admin.Put("/users/:identity/privileges", cfg.Admin.SetPrivileges)
}
