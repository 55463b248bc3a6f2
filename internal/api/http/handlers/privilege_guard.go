package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/service"
	apperrors "github.com/spec-kit/campus-auth/pkg/util/errorutil"
)

// RequireStoredPrivileges re-checks the caller against the user store
// before the route runs. A token minted before a revocation or a
// suspension is refused here even though it still verifies.
func RequireStoredPrivileges(elevation *service.ElevationService, names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := auth.PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated()
		}
		if err := elevation.Confirm(c.UserContext(), claims.Identity, names); err != nil {
			return mapServiceError(err)
		}
		return c.Next()
	}
}
