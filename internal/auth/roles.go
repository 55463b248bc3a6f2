package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/campus-auth/pkg/util/errorutil"
)

// RequirePrivileges ensures the caller's token carries every named
// privilege. It reads the token only, so routes that act on those
// privileges follow it with a check against stored state.
func RequirePrivileges(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated()
		}
		if !claims.HasPrivileges(names...) {
			return apperrors.NewForbidden("insufficient privileges")
		}
		return c.Next()
	}
}
