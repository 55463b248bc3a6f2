package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-auth/internal/api/dto"
	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/service"
	apperrors "github.com/spec-kit/campus-auth/pkg/util/errorutil"
)

// AdminHandler exposes privilege administration.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// SetPrivileges handles PUT /admin/users/:identity/privileges.
func (h *AdminHandler) SetPrivileges(c *fiber.Ctx) error {
	actor, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated()
	}
	var req dto.SetPrivilegesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.auth.SetPrivileges(c.UserContext(), actor.Identity, c.Params("identity"), req.Privileges); err != nil {
		return mapServiceError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
