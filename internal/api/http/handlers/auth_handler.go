package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-auth/internal/api/dto"
	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/service"
	apperrors "github.com/spec-kit/campus-auth/pkg/util/errorutil"
)

// Header names for the edge-signed bootstrap call.
const (
	HeaderPayloadSignature = "X-Payload-Signature"
	HeaderTransportToken   = "X-Transport-Token"
)

// CookieConfig controls the encrypted session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler exposes session endpoints.
type AuthHandler struct {
	auth      *service.AuthService
	bootstrap *service.BootstrapService
	elevation *service.ElevationService
	cookies   *auth.EncryptionService
	cookie    CookieConfig
}

// NewAuthHandler constructs handler. cookies may be nil, in which case
// no session cookie is set.
func NewAuthHandler(authService *service.AuthService, bootstrap *service.BootstrapService, elevation *service.ElevationService, cookies *auth.EncryptionService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		auth:      authService,
		bootstrap: bootstrap,
		elevation: elevation,
		cookies:   cookies,
		cookie:    cookie,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, issued, err := h.auth.Register(c.UserContext(), req.Identity, req.Password)
	if err != nil {
		return mapServiceError(err)
	}
	if err := h.setSessionCookie(c, issued); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.NewAuthResponse(issued),
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Identity == "" || req.Password == "" {
		return apperrors.NewValidationError("identity and password required", nil)
	}

	user, issued, err := h.auth.Login(c.UserContext(), req.Identity, req.Password)
	if err != nil {
		return mapServiceError(err)
	}
	if err := h.setSessionCookie(c, issued); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.NewAuthResponse(issued),
		},
	})
}

// Logout handles POST /auth/logout. Tokens are not revocable; this only
// clears the cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if h.cookie.Name != "" {
		c.Cookie(&fiber.Cookie{
			Name:     h.cookie.Name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   h.cookie.Secure,
			SameSite: fiber.CookieSameSiteStrictMode,
		})
	}
	return c.SendStatus(http.StatusNoContent)
}

// Bootstrap handles POST /auth/bootstrap, the edge-signed account
// creation path.
func (h *AuthHandler) Bootstrap(c *fiber.Ctx) error {
	envelope := c.Get(HeaderPayloadSignature)
	if envelope == "" {
		return apperrors.NewInvalidSignature()
	}
	var req service.BootstrapRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, issued, err := h.bootstrap.Bootstrap(c.UserContext(), envelope, req, c.Get(HeaderTransportToken))
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(user),
			"auth": dto.NewAuthResponse(issued),
		},
	})
}

// Elevate handles POST /auth/elevate.
func (h *AuthHandler) Elevate(c *fiber.Ctx) error {
	token, ok := auth.TokenFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated()
	}
	var req dto.ElevateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	issued, err := h.elevation.Elevate(c.UserContext(), token, req.Privileges)
	if err != nil {
		return mapServiceError(err)
	}
	if err := h.setSessionCookie(c, issued); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"auth": dto.NewAuthResponse(issued)}})
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	claims, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated()
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Identity:   claims.Identity,
		Privileges: claims.Privileges,
	}})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, issued domain.IssuedToken) error {
	if h.cookies == nil || h.cookie.Name == "" {
		return nil
	}
	sealed, err := h.cookies.Encrypt(issued.Token)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    sealed,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return nil
}
