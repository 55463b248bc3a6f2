package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-auth/internal/events"
	apperrors "github.com/spec-kit/campus-auth/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"
	tokenKey     = "auth_token"
)

var (
	errAuthorizationHeader = errors.New("malformed authorization header")
	errSessionCookie       = errors.New("session cookie does not decrypt")
)

// AuthMiddleware authenticates requests with a session token taken from
// the Authorization header or, failing that, the encrypted session
// cookie. Every presented credential that fails is published as a
// token_rejected event.
type AuthMiddleware struct {
	sessions   *TokenService
	cookies    *EncryptionService
	cookieName string
	dispatcher events.Dispatcher
}

// NewAuthMiddleware constructs middleware. cookies may be nil to accept
// bearer tokens only; a nil dispatcher drops rejection events.
func NewAuthMiddleware(sessions *TokenService, cookies *EncryptionService, cookieName string, dispatcher events.Dispatcher) *AuthMiddleware {
	if dispatcher == nil {
		dispatcher = events.NewNopDispatcher()
	}
	return &AuthMiddleware{sessions: sessions, cookies: cookies, cookieName: cookieName, dispatcher: dispatcher}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := m.token(c)
	if err != nil {
		m.reject(c, err.Error())
		return apperrors.NewUnauthenticated()
	}
	if token == "" {
		return apperrors.NewUnauthenticated()
	}
	claims, err := m.sessions.validate(token)
	if err != nil {
		m.sessions.logger.Debug("token rejected", zap.Error(err))
		m.reject(c, "session token: "+err.Error())
		return apperrors.NewUnauthenticated()
	}
	c.Locals(principalKey, claims)
	c.Locals(tokenKey, token)
	return c.Next()
}

func (m *AuthMiddleware) reject(c *fiber.Ctx, reason string) {
	ev := events.New(events.EventTokenRejected, "", reason, m.sessions.clock.Now())
	if err := m.dispatcher.Publish(c.UserContext(), ev); err != nil {
		m.sessions.logger.Warn("audit handler failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}

// token extracts the raw session token. It returns "" with a nil error
// when no credential was presented. A malformed Authorization header is
// an error even when a cookie is present.
func (m *AuthMiddleware) token(c *fiber.Ctx) (string, error) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", errAuthorizationHeader
		}
		return parts[1], nil
	}
	if m.cookies == nil || m.cookieName == "" {
		return "", nil
	}
	sealed := c.Cookies(m.cookieName)
	if sealed == "" {
		return "", nil
	}
	token, ok := m.cookies.Decrypt(sealed)
	if !ok {
		return "", errSessionCookie
	}
	return token, nil
}

// PrincipalFromContext returns the verified claims of the caller.
func PrincipalFromContext(c *fiber.Ctx) (Claims, bool) {
	claims, ok := c.Locals(principalKey).(Claims)
	return claims, ok
}

// TokenFromContext returns the raw session token the caller presented.
func TokenFromContext(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(tokenKey).(string)
	return token, ok
}
