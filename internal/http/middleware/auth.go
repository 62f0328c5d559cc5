package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/auth"
)

const (
	// PrincipalLocalKey is the Fiber locals key holding the auth.Principal.
	PrincipalLocalKey = "principal"
	// authErrorLocalKey holds why a presented token was not accepted.
	authErrorLocalKey = "auth_error"
)

// Authenticate attaches the bearer token's principal to the request. Requests without
// a usable token continue anonymously, so public routes keep working with a stale
// token; RequireAuth and RequireAdmin report the rejected token.
func Authenticate(tm *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			c.Locals(authErrorLocalKey, "malformed authorization header")
			return c.Next()
		}
		p, err := tm.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.Locals(authErrorLocalKey, "invalid or expired token")
			return c.Next()
		}
		c.Locals(PrincipalLocalKey, p)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	if reason, ok := c.Locals(authErrorLocalKey).(string); ok {
		return fiber.NewError(fiber.StatusUnauthorized, reason)
	}
	return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
}

// RequireAuth rejects anonymous requests.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetPrincipal(c).Authenticated() {
			return unauthorized(c)
		}
		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if !p.Authenticated() {
			return unauthorized(c)
		}
		if !p.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "admin role required")
		}
		return c.Next()
	}
}

// GetPrincipal returns the caller, the zero Principal when anonymous.
func GetPrincipal(c *fiber.Ctx) auth.Principal {
	p, _ := c.Locals(PrincipalLocalKey).(auth.Principal)
	return p
}
