package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/config"
	"github.com/bapti-church/bapti-web/internal/web/handler"
)

// LocalsUserID is the fiber.Locals key holding the signed in uid for the access log.
const LocalsUserID = "UserID"

// Middleware resolves the session cookie to an access context and stores it
// in fiber.Locals. It never rejects a request; route guards do that.
func Middleware(cfg *config.Config, registry *access.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IsInfraPath(c) {
			return c.Next()
		}

		sessionID := c.Cookies(handler.SessionCookie)
		ac := registry.Resolve(c.UserContext(), sessionID)

		// a cookie that no longer maps to a session is dropped
		if sessionID != "" && ac.Identity() == nil {
			handler.ClearSessionCookie(c, cfg)
		}

		c.Locals(handler.LocalsAccess, ac)

		if id := ac.Identity(); id != nil {
			c.Locals(LocalsUserID, id.UID)
		}

		return c.Next()
	}
}

// IsInfraPath reports whether the request targets a path that needs no session.
func IsInfraPath(c *fiber.Ctx) bool {
	p := strings.ToLower(c.Path())

	return strings.HasPrefix(p, "/static") || p == "/metrics" || p == "/checkalive"
}
