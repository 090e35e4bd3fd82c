package guard

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/role"
)

// Resolver returns the access context of a request, nil if there is none.
type Resolver func(c *fiber.Ctx) *access.Context

// RequireAuth lets signed in requests through and redirects the rest to
// the login page with the requested location in returnUrl.
func (g *Guard) RequireAuth(resolve Resolver) fiber.Handler {
	return g.Require(resolve)
}

// RequireRoles is RequireAuth followed by a role check. A signed in user
// without a matching role is sent home.
func (g *Guard) RequireRoles(resolve Resolver, required ...role.Role) fiber.Handler {
	return g.Require(resolve, required...)
}

// Require evaluates every request and either passes it on or redirects.
func (g *Guard) Require(resolve Resolver, required ...role.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ev := g.Evaluate(resolve(c), c.OriginalURL(), required...)
		if ev.Allowed {
			return c.Next()
		}

		log.Debug().
			Str("path", c.Path()).
			Str("redirect", ev.Redirect).
			Msg("guard denied request")

		return c.Redirect(RedirectURL(ev.Decision), fiber.StatusFound)
	}
}

// RedirectURL renders a denial as a location, adding returnUrl when set.
func RedirectURL(d Decision) string {
	if d.ReturnURL == "" {
		return d.Redirect
	}

	return d.Redirect + "?returnUrl=" + url.QueryEscape(d.ReturnURL)
}
