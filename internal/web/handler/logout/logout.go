// Package logout ends sessions.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bapti-church/bapti-web/internal/web/handler"
)

// Path is the logout route.
const Path = handler.RootPath + "logout"

// Service is the logout handler service.
type Service struct {
	deps *handler.Deps
}

// Init registers the logout routes. They need no session.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)

	return nil
}

// Logout clears the session and sends the browser home, or to the
// provider's end session page after a federated login.
func (s *Service) Logout(c *fiber.Ctx) error {
	target := handler.RootPath

	if sessionID := c.Cookies(handler.SessionCookie); sessionID != "" {
		res := s.deps.Auth.Logout(c.UserContext(), sessionID)
		if res.RedirectURL != "" {
			target = res.RedirectURL
		}
	}

	handler.ClearSessionCookie(c, s.deps.Cfg)

	return c.Redirect(target, fiber.StatusFound)
}
