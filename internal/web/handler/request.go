package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/config"
)

// Access returns the access context the middleware resolved, or an
// anonymous one.
func Access(c *fiber.Ctx) *access.Context {
	if ac, ok := c.Locals(LocalsAccess).(*access.Context); ok && ac != nil {
		return ac
	}

	return access.NewContext("")
}

// Actor returns the profile of the signed in user, nil if unknown.
func Actor(c *fiber.Ctx) *account.Profile {
	return Access(c).Profile()
}

// ClientMeta describes the client of c for the login history.
func ClientMeta(c *fiber.Ctx) account.ClientMeta {
	return account.ClientMeta{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Platform:  strings.Trim(c.Get("Sec-CH-UA-Platform"), `"`),
		IP:        c.IP(),
	}
}

// SafeReturnURL returns u if it is a local absolute path, otherwise "/".
func SafeReturnURL(u string) string {
	if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, `/\`) {
		return RootPath
	}

	return u
}

// SetSessionCookie stores sessionID in the session cookie until expiresAt.
func SetSessionCookie(c *fiber.Ctx, cfg *config.Config, sessionID string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     RootPath,
		Expires:  expiresAt,
		Secure:   !cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(c *fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     RootPath,
		MaxAge:   -1,
		Secure:   !cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Fields  any    `json:"fields,omitempty"`
}

// JSONError writes an ErrorBody with status.
func JSONError(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(ErrorBody{Kind: kind, Message: message})
}
