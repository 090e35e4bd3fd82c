// Package settings serves the account page of the signed in user.
package settings

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/auth"
	"github.com/bapti-church/bapti-web/internal/role"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	"github.com/bapti-church/bapti-web/internal/web/navigation"
)

const (
	// Path is the account page.
	Path = navigation.SettingsPath
	// PasswordPath changes the password of a local account.
	PasswordPath = Path + "/password"
)

// PasswordForm is the body of a password change.
type PasswordForm struct {
	CurrentPassword string `form:"currentPassword" json:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword"     json:"newPassword"     validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

// Page is the JSON body of Path.
type Page struct {
	Identity *account.Identity    `json:"identity"`
	Profile  *account.Profile     `json:"profile"`
	History  []account.LoginEvent `json:"history"`
	// AllUsers is set when History covers every account.
	AllUsers bool `json:"allUsers"`
}

// Service is the account page handler.
type Service struct {
	deps      *handler.Deps
	validator *validator.Validate
}

// Init registers the route behind the sign-in guard.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps
	s.validator = validator.New(validator.WithRequiredStructEnabled())

	signedIn := deps.Guard.RequireAuth(handler.Access)

	app.Get(Path, signedIn, s.Get)

	if deps.Local != nil {
		app.Post(PasswordPath, signedIn, s.ChangePassword)
	}

	return nil
}

// Get returns the caller's profile and login history. Developers see the
// history of every account.
func (s *Service) Get(c *fiber.Ctx) error {
	ac := handler.Access(c)
	identity := ac.Identity()
	p := ac.Profile()

	page := Page{Identity: identity, Profile: p}
	history := s.deps.Profiles.History()

	if p != nil && role.Has(p.Role, role.AccessDebug) {
		page.History = history.Entries()
		page.AllUsers = true
	} else {
		page.History = history.For(identity.Email)
	}

	if page.History == nil {
		page.History = []account.LoginEvent{}
	}

	return c.JSON(page)
}

// ChangePassword replaces the caller's local password after checking the
// current one. Accounts signed in through another provider get 404.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	form := new(PasswordForm)
	if err := c.BodyParser(form); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", "Invalid form data")
	}

	if err := s.validator.Struct(form); err != nil {
		return handler.JSONError(c, fiber.StatusUnprocessableEntity, "", "The new password must be 8 to 128 characters and differ from the current one")
	}

	identity := handler.Access(c).Identity()
	if identity.Provider != account.ProviderPassword {
		return handler.JSONError(c, fiber.StatusNotFound, "", "This account has no local password")
	}

	err := s.deps.Local.ChangePassword(c.UserContext(), identity.Email, form.CurrentPassword, form.NewPassword)

	switch {
	case err == nil:
		log.Info().Str("uid", identity.UID).Msg("password changed")

		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, "", "This account has no local password")
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return handler.JSONError(c, fiber.StatusForbidden, "", auth.ErrUserAccountDisabled.Error())
	case errors.Is(err, auth.ErrInvalidPassword):
		return handler.JSONError(c, fiber.StatusUnauthorized, string(auth.KindInvalidCredentials), "The current password is wrong")
	default:
		log.Error().Err(err).Str("uid", identity.UID).Msg("change password")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Failed to change password")
	}
}
