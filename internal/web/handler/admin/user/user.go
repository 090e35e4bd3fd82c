// Package user provides the role management of the admin area.
package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/auth"
	"github.com/bapti-church/bapti-web/internal/profile"
	"github.com/bapti-church/bapti-web/internal/role"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	"github.com/bapti-church/bapti-web/internal/web/navigation"
)

// Path is the base path for role management.
const Path = navigation.AdminRolesPath

// RoleForm is the body of a role change.
type RoleForm struct {
	Role string `form:"role" json:"role"`
}

// ActiveForm is the body of an account enable or disable.
type ActiveForm struct {
	Active *bool `form:"active" json:"active"`
}

// Messages shown when a change is refused. The concrete reason is logged only.
const (
	MsgPermissionDenied = "You do not have permission to change this user."
	MsgUserNotFound     = "User not found."
)

// Row is one user as listed to an admin.
type Row struct {
	*account.Profile
	RoleName string `json:"roleName"`
	// Editable is false for the caller's own row and for users above the
	// caller's reach.
	Editable bool `json:"editable"`
}

// List is the JSON body of the listing.
type List struct {
	Users           []Row       `json:"users"`
	AssignableRoles []role.Role `json:"assignableRoles"`
}

// Service provides listing and role changes.
type Service struct {
	deps *handler.Deps
}

// Init registers routes for admins and developers.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	guard := deps.Guard.RequireRoles(handler.Access, navigation.AdminRoles...)

	app.Get(Path, guard, s.List)
	app.Put(Path+"/:uid", guard, s.Update)

	if deps.Local != nil {
		app.Put(Path+"/:uid/active", guard, s.SetActive)
	}

	return nil
}

// List shows all users, filtered by the q query parameter.
func (s *Service) List(c *fiber.Ctx) error {
	actor := handler.Actor(c)

	users, err := s.deps.Profiles.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		log.Error().Err(err).Msg("list users")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Failed to load users")
	}

	out := List{Users: make([]Row, 0, len(users)), AssignableRoles: []role.Role{}}
	if actor != nil {
		out.AssignableRoles = append(out.AssignableRoles, role.AssignableRoles(actor.Role)...)
	}

	for _, p := range users {
		out.Users = append(out.Users, Row{
			Profile:  p,
			RoleName: role.DisplayName(p.Role),
			Editable: actor != nil && actor.UID != p.UID &&
				role.CanAssign(actor.Role, p.Role, role.Guest, false) == nil,
		})
	}

	return c.JSON(out)
}

// Update changes the role of the user in the uid parameter.
func (s *Service) Update(c *fiber.Ctx) error {
	form := new(RoleForm)
	if err := c.BodyParser(form); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", "Invalid form data")
	}

	next, err := role.Parse(form.Role)
	if err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", err.Error())
	}

	updated, err := s.deps.Profiles.UpdateRole(c.UserContext(), handler.Actor(c), c.Params("uid"), next)
	if err != nil {
		return updateError(c, err)
	}

	return c.JSON(Row{Profile: updated, RoleName: role.DisplayName(updated.Role), Editable: true})
}

// SetActive enables or disables local sign-in for the user in the uid
// parameter. The same reach rules as role changes apply.
func (s *Service) SetActive(c *fiber.Ctx) error {
	form := new(ActiveForm)
	if err := c.BodyParser(form); err != nil || form.Active == nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", "Invalid form data")
	}

	actor := handler.Actor(c)
	if actor == nil {
		return updateError(c, profile.ErrNotAuthenticated)
	}

	target, err := s.deps.Profiles.Get(c.UserContext(), c.Params("uid"))
	if err != nil {
		return updateError(c, err)
	}

	if err = role.CanAssign(actor.Role, target.Role, role.Guest, actor.UID == target.UID); err != nil {
		log.Warn().Err(err).Str("actor", actor.UID).Str("target", target.UID).Msg("account toggle refused")

		return updateError(c, err)
	}

	err = s.deps.Local.SetActive(c.UserContext(), target.Email, *form.Active)
	if errors.Is(err, auth.ErrUserNotFound) {
		return handler.JSONError(c, fiber.StatusNotFound, "", "This user has no local account")
	}

	if err != nil {
		return updateError(c, err)
	}

	log.Info().
		Str("actor", actor.UID).
		Str("target", target.UID).
		Bool("active", *form.Active).
		Msg("account sign-in toggled")

	return c.SendStatus(fiber.StatusNoContent)
}

func updateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, profile.ErrNotAuthenticated):
		return handler.JSONError(c, fiber.StatusUnauthorized, "", "Sign in required.")
	case errors.Is(err, profile.ErrRoleAssignmentForbidden), errors.Is(err, profile.ErrPermissionDenied):
		log.Debug().Err(err).Msg("user change refused")

		return handler.JSONError(c, fiber.StatusForbidden, "", MsgPermissionDenied)
	case errors.Is(err, profile.ErrProfileNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, "", MsgUserNotFound)
	default:
		log.Error().Err(err).Msg("update role")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Failed to update role")
	}
}
