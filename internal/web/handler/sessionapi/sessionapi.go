// Package sessionapi reports the access state of the caller.
package sessionapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/role"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	"github.com/bapti-church/bapti-web/internal/web/navigation"
)

// Path of the session snapshot.
const Path = handler.RootPath + "api/session"

// Snapshot is the JSON body of Path.
type Snapshot struct {
	State           string            `json:"state"`
	Identity        *account.Identity `json:"identity"`
	Profile         *account.Profile  `json:"profile"`
	RoleName        string            `json:"roleName,omitempty"`
	Permissions     []role.Capability `json:"permissions"`
	AssignableRoles []role.Role       `json:"assignableRoles"`
	Menu            []navigation.Item `json:"menu"`
}

// Service is the session snapshot handler.
type Service struct{}

// Init registers the route.
func (s *Service) Init(app *fiber.App) error {
	if app == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	app.Get(Path, s.Get)

	return nil
}

// Get returns the snapshot of the caller's access context.
func (s *Service) Get(c *fiber.Ctx) error {
	ac := handler.Access(c)
	snap := ac.Snapshot()

	out := Snapshot{
		State:           snap.State.String(),
		Identity:        snap.Identity,
		Profile:         snap.Profile,
		Permissions:     []role.Capability{},
		AssignableRoles: []role.Role{},
		Menu:            navigation.Visible(ac),
	}

	if snap.Profile != nil {
		out.RoleName = role.DisplayName(snap.Profile.Role)
		out.Permissions = append(out.Permissions, role.PermissionsOf(snap.Profile.Role)...)
		out.AssignableRoles = append(out.AssignableRoles, role.AssignableRoles(snap.Profile.Role)...)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")

	return c.JSON(out)
}
