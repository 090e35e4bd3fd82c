package role

import (
	"fmt"
	"slices"
)

// Capability names a single thing a role is allowed to do.
type Capability string

// Capabilities granted by the hierarchy. Each role inherits everything from
// the roles below it.
const (
	ViewPublicContent Capability = "view_public_content"

	ManageEvents Capability = "manage_events"
	ManageNews   Capability = "manage_news"
	ViewMessages Capability = "view_messages"

	ManageUsers Capability = "manage_users"

	AccessDebug       Capability = "access_debug"
	ModifyAppSettings Capability = "modify_app_settings"
)

// added holds what each role adds on top of the role below it.
var added = map[Role][]Capability{ //nolint:gochecknoglobals
	Guest: {ViewPublicContent},
	Staff: {ManageEvents, ManageNews, ViewMessages},
	Admin: {ManageUsers},
	Dev:   {AccessDebug, ModifyAppSettings},
}

// PermissionsOf returns the capability set of r. The result grows with the
// hierarchy: every capability of a lower role is included.
func PermissionsOf(r Role) []Capability {
	level := r.Level()
	if level < 0 {
		return nil
	}

	var out []Capability
	for _, lower := range hierarchy[:level+1] {
		out = append(out, added[lower]...)
	}

	return out
}

// Has reports whether r holds capability c.
func Has(r Role, c Capability) bool {
	return slices.Contains(PermissionsOf(r), c)
}

// AssignableRoles returns the roles actor may hand out to other users.
// Dev may assign every role, admin only staff and guest, everybody else none.
func AssignableRoles(actor Role) []Role {
	switch actor {
	case Dev:
		return All()
	case Admin:
		return []Role{Staff, Guest}
	default:
		return nil
	}
}

// CanAssign checks whether actor may move a user from current to next.
// self must be true when actor edits their own profile. The returned error
// wraps ErrAssignmentForbidden.
func CanAssign(actor, current, next Role, self bool) error {
	if self {
		return ErrSelfAssignment
	}

	if !next.Valid() {
		return fmt.Errorf("%w: %w", ErrAssignmentForbidden, ErrUnknownRole)
	}

	assignable := AssignableRoles(actor)
	if len(assignable) == 0 {
		return ErrInsufficientRole
	}

	if !slices.Contains(assignable, next) {
		return ErrRoleNotAssignable
	}

	// a user already above what the actor may grant is out of reach
	if current.Valid() && !slices.Contains(assignable, current) {
		return ErrTargetOutranks
	}

	return nil
}
