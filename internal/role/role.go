// Package role defines the role hierarchy, per-role capabilities and the
// rules for who may grant which role to whom.
//
// Everything in this package is pure: no storage, no logging.
package role

import (
	"fmt"
	"slices"
	"strings"
)

// Role is one step of the hierarchy guest < staff < admin < dev.
// Roles compare by hierarchy index, never by string value.
type Role string

const (
	// Guest is the default role for every new identity.
	Guest Role = "guest"
	// Staff may manage public content.
	Staff Role = "staff"
	// Admin may manage users.
	Admin Role = "admin"
	// Dev may change app settings and use debug features.
	Dev Role = "dev"
)

// hierarchy lists all roles, lowest first.
var hierarchy = []Role{Guest, Staff, Admin, Dev} //nolint:gochecknoglobals

var displayNames = map[Role]string{ //nolint:gochecknoglobals
	Guest: "Guest",
	Staff: "Staff Member",
	Admin: "Administrator",
	Dev:   "Developer",
}

// All returns every role in hierarchy order, lowest first.
func All() []Role {
	return slices.Clone(hierarchy)
}

// Level returns the hierarchy index of r or -1 for an unknown value.
func (r Role) Level() int {
	return slices.Index(hierarchy, r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Level() >= 0
}

func (r Role) String() string {
	return string(r)
}

// Parse converts a string into a Role. Matching ignores case and surrounding
// whitespace.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}

	return r, nil
}

// HigherOrEqual reports whether a sits at or above b in the hierarchy.
// Unknown roles are below everything, so HigherOrEqual(unknown, x) is false
// for every known x.
func HigherOrEqual(a, b Role) bool {
	la, lb := a.Level(), b.Level()
	if la < 0 || lb < 0 {
		return false
	}

	return la >= lb
}

// AtLeastOne reports whether r is HigherOrEqual to any role in required.
// An empty required set never matches; callers decide what "no
// restriction" means.
func AtLeastOne(r Role, required []Role) bool {
	for _, req := range required {
		if HigherOrEqual(r, req) {
			return true
		}
	}

	return false
}

// DisplayName returns the human readable label of r.
func DisplayName(r Role) string {
	if name, ok := displayNames[r]; ok {
		return name
	}

	return string(r)
}
