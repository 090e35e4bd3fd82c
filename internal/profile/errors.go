package profile

import (
	"errors"

	"github.com/bapti-church/bapti-web/internal/role"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a signed in actor.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRoleAssignmentForbidden is returned when the actor may not grant the
	// requested role. Nothing is written in that case. It is the role
	// package's refusal, so the concrete reason still matches with errors.Is.
	ErrRoleAssignmentForbidden = role.ErrAssignmentForbidden

	// ErrProfileNotFound is returned when no profile exists for a uid.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrPermissionDenied is returned when the document store rejects a write.
	ErrPermissionDenied = errors.New("permission denied by document store")
)
