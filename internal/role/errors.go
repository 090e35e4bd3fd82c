package role

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRole is returned when a value is outside the role enumeration.
	ErrUnknownRole = errors.New("unknown role")

	// ErrAssignmentForbidden is the parent of every role assignment refusal.
	// Use errors.Is to test for it.
	ErrAssignmentForbidden = errors.New("role assignment forbidden")

	// ErrSelfAssignment is returned when a user tries to change their own role.
	ErrSelfAssignment = fmt.Errorf("%w: users cannot change their own role", ErrAssignmentForbidden)

	// ErrInsufficientRole is returned when the actor may not assign any role.
	ErrInsufficientRole = fmt.Errorf("%w: insufficient permissions to change user roles", ErrAssignmentForbidden)

	// ErrRoleNotAssignable is returned when the requested role is outside the actor's assignable set.
	ErrRoleNotAssignable = fmt.Errorf("%w: requested role is not assignable", ErrAssignmentForbidden)

	// ErrTargetOutranks is returned when the target already holds a role the actor cannot manage.
	ErrTargetOutranks = fmt.Errorf("%w: target user outranks actor", ErrAssignmentForbidden)
)
