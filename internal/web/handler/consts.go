package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// SessionCookie carries the session id.
	SessionCookie = "session"

	// LocalsAccess is the fiber.Locals key of the request's access context.
	LocalsAccess = "access"

	// ErrNilDepsFatalLogMsg is used if app or deps pointer is nil.
	ErrNilDepsFatalLogMsg = "app or deps is nil"
)
