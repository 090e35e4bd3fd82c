// Package auth provides the session middleware of the web application.
//
// The middleware reads the session cookie, resolves it through the access
// registry and stores the resulting access context in fiber.Locals, where
// handlers and route guards pick it up. Requests without a valid session get
// an anonymous context and continue; protection is the job of the guards
// registered on each route.
//
// Usage:
//
//	app.Use(authmiddleware.Middleware(cfg, registry))
package auth
