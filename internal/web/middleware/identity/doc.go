// Package identity provides the middleware resolving the identity cookie.
//
// For every request the middleware looks up the identity record behind the
// identity cookie and stores the bound user id in fiber.Locals. Anonymous
// requests pass through unchanged; handlers decide whether they need a user.
//
// Usage:
//
//	app.Use(identity.New(sessions))
//
//	if id, ok := identity.UserID(c); ok { ... }
package identity
