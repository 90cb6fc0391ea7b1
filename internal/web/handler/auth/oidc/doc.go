// Package oidc provides the HTTP handlers of the OpenID Connect login flow.
//
// The flow includes:
//   - Login initiation: drops any bound identity, asks the coordinator for a
//     csrf token and nonce, keeps both in the login attempt scope and redirects
//     to the identity provider (307).
//   - Callback: reads and unconditionally clears the login attempt, compares
//     the state parameter with the csrf token in constant time (401 on any
//     missing or mismatching value) and exchanges the code (500 on failure).
//     On success the identity cookie is set and the visitor lands on the
//     landing path (307).
//   - Logout: drops identity and login attempt and redirects (302). Calling it
//     repeatedly yields the same response.
//
// Example usage:
//
//	_ = oidc.Handler.Init(app, cfg, coordinator, directory, sessions)
//
//	// GET  /users/login/authenticate - Initiate login
//	// GET  /users/login/callback     - Handle provider callback
//	// POST /users/login/logout       - Logout
package oidc
