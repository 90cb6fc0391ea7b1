// Package auth implements the login coordinator: the single process wide
// component that talks to the OpenID Connect identity provider.
//
// A login attempt has two halves:
//   - Initiate mints a fresh csrf token and nonce and builds the provider
//     authorization URL. No network call is involved.
//   - Exchange trades the authorization code returned by the provider for an
//     ID token, checks its signature, issuer, audience, expiry and nonce, and
//     resolves the subject to a local user through a UserDirectory.
//
// The coordinator is shared by all requests. Its bookkeeping is guarded by an
// exclusive lock whose acquisition gives up after a bounded wait; callers get
// ErrCoordinatorBusy in that case and must answer with a server error, never
// with "unauthenticated". The network exchange itself runs outside the lock.
package auth
