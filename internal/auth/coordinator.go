package auth

import "context"

// AuthorizationRequest is a freshly minted login attempt. The coordinator does
// not keep it; the caller stores CSRFToken and Nonce in the visitor session.
type AuthorizationRequest struct {
	RedirectURL string
	CSRFToken   string
	Nonce       string
}

// VerifiedIdentity is the result of a successful code exchange.
type VerifiedIdentity struct {
	Subject string
	UserID  uint64
}

// UserDirectory maps a provider subject to a local user id.
type UserDirectory interface {
	Resolve(ctx context.Context, subject string) (uint64, error)
}

// Profile holds the standard claims of a verified ID token.
type Profile struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// ProfileDirectory is a UserDirectory that also wants the profile claims,
// e.g. to provision or refresh local users. Exchange prefers it when available.
type ProfileDirectory interface {
	UserDirectory
	ResolveProfile(ctx context.Context, profile *Profile) (uint64, error)
}

// Coordinator drives the authorization code flow against an identity provider.
type Coordinator interface {
	Initiate(ctx context.Context) (*AuthorizationRequest, error)
	Exchange(ctx context.Context, code, nonce string, dir UserDirectory) (*VerifiedIdentity, error)
}

// SessionEnder is implemented by coordinators whose provider supports RP initiated logout.
type SessionEnder interface {
	LogoutURL(postLogoutRedirectURI string) string
}
