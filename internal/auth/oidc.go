package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// OIDCConfig holds OpenID Connect (OIDC) configuration for authentication.
type OIDCConfig struct {
	// ProviderURL is the OIDC provider's issuer URL (e.g., "https://accounts.google.com").
	ProviderURL string
	// ClientID is the OAuth2 client identifier.
	ClientID string
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string //nolint:gosec
	// RedirectURL is the callback URL the provider redirects to after authentication.
	RedirectURL string
	// Scopes are the OAuth2 scopes to request (default: ["openid", "profile", "email"]).
	Scopes []string
	// LockTimeout bounds the wait for the coordinator lock (default: DefaultLockTimeout).
	LockTimeout time.Duration
}

// Stats is a snapshot of the coordinator bookkeeping.
type Stats struct {
	Issued    uint64 // authorization requests minted
	InFlight  int    // exchanges currently talking to the provider
	Succeeded uint64
	Failed    uint64
}

// OIDCProvider is the Coordinator backed by an OpenID Connect provider.
type OIDCProvider struct {
	config   *OIDCConfig
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
	oauth2   oauth2.Config
	lock     *guard
	stats    Stats // guarded by lock
}

var _ Coordinator = (*OIDCProvider)(nil)

// NewOIDCProvider discovers the provider and creates the coordinator.
// Errors are startup failures; the process should not serve logins without a provider.
func NewOIDCProvider(ctx context.Context, config *OIDCConfig) (*OIDCProvider, error) {
	if config.ClientID == "" {
		return nil, ErrMissingClientID
	}

	provider, err := oidc.NewProvider(ctx, config.ProviderURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: config.ClientID,
	})

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		config:   config,
		provider: provider,
		verifier: verifier,
		oauth2: oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		lock: newGuard(config.LockTimeout),
	}, nil
}

// Initiate mints a csrf token and nonce and returns the authorization URL carrying both.
func (p *OIDCProvider) Initiate(ctx context.Context) (*AuthorizationRequest, error) {
	if err := p.lock.acquire(ctx); err != nil {
		return nil, err
	}
	defer p.lock.release()

	state, err := NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}

	nonce, err := NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	p.stats.Issued++

	return &AuthorizationRequest{
		RedirectURL: p.oauth2.AuthCodeURL(state, oidc.Nonce(nonce)),
		CSRFToken:   state,
		Nonce:       nonce,
	}, nil
}

// Exchange redeems code at the provider and resolves the verified subject.
// Only the bookkeeping before and after the provider round trip holds the lock.
func (p *OIDCProvider) Exchange(
	ctx context.Context, code, nonce string, dir UserDirectory,
) (*VerifiedIdentity, error) {
	if err := p.lock.acquire(ctx); err != nil {
		return nil, err
	}

	p.stats.InFlight++
	p.lock.release()

	identity, err := p.exchange(ctx, code, nonce, dir)

	p.lock.lock()
	p.stats.InFlight--

	if err != nil {
		p.stats.Failed++
	} else {
		p.stats.Succeeded++
	}
	p.lock.release()

	return identity, err
}

func (p *OIDCProvider) exchange(
	ctx context.Context, code, nonce string, dir UserDirectory,
) (*VerifiedIdentity, error) {
	switch {
	case dir == nil:
		return nil, &ExchangeError{Op: OpResolve, Err: ErrNilDirectory}
	case code == "":
		return nil, &ExchangeError{Op: OpToken, Err: ErrCodeEmpty}
	case nonce == "":
		return nil, &ExchangeError{Op: OpNonce, Err: ErrNonceMissing}
	}

	oauth2Token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, &ExchangeError{Op: OpToken, Err: err}
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, &ExchangeError{Op: OpToken, Err: ErrNoIDToken}
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &ExchangeError{Op: OpVerify, Err: err}
	}

	if err = checkNonce(nonce, idToken.Nonce); err != nil {
		return nil, &ExchangeError{Op: OpNonce, Err: err}
	}

	userID, err := resolve(ctx, dir, idToken)
	if err != nil {
		return nil, &ExchangeError{Op: OpResolve, Err: err}
	}

	log.Debug().Str("subject", idToken.Subject).Uint64("user_id", userID).Msg("oidc code exchange successful")

	return &VerifiedIdentity{
		Subject: idToken.Subject,
		UserID:  userID,
	}, nil
}

func resolve(ctx context.Context, dir UserDirectory, idToken *oidc.IDToken) (uint64, error) {
	pd, ok := dir.(ProfileDirectory)
	if !ok {
		return dir.Resolve(ctx, idToken.Subject)
	}

	profile := Profile{Subject: idToken.Subject}
	if err := idToken.Claims(&profile); err != nil {
		return 0, fmt.Errorf("failed to parse claims: %w", err)
	}

	profile.Subject = idToken.Subject

	return pd.ResolveProfile(ctx, &profile)
}

// checkNonce compares in constant time; the nonce is a per attempt secret.
func checkNonce(expected, got string) error {
	if expected == "" || got == "" {
		return ErrNonceMissing
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return ErrNonceMismatch
	}

	return nil
}

// Stats returns a snapshot of the bookkeeping counters.
func (p *OIDCProvider) Stats() Stats {
	p.lock.lock()
	defer p.lock.release()

	return p.stats
}

// LogoutURL builds the provider end session URL, or returns "" if the
// provider does not advertise an end_session_endpoint.
func (p *OIDCProvider) LogoutURL(postLogoutRedirectURI string) string {
	var claims struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}

	if err := p.provider.Claims(&claims); err != nil || claims.EndSessionEndpoint == "" {
		return ""
	}

	endpoint, err := url.Parse(claims.EndSessionEndpoint)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", claims.EndSessionEndpoint).Msg("invalid end_session_endpoint")
		return ""
	}

	q := endpoint.Query()
	q.Set("client_id", p.config.ClientID)

	if postLogoutRedirectURI != "" {
		q.Set("post_logout_redirect_uri", postLogoutRedirectURI)
	}

	endpoint.RawQuery = q.Encode()

	return endpoint.String()
}

// IsCoordinationFailure reports whether err came from lock contention rather than the provider.
func IsCoordinationFailure(err error) bool {
	return errors.Is(err, ErrCoordinatorBusy)
}
