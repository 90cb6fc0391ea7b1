package auth

import (
	"errors"
)

var (
	// ErrCoordinatorBusy is returned when the coordinator lock could not be acquired in time.
	ErrCoordinatorBusy = errors.New("login coordinator is busy")

	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrNonceMissing is returned when either the expected nonce or the ID token nonce is empty.
	ErrNonceMissing = errors.New("nonce missing")

	// ErrNonceMismatch is returned when the ID token nonce differs from the one issued at login.
	ErrNonceMismatch = errors.New("id token nonce does not match")

	// ErrCodeEmpty is returned when Exchange is called without an authorization code.
	ErrCodeEmpty = errors.New("authorization code is empty")

	// ErrNilDirectory is returned when Exchange is called without a user directory.
	ErrNilDirectory = errors.New("user directory is nil")

	// ErrMissingClientID is returned by NewOIDCProvider when no client id is configured.
	ErrMissingClientID = errors.New("oidc client id is empty")
)

// Exchange stages reported by ExchangeError.
const (
	OpToken   = "token"
	OpVerify  = "verify"
	OpNonce   = "nonce"
	OpResolve = "resolve"
)

// ExchangeError wraps every failure of a code exchange. All of them deny the login.
type ExchangeError struct {
	Op  string
	Err error
}

func (e *ExchangeError) Error() string {
	return "exchange " + e.Op + ": " + e.Err.Error()
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}
