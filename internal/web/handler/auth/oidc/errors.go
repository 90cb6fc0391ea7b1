package oidc

import "errors"

var (
	// ErrLoginStateMissing is logged when the callback finds no usable login attempt.
	ErrLoginStateMissing = errors.New("login attempt state missing or expired")

	// ErrStateMismatch is logged when the state parameter does not match the csrf token.
	ErrStateMismatch = errors.New("state does not match csrf token")

	// ErrCodeMissing is logged when the provider redirected back without a code.
	ErrCodeMissing = errors.New("authorization code missing")
)
