package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes gives csrf tokens and nonces 256 bits of entropy.
const tokenBytes = 32

// NewToken returns a URL safe random token.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
