package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// IdentityCookie names the cookie asserting the authenticated user.
const IdentityCookie = "identity"

const identityKeyPrefix = "identity:"

// ErrNoIdentity is returned by Current for anonymous visitors.
var ErrNoIdentity = errors.New("no identity bound")

// Data is the server side record behind an identity cookie.
type Data struct {
	UserID uint64 `json:"user_id"`
}

// write stores the record for the given session ID.
func (m *Manager) write(sessionID string, d *Data) error {
	out, err := json.Marshal(d)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return m.storage.Set(identityKeyPrefix+sessionID, out, m.identityTTL) //nolint:wrapcheck
}

func (m *Manager) read(sessionID string) (*Data, error) {
	raw, err := m.storage.Get(identityKeyPrefix + sessionID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if len(raw) == 0 {
		return nil, ErrNoIdentity
	}

	d := new(Data)
	if err = json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("corrupt identity record: %w", err)
	}

	if d.UserID == 0 {
		return nil, ErrNoIdentity
	}

	return d, nil
}

// Remember binds userID to the visitor: a new record under a fresh id and
// the identity cookie pointing to it.
func (m *Manager) Remember(c *fiber.Ctx, userID uint64) error {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return err
	}

	if err = m.write(sessionID, &Data{UserID: userID}); err != nil {
		return fmt.Errorf("failed to write identity: %w", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     IdentityCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(m.identityTTL.Seconds()),
		Secure:   m.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return nil
}

// Forget drops the identity of the visitor. It is a no-op for anonymous visitors
// apart from the expired cookie in the response.
func (m *Manager) Forget(c *fiber.Ctx) error {
	var err error

	if sessionID := c.Cookies(IdentityCookie); sessionID != "" {
		err = m.storage.Delete(identityKeyPrefix + sessionID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     IdentityCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  fasthttp.CookieExpireDelete,
		Secure:   m.secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return err //nolint:wrapcheck
}

// Current returns the identity record of the visitor or ErrNoIdentity.
func (m *Manager) Current(c *fiber.Ctx) (*Data, error) {
	sessionID := c.Cookies(IdentityCookie)
	if sessionID == "" {
		return nil, ErrNoIdentity
	}

	return m.read(sessionID)
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err //nolint:wrapcheck
	}

	return hex.EncodeToString(b), nil
}
