// Package session holds the per visitor state of the login flow: the short
// lived login attempt scope and the identity record behind the identity cookie.
package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Login attempt keys.
const (
	KeyCSRFToken = "csrf_token"
	KeyNonce     = "nonce"

	keyIssuedAt = "issued_at"
)

// AttemptCookie names the cookie that carries the login attempt session id.
const AttemptCookie = "login_attempt"

const (
	defaultAttemptTTL  = 10 * time.Minute
	defaultIdentityTTL = 24 * time.Hour
)

// Config configures a Manager.
type Config struct {
	// Storage backs both scopes. Nil selects fiber's in-memory storage.
	Storage fiber.Storage
	// AttemptTTL bounds the lifetime of an abandoned login attempt.
	AttemptTTL time.Duration
	// IdentityTTL is the lifetime of the identity cookie and its record.
	IdentityTTL time.Duration
	// Secure marks the cookies as https only.
	Secure bool
}

// Manager hands out login attempt scopes and manages identity records.
type Manager struct {
	attempts    *session.Store
	storage     fiber.Storage
	attemptTTL  time.Duration
	identityTTL time.Duration
	secure      bool
	now         func() time.Time
}

// New creates a Manager.
func New(cfg Config) *Manager {
	if cfg.AttemptTTL <= 0 {
		cfg.AttemptTTL = defaultAttemptTTL
	}

	if cfg.IdentityTTL <= 0 {
		cfg.IdentityTTL = defaultIdentityTTL
	}

	store := session.New(session.Config{
		Storage:        cfg.Storage,
		Expiration:     cfg.AttemptTTL,
		KeyLookup:      "cookie:" + AttemptCookie,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.Secure,
		// the provider redirects back with a top level GET, Lax still sends the cookie
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})

	return &Manager{
		attempts:    store,
		storage:     store.Storage, // fiber fills in memory storage when cfg.Storage is nil
		attemptTTL:  cfg.AttemptTTL,
		identityTTL: cfg.IdentityTTL,
		secure:      cfg.Secure,
		now:         time.Now,
	}
}

// Attempt loads the login attempt scope of the visitor.
func (m *Manager) Attempt(c *fiber.Ctx) (*Scope, error) {
	sess, err := m.attempts.Get(c)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &Scope{sess: sess, ttl: m.attemptTTL, now: m.now}, nil
}

// Storage returns the backing storage.
func (m *Manager) Storage() fiber.Storage {
	return m.storage
}
