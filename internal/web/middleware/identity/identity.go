package identity

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/markstash/markstash/internal/web/session"
)

// LocalsKey is the fiber.Locals key of the bound user id.
const LocalsKey = "UserID"

// New returns the middleware.
func New(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := sessions.Current(c)

		switch {
		case err == nil:
			c.Locals(LocalsKey, d.UserID)
		case !errors.Is(err, session.ErrNoIdentity):
			log.Warn().Err(err).Msg("failed to resolve identity cookie")
		}

		return c.Next()
	}
}

// UserID returns the user bound to the request.
func UserID(c *fiber.Ctx) (uint64, bool) {
	id, ok := c.Locals(LocalsKey).(uint64)
	return id, ok && id > 0
}
