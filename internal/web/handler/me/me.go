// Package me serves the profile of the logged in user.
package me

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/markstash/markstash/internal/config"
	"github.com/markstash/markstash/internal/db/controller/user"
	"github.com/markstash/markstash/internal/web/handler"
	"github.com/markstash/markstash/internal/web/middleware/identity"
)

// Path is the path of the profile endpoint.
const Path = handler.RootPath + "users/me"

// Response is the JSON body of the profile endpoint.
type Response struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Service is the profile handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the profile handler.
var Handler = Service{}

// Init initializes the profile handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return handler.ErrNilDependency
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)

	return nil
}

// Get returns the bound user, 401 for anonymous visitors and disabled users.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := identity.UserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString(handler.UnauthorizedMsg)
	}

	u, err := user.Get(s.db.WithContext(c.UserContext()), id)

	switch {
	case errors.Is(err, user.ErrUserNotFound):
		// the record outlived its user
		return c.Status(fiber.StatusUnauthorized).SendString(handler.UnauthorizedMsg)
	case err != nil:
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to load user")
		return c.Status(fiber.StatusInternalServerError).SendString(handler.InternalServerErrorMsg)
	case !u.Active:
		log.Info().Uint64("user_id", id).Msg("identity of disabled user rejected")
		return c.Status(fiber.StatusUnauthorized).SendString(handler.UnauthorizedMsg)
	}

	return c.JSON(Response{ID: u.ID, Username: u.Username, Email: u.Email})
}
