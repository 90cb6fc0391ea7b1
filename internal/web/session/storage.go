package session

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	mysqlstorage "github.com/gofiber/storage/mysql/v2"
	postgresstorage "github.com/gofiber/storage/postgres/v3"

	"github.com/markstash/markstash/internal/config"
	"github.com/markstash/markstash/internal/db/dsn"
	"github.com/markstash/markstash/internal/web/session/redisstore"
)

// ErrUnknownStorage is returned for an unsupported Session.Storage.
var ErrUnknownStorage = errors.New("unknown session storage")

// NewStorage creates the session storage selected by Webserver.Session.Storage.
// The memory storage is returned as nil; fiber's session store supplies it.
// The sql drivers connect eagerly and panic if the database is unreachable.
func NewStorage(cfg *config.Config) (fiber.Storage, error) {
	s := cfg.Webserver.Session

	switch s.Storage {
	case "memory", "":
		return nil, nil //nolint:nilnil
	case "mysql":
		return mysqlstorage.New(mysqlstorage.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         s.Table,
		}), nil
	case "postgres":
		return postgresstorage.New(postgresstorage.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         s.Table,
		}), nil
	case "redis":
		return redisstore.New(redisstore.Config{
			Addr:      s.Redis.Addr,
			Username:  s.Redis.Username,
			Password:  s.Redis.Password,
			DB:        s.Redis.DB,
			KeyPrefix: s.Redis.KeyPrefix,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, s.Storage)
	}
}
