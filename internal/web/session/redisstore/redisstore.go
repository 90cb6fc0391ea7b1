// Package redisstore implements fiber.Storage on top of go-redis.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanCount = 100

// Config defines the connection of the storage.
type Config struct {
	// Client is used as is when set; the connection fields are ignored.
	Client redis.UniversalClient

	Addr     string
	Username string
	Password string //nolint:gosec
	DB       int

	// KeyPrefix is prepended to every key. Reset only removes prefixed keys.
	KeyPrefix string
}

// Storage is a redis backed fiber.Storage.
type Storage struct {
	db     redis.UniversalClient
	prefix string
}

// New creates a Storage. No connection is made before the first command.
func New(cfg Config) *Storage {
	db := cfg.Client
	if db == nil {
		db = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	return &Storage{db: db, prefix: cfg.KeyPrefix}
}

// Get returns the value of key, or nil if it does not exist.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	val, err := s.db.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	return val, err //nolint:wrapcheck
}

// Set stores val under key. A zero exp means no expiration.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	return s.db.Set(context.Background(), s.prefix+key, val, exp).Err() //nolint:wrapcheck
}

// Delete removes key.
func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}

	return s.db.Del(context.Background(), s.prefix+key).Err() //nolint:wrapcheck
}

// Reset removes all keys carrying the prefix.
func (s *Storage) Reset() error {
	ctx := context.Background()
	iter := s.db.Scan(ctx, 0, s.prefix+"*", scanCount).Iterator()

	keys := make([]string, 0, scanCount)

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())

		if len(keys) == scanCount {
			if err := s.db.Del(ctx, keys...).Err(); err != nil {
				return err //nolint:wrapcheck
			}

			keys = keys[:0]
		}
	}

	if err := iter.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	if len(keys) > 0 {
		return s.db.Del(ctx, keys...).Err() //nolint:wrapcheck
	}

	return nil
}

// Close closes the client.
func (s *Storage) Close() error {
	return s.db.Close() //nolint:wrapcheck
}

// Conn returns the underlying client.
func (s *Storage) Conn() redis.UniversalClient {
	return s.db
}
