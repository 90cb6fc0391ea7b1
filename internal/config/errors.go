package config

import (
	"errors"
)

var (
	// ErrNilConfig error if a nil config is handed over.
	ErrNilConfig = errors.New("config is nil")

	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrInvalidCookieEncryptionKey error if the cookie key is not a base64 encoded AES key.
	ErrInvalidCookieEncryptionKey = errors.New("toml config webserver.cookieEncryptionKey must be a base64 encoded 16, 24 or 32 byte key")

	// ErrRedisAddrEmpty error if redis session storage is selected without an address.
	ErrRedisAddrEmpty = errors.New("toml config webserver.session.redis.addr can not be empty for redis storage")
)
