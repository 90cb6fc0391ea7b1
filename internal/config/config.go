// Package config handles input from etc/main.toml files
package config

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON names the env var holding a JSON document merged over the main config.
	EnvConfigJSON = "MARKSTASH_CONFIG_JSON"

	envPrefix = "MARKSTASH"

	defaultShutDownTime    = 5
	defaultSessionExpiry   = 24 * time.Hour
	defaultLoginAttemptTTL = 10 * time.Minute
	defaultLockTimeout     = 2 * time.Second
	defaultSessionTable    = "sessions"
)

var structValidator = validator.New()

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

// decodeAndMergeConfig decodes the JSON override with the same hooks as the
// main file, so durations may be given as "10m" and keys already set survive.
func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	if err := v.ReadConfig(strings.NewReader(configAsJSON)); err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate fills in defaults and checks the settings needed to serve logins.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	applyDefaults(c)

	if key := c.Webserver.CookieEncryptionKey; key != "" && !validAESKey(key) {
		return errors.Wrap(ErrInvalidCookieEncryptionKey, invalidErrMessage)
	}

	if c.Webserver.Session.Storage == "redis" && c.Webserver.Session.Redis.Addr == "" {
		return errors.Wrap(ErrRedisAddrEmpty, invalidErrMessage)
	}

	if err := structValidator.Struct(c); err != nil {
		return errors.Wrap(err, invalidErrMessage)
	}

	return nil
}

func applyDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	s := &c.Webserver.Session
	if s.ExpiryTime == 0 {
		s.ExpiryTime = defaultSessionExpiry
	}

	if s.LoginAttemptTTL == 0 {
		s.LoginAttemptTTL = defaultLoginAttemptTTL
	}

	if s.Storage == "" {
		s.Storage = "memory"
	}

	if s.Table == "" {
		s.Table = defaultSessionTable
	}

	if c.DB.GormEngine == "" {
		c.DB.GormEngine = "mysql"
	}

	if c.Auth.BasePath == "" {
		c.Auth.BasePath = "/users/login"
	}

	if c.Auth.LandingPath == "" {
		c.Auth.LandingPath = "/"
	}

	if c.Auth.LockTimeout == 0 {
		c.Auth.LockTimeout = defaultLockTimeout
	}
}

func validAESKey(key string) bool {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return false
	}

	switch len(raw) {
	case 16, 24, 32: //nolint:mnd
		return true
	default:
		return false
	}
}
