package config

import (
	"time"

	"github.com/markstash/markstash/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime      time.Duration // lifetime of the identity cookie and its server record
	LoginAttemptTTL time.Duration // lifetime of csrf token and nonce between login and callback
	Storage         string        `validate:"oneof=memory mysql postgres redis"`
	Table           string        // table name for sql based session storage
	Redis           Redis
}

// Redis holds the connection settings of the redis session storage.
type Redis struct {
	Addr      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// OIDC holds the identity provider client settings.
type OIDC struct {
	ProviderURL        string   `validate:"required,url"`
	ClientID           string   `validate:"required"`
	ClientSecret       string   //nolint:gosec
	RedirectURL        string   `validate:"required,url"`
	Scopes             []string // default: openid, profile, email
	EndProviderSession bool     // redirect to the provider end_session_endpoint on logout
}

// Auth holds the login flow settings.
type Auth struct {
	BasePath      string        // route group of the login endpoints
	LandingPath   string        // redirect target after callback and logout
	AutoProvision bool          // create a local user for unknown subjects
	LockTimeout   time.Duration // max wait for the login coordinator lock
	OIDC          OIDC
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // base64 encoded AES key for cookies, empty disables encryption
	Session             Session // session settings
}
