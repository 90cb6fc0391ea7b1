// Package daemon assembles the service from its configuration.
package daemon

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/markstash/markstash/internal/auth"
	"github.com/markstash/markstash/internal/config"
	"github.com/markstash/markstash/internal/db"
	"github.com/markstash/markstash/internal/db/controller/user"
	"github.com/markstash/markstash/internal/web"
	"github.com/markstash/markstash/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start serves until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go func() {
		if err := d.webService.Start(addr); err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}()

	log.Info().Str("addr", addr).Msg("markstash started")

	d.webService.WaitShutdown()

	return nil
}

// New creates a new Daemon instance with the provided configuration.
// Failing to reach the database or the identity provider is fatal for startup.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	storage, err := session.NewStorage(cfg)
	if err != nil {
		return nil, err
	}

	sessions := session.New(session.Config{
		Storage:     storage,
		AttemptTTL:  cfg.Webserver.Session.LoginAttemptTTL,
		IdentityTTL: cfg.Webserver.Session.ExpiryTime,
		Secure:      !cfg.DevMode,
	})

	provider, err := auth.NewOIDCProvider(ctx, &auth.OIDCConfig{
		ProviderURL:  cfg.Auth.OIDC.ProviderURL,
		ClientID:     cfg.Auth.OIDC.ClientID,
		ClientSecret: cfg.Auth.OIDC.ClientSecret,
		RedirectURL:  cfg.Auth.OIDC.RedirectURL,
		Scopes:       cfg.Auth.OIDC.Scopes,
		LockTimeout:  cfg.Auth.LockTimeout,
	})
	if err != nil {
		return nil, err
	}

	if err = provider.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("failed to register coordinator metrics: %w", err)
	}

	log.Info().Str("provider", cfg.Auth.OIDC.ProviderURL).Msg("OIDC authentication provider initialized")

	webService, err := web.New(cfg, gormDB, provider, user.NewDirectory(gormDB, cfg.Auth.AutoProvision), sessions)
	if err != nil {
		return nil, err
	}

	return &Daemon{cfg: cfg, webService: webService}, nil
}
