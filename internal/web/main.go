// Package web wires the fiber application: middleware, login handlers,
// profile endpoint, health check and metrics.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/markstash/markstash/internal/auth"
	"github.com/markstash/markstash/internal/config"
	fiberlogger "github.com/markstash/markstash/internal/logger/adapter/fiber"
	"github.com/markstash/markstash/internal/web/handler"
	oidchandler "github.com/markstash/markstash/internal/web/handler/auth/oidc"
	"github.com/markstash/markstash/internal/web/handler/me"
	"github.com/markstash/markstash/internal/web/middleware/identity"
	"github.com/markstash/markstash/internal/web/session"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic and 503 while draining.
	CheckAlivePath = handler.RootPath + "checkalive"

	// MetricsPath exposes the prometheus metrics.
	MetricsPath = handler.RootPath + "metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and shuts the service down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown drains and stops the http server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(
	cfg *config.Config,
	db *gorm.DB,
	coordinator auth.Coordinator,
	directory auth.UserDirectory,
	sessions *session.Manager,
) (*Service, error) {
	if cfg == nil || db == nil || coordinator == nil || directory == nil || sessions == nil {
		return nil, handler.ErrNilDependency
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize:        8192,
			AppName:               cfg.Title,
			CaseSensitive:         true,
			Prefork:               false,
			Immutable:             true,
			DisableStartupMessage: !cfg.DevMode,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	if key := cfg.Webserver.CookieEncryptionKey; key != "" {
		app.Use(encryptcookie.New(encryptcookie.Config{Key: key}))
	} else if !cfg.DevMode {
		log.Warn().Msg("cookie encryption disabled: set Webserver.CookieEncryptionKey")
	}

	app.Use(identity.New(sessions))

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	if err := oidchandler.Handler.Init(app, cfg, coordinator, directory, sessions); err != nil {
		return nil, err
	}

	if err := me.Handler.Init(app, cfg, db); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}
