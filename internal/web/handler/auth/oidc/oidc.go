package oidc

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/markstash/markstash/internal/auth"
	"github.com/markstash/markstash/internal/config"
	"github.com/markstash/markstash/internal/web/handler"
	"github.com/markstash/markstash/internal/web/session"
)

const (
	// LoginPath initiates the login, relative to Auth.BasePath.
	LoginPath = "/authenticate"

	// CallbackPath receives the provider redirect, relative to Auth.BasePath.
	CallbackPath = "/callback"

	// LogoutPath ends the session, relative to Auth.BasePath.
	LogoutPath = "/logout"
)

// CallbackParams are the query parameters of the provider redirect.
type CallbackParams struct {
	Code             string `query:"code"`
	State            string `query:"state"`
	Error            string `query:"error"`
	ErrorDescription string `query:"error_description"`
}

// Service is the OIDC handler service.
type Service struct {
	cfg         *config.Config
	coordinator auth.Coordinator
	directory   auth.UserDirectory
	sessions    *session.Manager
}

// Handler is the OIDC handler.
var Handler = Service{}

// Init registers the login routes below cfg.Auth.BasePath.
func (s *Service) Init(
	app *fiber.App,
	cfg *config.Config,
	coordinator auth.Coordinator,
	directory auth.UserDirectory,
	sessions *session.Manager,
) error {
	if app == nil || cfg == nil || coordinator == nil || directory == nil || sessions == nil {
		return handler.ErrNilDependency
	}

	s.cfg = cfg
	s.coordinator = coordinator
	s.directory = directory
	s.sessions = sessions

	registerMetrics()

	app.Route(cfg.Auth.BasePath, func(r fiber.Router) {
		r.Get(LoginPath, s.Login)
		r.Get(CallbackPath, s.Callback)
		r.Post(LogoutPath, s.Logout)
	})

	return nil
}

// Login initiates the OIDC login flow.
func (s *Service) Login(c *fiber.Ctx) error {
	// a visitor re-initiating login must not keep the previous identity
	if err := s.sessions.Forget(c); err != nil {
		log.Error().Err(err).Msg("failed to drop identity before login")
		return internalError(c)
	}

	req, err := s.coordinator.Initiate(c.UserContext())
	if err != nil {
		if auth.IsCoordinationFailure(err) {
			count(OutcomeCoordinationFailed)
		}

		log.Error().Err(err).Msg("failed to initiate login")

		return internalError(c)
	}

	scope, err := s.sessions.Attempt(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to load login attempt")
		return internalError(c)
	}

	if err = scope.Rotate(); err != nil {
		log.Error().Err(err).Msg("failed to rotate login attempt")
		return internalError(c)
	}

	scope.Insert(session.KeyCSRFToken, req.CSRFToken)
	scope.Insert(session.KeyNonce, req.Nonce)

	if err = scope.Save(); err != nil {
		log.Error().Err(err).Msg("failed to save login attempt")
		return internalError(c)
	}

	count(OutcomeInitiated)

	return c.Redirect(req.RedirectURL, fiber.StatusTemporaryRedirect)
}

// Callback handles the OIDC callback.
func (s *Service) Callback(c *fiber.Ctx) error {
	scope, err := s.sessions.Attempt(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to load login attempt")
		return internalError(c)
	}

	csrfToken, hasCSRFToken := scope.Get(session.KeyCSRFToken)
	nonce, hasNonce := scope.Get(session.KeyNonce)

	// one shot: whatever happens below, this attempt cannot be replayed
	if err = scope.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear login attempt")
		return internalError(c)
	}

	params := new(CallbackParams)
	if err = c.QueryParser(params); err != nil {
		return s.reject(c, err)
	}

	if params.Error != "" {
		log.Warn().
			Str("error", params.Error).
			Str("error_description", params.ErrorDescription).
			Msg("identity provider returned an error")
	}

	switch {
	case !hasCSRFToken || !hasNonce:
		return s.reject(c, ErrLoginStateMissing)
	case !stateMatches(params.State, csrfToken):
		return s.reject(c, ErrStateMismatch)
	case params.Code == "":
		return s.reject(c, ErrCodeMissing)
	}

	identity, err := s.coordinator.Exchange(c.UserContext(), params.Code, nonce, s.directory)
	if err != nil {
		if auth.IsCoordinationFailure(err) {
			count(OutcomeCoordinationFailed)
			log.Error().Err(err).Msg("login coordinator unavailable")
		} else {
			count(OutcomeExchangeFailed)
			log.Error().Err(err).Msg("OIDC authentication failed")
		}

		return internalError(c)
	}

	if err = s.sessions.Remember(c, identity.UserID); err != nil {
		log.Error().Err(err).Uint64("user_id", identity.UserID).Msg("failed to bind identity")
		return internalError(c)
	}

	count(OutcomeBound)

	log.Info().Uint64("user_id", identity.UserID).Str("subject", identity.Subject).Msg("user logged in via OIDC")

	return c.Redirect(s.cfg.Auth.LandingPath, fiber.StatusTemporaryRedirect)
}

// Logout drops identity and login attempt. It never fails.
func (s *Service) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Forget(c); err != nil {
		log.Error().Err(err).Msg("failed to delete identity")
	}

	if scope, err := s.sessions.Attempt(c); err != nil {
		log.Error().Err(err).Msg("failed to load login attempt")
	} else if err = scope.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear login attempt")
	}

	count(OutcomeLogout)

	return c.Redirect(s.logoutTarget(), fiber.StatusFound)
}

func (s *Service) logoutTarget() string {
	if !s.cfg.Auth.OIDC.EndProviderSession {
		return s.cfg.Auth.LandingPath
	}

	ender, ok := s.coordinator.(auth.SessionEnder)
	if !ok {
		return s.cfg.Auth.LandingPath
	}

	postLogout := strings.TrimSuffix(s.cfg.Webserver.URL, "/") + s.cfg.Auth.LandingPath
	if target := ender.LogoutURL(postLogout); target != "" {
		return target
	}

	return s.cfg.Auth.LandingPath
}

func (s *Service) reject(c *fiber.Ctx, reason error) error {
	count(OutcomeRejected)

	log.Warn().Err(reason).Str("ip", c.IP()).Msg("login callback rejected")

	return c.Status(fiber.StatusUnauthorized).SendString(handler.UnauthorizedMsg)
}

// stateMatches compares in constant time; the csrf token is a per attempt secret.
func stateMatches(state, csrfToken string) bool {
	if state == "" || csrfToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(state), []byte(csrfToken)) == 1
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).SendString(handler.InternalServerErrorMsg)
}
