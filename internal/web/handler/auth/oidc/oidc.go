package oidc

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/auth"
	"github.com/bapti-church/bapti-web/internal/session"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	"github.com/bapti-church/bapti-web/internal/web/handler/login"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = login.FederatedLoginPath

	// CallbackPath is the path for OIDC callback.
	CallbackPath = handler.RootPath + "auth/oidc/callback"
)

// Service is the OIDC handler service.
type Service struct {
	deps *handler.Deps
}

// Init registers the federated routes when the adapter supports them.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	if !deps.Auth.FederatedEnabled() {
		log.Info().Msg("federated sign-in is disabled")

		return nil
	}

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)

	return nil
}

// Login starts the federated flow.
func (s *Service) Login(c *fiber.Ctx) error {
	returnURL := handler.SafeReturnURL(c.Query("returnUrl"))

	authURL, err := s.deps.Auth.BeginFederated(c.UserContext(), returnURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to start federated login")

		return s.fail(c, auth.Normalize(err))
	}

	return c.Redirect(authURL, fiber.StatusFound)
}

// Callback completes the federated flow.
func (s *Service) Callback(c *fiber.Ctx) error {
	sessionID, err := session.NewID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return s.fail(c, auth.NewError(auth.CodeNetworkRequestFailed, "", err))
	}

	providerErr := c.Query("error")

	res, err := s.deps.Auth.CompleteFederated(
		c.UserContext(), sessionID, c.Query("state"), c.Query("code"), providerErr, handler.ClientMeta(c),
	)
	if err != nil {
		return s.fail(c, auth.Normalize(err))
	}

	handler.SetSessionCookie(c, s.deps.Cfg, sessionID, res.ExpiresAt)

	// guards on the return URL need the role
	if p := s.deps.Auth.AwaitProfile(c.UserContext(), res.Context); p == nil {
		log.Warn().Str("uid", res.Identity.UID).Msg("continuing without profile")
	}

	return c.Redirect(handler.SafeReturnURL(res.ReturnURL), fiber.StatusFound)
}

func (s *Service) fail(c *fiber.Ctx, e *auth.Error) error {
	return c.Redirect(login.Path+"?error="+url.QueryEscape(string(e.Kind)), fiber.StatusFound)
}
