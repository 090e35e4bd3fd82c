package login

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/auth"
	"github.com/bapti-church/bapti-web/internal/session"
	"github.com/bapti-church/bapti-web/internal/web/handler"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// FederatedLoginPath starts the federated flow.
	FederatedLoginPath = "/auth/oidc/login"
)

// Service is the login handler service.
type Service struct {
	deps *handler.Deps
}

// Form is the login request, accepted as form data or JSON.
type Form struct {
	Email     string `form:"email"     json:"email"`
	Password  string `form:"password"  json:"password"`
	ReturnURL string `form:"returnUrl" json:"returnUrl"`
}

// Methods tells the client which sign-in methods are available.
type Methods struct {
	Strategy     string `json:"strategy"`
	Password     bool   `json:"password"`
	Federated    bool   `json:"federated"`
	FederatedURL string `json:"federatedUrl,omitempty"`
	ReturnURL    string `json:"returnUrl"`
	Error        string `json:"error,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Init registers the login routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	return nil
}

// Get describes the available sign-in methods. A signed in user is sent on
// to the return URL.
func (s *Service) Get(c *fiber.Ctx) error {
	returnURL := handler.SafeReturnURL(c.Query("returnUrl"))

	if handler.Access(c).Identity() != nil {
		return c.Redirect(returnURL, fiber.StatusFound)
	}

	m := Methods{
		Strategy:  s.deps.Auth.Strategy().String(),
		Password:  s.deps.Auth.PasswordEnabled(),
		Federated: s.deps.Auth.FederatedEnabled(),
		ReturnURL: returnURL,
	}

	if m.Federated {
		m.FederatedURL = FederatedLoginPath + "?returnUrl=" + url.QueryEscape(returnURL)
	}

	// set by the federated callback
	if kind := c.Query("error"); kind != "" {
		m.Error = kind
		m.ErrorMessage = auth.Kind(kind).Message()
	}

	return c.JSON(m)
}

// Post signs in with email and password.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		log.Debug().Err(err).Msg("login form")

		return handler.JSONError(c, fiber.StatusBadRequest, "", ErrInvalidFormData.Error())
	}

	form.Email = strings.TrimSpace(form.Email)
	if form.Email == "" || form.Password == "" {
		return handler.JSONError(c, fiber.StatusBadRequest, "", ErrMissingCredentials.Error())
	}

	// a new login never reuses the previous session id
	if old := c.Cookies(handler.SessionCookie); old != "" {
		s.deps.Auth.Logout(c.UserContext(), old)
	}

	sessionID, err := session.NewID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Internal server error")
	}

	res, err := s.deps.Auth.Login(c.UserContext(), sessionID, form.Email, form.Password, handler.ClientMeta(c))
	if err != nil {
		e := auth.Normalize(err)

		return handler.JSONError(c, fiber.StatusUnauthorized, string(e.Kind), e.Message)
	}

	handler.SetSessionCookie(c, s.deps.Cfg, sessionID, res.ExpiresAt)

	return c.Redirect(handler.SafeReturnURL(form.ReturnURL), fiber.StatusFound)
}
