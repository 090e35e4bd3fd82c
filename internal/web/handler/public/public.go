// Package public serves the pages and APIs open to everybody.
package public

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/content"
	"github.com/bapti-church/bapti-web/internal/db/controller/setting"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	admincontent "github.com/bapti-church/bapti-web/internal/web/handler/admin/content"
	"github.com/bapti-church/bapti-web/internal/web/navigation"
)

const (
	// NewsPath lists news.
	NewsPath = handler.RootPath + "api/news"
	// EventsPath lists events.
	EventsPath = handler.RootPath + "api/events"
	// ContactPath accepts contact form submissions.
	ContactPath = handler.RootPath + "api/contact"
)

// Home is the JSON body of the root path.
type Home struct {
	Title           string            `json:"title"`
	DefaultLanguage string            `json:"defaultLanguage"`
	Maintenance     bool              `json:"maintenance"`
	Menu            []navigation.Item `json:"menu"`
}

// Service is the public handler.
type Service struct {
	deps *handler.Deps
}

// Init registers the public routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	app.Get(navigation.HomePath, s.Home)
	app.Get(NewsPath, s.News)
	app.Get(EventsPath, s.Events)
	app.Post(ContactPath, s.Contact)

	return nil
}

func (s *Service) site(c *fiber.Ctx) setting.Site {
	site, err := setting.LoadSite(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		log.Warn().Err(err).Msg("site settings unreadable, using defaults")

		return setting.DefaultSite()
	}

	return site
}

// Home describes the site and the menu of the caller.
func (s *Service) Home(c *fiber.Ctx) error {
	site := s.site(c)

	return c.JSON(Home{
		Title:           s.deps.Cfg.Title,
		DefaultLanguage: site.DefaultLanguage,
		Maintenance:     site.Maintenance,
		Menu:            navigation.Visible(handler.Access(c)),
	})
}

func (s *Service) lang(c *fiber.Ctx) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}

	return s.site(c).DefaultLanguage
}

// News lists the news of the lang query parameter, newest first.
func (s *Service) News(c *fiber.Ctx) error {
	news, err := s.deps.Content.ListNews(c.UserContext(), s.lang(c))
	if err != nil {
		return admincontent.StoreError(c, err)
	}

	return c.JSON(news)
}

// Events lists the events of the lang query parameter by date.
func (s *Service) Events(c *fiber.Ctx) error {
	events, err := s.deps.Content.ListEvents(c.UserContext(), s.lang(c))
	if err != nil {
		return admincontent.StoreError(c, err)
	}

	return c.JSON(events)
}

// Contact stores a contact form submission.
func (s *Service) Contact(c *fiber.Ctx) error {
	var m content.Message
	if err := c.BodyParser(&m); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", "Invalid form data")
	}

	id, err := s.deps.Content.Submit(c.UserContext(), m)
	if err != nil {
		return admincontent.StoreError(c, err)
	}

	log.Info().Str("id", id).Msg("contact message received")

	return c.Status(fiber.StatusCreated).JSON(admincontent.Created{ID: id})
}
