// Package content provides the news, events and messages management of the
// admin area.
package content

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/content"
	"github.com/bapti-church/bapti-web/internal/docstore"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	"github.com/bapti-church/bapti-web/internal/web/navigation"
)

const (
	// NewsPath is the base path of news management.
	NewsPath = navigation.AdminNewsPath
	// EventsPath is the base path of event management.
	EventsPath = navigation.AdminEventsPath
	// MessagesPath lists contact messages.
	MessagesPath = navigation.AdminMessagesPath
)

// Created is the body of a successful create.
type Created struct {
	ID string `json:"id"`
}

// Service provides content CRUD for staff and above.
type Service struct {
	deps *handler.Deps
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	guard := deps.Guard.RequireRoles(handler.Access, navigation.ContentRoles...)

	app.Route(NewsPath, func(router fiber.Router) {
		router.Use(guard)
		router.Get(handler.RootPath, s.ListNews)
		router.Post(handler.RootPath, s.CreateNews)
		router.Put("/:id", s.UpdateNews)
		router.Delete("/:id", s.DeleteNews)
	})

	app.Route(EventsPath, func(router fiber.Router) {
		router.Use(guard)
		router.Get(handler.RootPath, s.ListEvents)
		router.Post(handler.RootPath, s.CreateEvent)
		router.Put("/:id", s.UpdateEvent)
		router.Delete("/:id", s.DeleteEvent)
	})

	app.Get(MessagesPath, guard, s.ListMessages)

	return nil
}

// ListNews lists news of every language, or of the lang query parameter.
func (s *Service) ListNews(c *fiber.Ctx) error {
	news, err := s.deps.Content.ListNews(c.UserContext(), c.Query("lang"))
	if err != nil {
		return StoreError(c, err)
	}

	return c.JSON(news)
}

// CreateNews adds a news item.
func (s *Service) CreateNews(c *fiber.Ctx) error {
	var n content.News
	if err := c.BodyParser(&n); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", "Invalid form data")
	}

	id, err := s.deps.Content.AddNews(c.UserContext(), n)
	if err != nil {
		return StoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Created{ID: id})
}

// UpdateNews replaces a news item.
func (s *Service) UpdateNews(c *fiber.Ctx) error {
	var n content.News
	if err := c.BodyParser(&n); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", "Invalid form data")
	}

	if err := s.deps.Content.UpdateNews(c.UserContext(), c.Params("id"), n); err != nil {
		return StoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteNews removes a news item.
func (s *Service) DeleteNews(c *fiber.Ctx) error {
	if err := s.deps.Content.DeleteNews(c.UserContext(), c.Params("id")); err != nil {
		return StoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListEvents lists events of every language, or of the lang query parameter.
func (s *Service) ListEvents(c *fiber.Ctx) error {
	events, err := s.deps.Content.ListEvents(c.UserContext(), c.Query("lang"))
	if err != nil {
		return StoreError(c, err)
	}

	return c.JSON(events)
}

// CreateEvent adds an event.
func (s *Service) CreateEvent(c *fiber.Ctx) error {
	var e content.Event
	if err := c.BodyParser(&e); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", "Invalid form data")
	}

	id, err := s.deps.Content.AddEvent(c.UserContext(), e)
	if err != nil {
		return StoreError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(Created{ID: id})
}

// UpdateEvent replaces an event.
func (s *Service) UpdateEvent(c *fiber.Ctx) error {
	var e content.Event
	if err := c.BodyParser(&e); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "", "Invalid form data")
	}

	if err := s.deps.Content.UpdateEvent(c.UserContext(), c.Params("id"), e); err != nil {
		return StoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(c *fiber.Ctx) error {
	if err := s.deps.Content.DeleteEvent(c.UserContext(), c.Params("id")); err != nil {
		return StoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListMessages lists contact messages, newest first.
func (s *Service) ListMessages(c *fiber.Ctx) error {
	msgs, err := s.deps.Content.Messages(c.UserContext())
	if err != nil {
		return StoreError(c, err)
	}

	return c.JSON(msgs)
}

// StoreError maps content store errors to responses.
func StoreError(c *fiber.Ctx, err error) error {
	var verr *content.ValidationError

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(handler.ErrorBody{
			Message: "Invalid content",
			Fields:  verr.Fields,
		})
	case errors.Is(err, content.ErrInvalidLanguage):
		return handler.JSONError(c, fiber.StatusBadRequest, "", err.Error())
	case errors.Is(err, content.ErrNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, "", err.Error())
	case errors.Is(err, docstore.ErrPermissionDenied):
		return handler.JSONError(c, fiber.StatusForbidden, "", err.Error())
	default:
		log.Error().Err(err).Msg("content store")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Content store failure")
	}
}

