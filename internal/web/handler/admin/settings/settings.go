// Package settings lets developers edit application settings.
package settings

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/db/controller/setting"
	"github.com/bapti-church/bapti-web/internal/db/models"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	"github.com/bapti-church/bapti-web/internal/web/navigation"
)

// Path is the base path of the settings editor.
const Path = navigation.AdminSettingsPath

// Entry is one setting as returned by the editor.
type Entry struct {
	Name      string          `json:"name"`
	Value     json.RawMessage `json:"value"`
	UpdatedBy string          `json:"updatedBy,omitempty"`
	UpdatedAt string          `json:"updatedAt"`
}

// Service is the settings editor.
type Service struct {
	deps      *handler.Deps
	validator *validator.Validate
}

// Init registers routes for developers.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Use(deps.Guard.RequireRoles(handler.Access, navigation.DevRoles...))
		router.Get(handler.RootPath, s.List)
		router.Put("/:name", s.Put)
		router.Delete("/:name", s.Delete)
	})

	return nil
}

// List returns every stored setting.
func (s *Service) List(c *fiber.Ctx) error {
	all, err := setting.GetAll(s.deps.DB.WithContext(c.UserContext()))
	if err != nil {
		log.Error().Err(err).Msg("list settings")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Failed to load settings")
	}

	out := make([]Entry, 0, len(all))
	for _, st := range all {
		out = append(out, entryOf(&st))
	}

	return c.JSON(out)
}

// Put stores the request body as the value of the name parameter.
func (s *Service) Put(c *fiber.Ctx) error {
	name := c.Params("name")
	body := c.Body()

	if name == setting.SiteKey {
		site := setting.DefaultSite()
		if err := json.Unmarshal(body, &site); err != nil {
			return handler.JSONError(c, fiber.StatusBadRequest, "", setting.ErrSettingValueInvalid.Error())
		}

		if err := s.validator.Struct(site); err != nil {
			return handler.JSONError(c, fiber.StatusUnprocessableEntity, "", err.Error())
		}
	}

	actor := handler.Access(c).Identity()

	st, err := setting.Set(s.deps.DB.WithContext(c.UserContext()), name, body, actor.UID)
	if err != nil {
		if errors.Is(err, setting.ErrSettingValueInvalid) || errors.Is(err, setting.ErrSettingNameEmpty) {
			return handler.JSONError(c, fiber.StatusBadRequest, "", err.Error())
		}

		log.Error().Err(err).Str("setting", name).Msg("store setting")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Failed to store setting")
	}

	log.Info().Str("setting", name).Str("uid", actor.UID).Msg("setting changed")

	return c.JSON(entryOf(st))
}

// Delete removes the setting in the name parameter.
func (s *Service) Delete(c *fiber.Ctx) error {
	err := setting.Delete(s.deps.DB.WithContext(c.UserContext()), c.Params("name"))
	if errors.Is(err, setting.ErrSettingNotFound) {
		return handler.JSONError(c, fiber.StatusNotFound, "", err.Error())
	}

	if err != nil {
		log.Error().Err(err).Msg("delete setting")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Failed to delete setting")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func entryOf(st *models.Setting) Entry {
	return Entry{
		Name:      st.Name,
		Value:     json.RawMessage(st.Value),
		UpdatedBy: st.UpdatedBy,
		UpdatedAt: st.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
