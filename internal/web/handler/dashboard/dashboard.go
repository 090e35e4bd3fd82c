// Package dashboard provides the admin overview.
package dashboard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bapti-church/bapti-web/internal/role"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	"github.com/bapti-church/bapti-web/internal/web/navigation"
)

// Path is the path to the dashboard.
const Path = navigation.AdminPath

// Overview is the JSON body of Path.
type Overview struct {
	Users    map[role.Role]int `json:"users"`
	News     int               `json:"news"`
	Events   int               `json:"events"`
	Messages int               `json:"messages"`
	Sessions int               `json:"sessions"`
	Logins   int               `json:"recentLogins"`
}

// Service is the dashboard handler.
type Service struct {
	deps *handler.Deps
}

// Init registers the dashboard for admins and developers.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	app.Get(Path, deps.Guard.RequireRoles(handler.Access, navigation.AdminRoles...), s.Get)

	return nil
}

// Get collects the counts shown on the dashboard.
func (s *Service) Get(c *fiber.Ctx) error {
	var (
		out Overview
		ctx = c.UserContext()
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.deps.Profiles.CountByRole(gctx)
		out.Users = users

		return err
	})
	g.Go(func() error {
		news, err := s.deps.Content.ListNews(gctx, "")
		out.News = len(news)

		return err
	})
	g.Go(func() error {
		events, err := s.deps.Content.ListEvents(gctx, "")
		out.Events = len(events)

		return err
	})
	g.Go(func() error {
		msgs, err := s.deps.Content.Messages(gctx)
		out.Messages = len(msgs)

		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("dashboard counts")

		return handler.JSONError(c, fiber.StatusInternalServerError, "", "Failed to load dashboard")
	}

	out.Sessions = s.deps.Registry.Len()
	out.Logins = len(s.deps.Profiles.History().Entries())

	return c.JSON(out)
}
