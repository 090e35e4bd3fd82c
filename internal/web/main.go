// Package web wires the HTTP surface: middleware, handlers and the server
// lifecycle.
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
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	fiberlog "github.com/bapti-church/bapti-web/internal/logger/adapter/fiber"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	admincontent "github.com/bapti-church/bapti-web/internal/web/handler/admin/content"
	adminsettings "github.com/bapti-church/bapti-web/internal/web/handler/admin/settings"
	"github.com/bapti-church/bapti-web/internal/web/handler/admin/user"
	oidchandler "github.com/bapti-church/bapti-web/internal/web/handler/auth/oidc"
	"github.com/bapti-church/bapti-web/internal/web/handler/dashboard"
	"github.com/bapti-church/bapti-web/internal/web/handler/login"
	"github.com/bapti-church/bapti-web/internal/web/handler/logout"
	"github.com/bapti-church/bapti-web/internal/web/handler/public"
	"github.com/bapti-church/bapti-web/internal/web/handler/sessionapi"
	"github.com/bapti-church/bapti-web/internal/web/handler/settings"
	authmiddleware "github.com/bapti-church/bapti-web/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	deps         *handler.Deps
	fastShutDown bool
	alive        atomic.Bool
	onShutdown   []func()
}

// Option configures a Service.
type Option func(*Service)

// WithFastShutdown skips the load balancer grace period on shutdown.
func WithFastShutdown() Option {
	return func(s *Service) {
		s.fastShutDown = true
	}
}

// OnShutdown registers f to run after the http server stopped.
func OnShutdown(f func()) Option {
	return func(s *Service) {
		s.onShutdown = append(s.onShutdown, f)
	}
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

// WaitShutdown blocks until SIGINT or SIGTERM and then stops the server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown fails the liveness check, waits for the load balancer and
// stops the http server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	s.alive.Store(false)

	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.deps.Cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.deps.Cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	for _, f := range s.onShutdown {
		f()
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers the load balancer.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// New creates the web service. Handlers register their own routes and guards.
func New(deps *handler.Deps, opts ...Option) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}

	cfg := deps.Cfg

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	service := &Service{App: app, deps: deps}
	for _, opt := range opts {
		opt(service)
	}

	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlog.New(fiberlog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		UserID: func(c *fiber.Ctx) string {
			uid, _ := c.Locals(authmiddleware.LocalsUserID).(string)

			return uid
		},
	}))

	app.Get(CheckAlivePath, service.CheckAlive)
	metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get(MetricsPath, func(c *fiber.Ctx) error {
		metrics(c.Context())

		return nil
	})

	app.Use(authmiddleware.Middleware(cfg, deps.Registry))

	type initializer interface {
		Init(app *fiber.App, deps *handler.Deps) error
	}

	for _, h := range []initializer{
		&public.Service{},
		&login.Service{},
		&logout.Service{},
		&oidchandler.Service{},
		&settings.Service{},
		&dashboard.Service{},
		&user.Service{},
		&admincontent.Service{},
		&adminsettings.Service{},
	} {
		if err := h.Init(app, deps); err != nil {
			return nil, err
		}
	}

	if err := (&sessionapi.Service{}).Init(app); err != nil {
		return nil, err
	}

	return service, nil
}
