// Package daemon wires storage, authentication and the web service together.
package daemon

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/auth"
	"github.com/bapti-church/bapti-web/internal/config"
	"github.com/bapti-church/bapti-web/internal/content"
	"github.com/bapti-church/bapti-web/internal/docstore"
	"github.com/bapti-church/bapti-web/internal/guard"
	"github.com/bapti-church/bapti-web/internal/kv"
	"github.com/bapti-church/bapti-web/internal/profile"
	"github.com/bapti-church/bapti-web/internal/session"
	"github.com/bapti-church/bapti-web/internal/web"
	"github.com/bapti-church/bapti-web/internal/web/handler"
	oidchandler "github.com/bapti-church/bapti-web/internal/web/handler/auth/oidc"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the web service and blocks until a shutdown signal has
// been handled.
func (d *Daemon) Start() error {
	done := make(chan struct{})

	go func() {
		d.webService.WaitShutdown()
		close(done)
	}()

	if err := d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port)); err != nil {
		return err
	}

	<-done

	return nil
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	storage, err := kv.Open(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open key-value storage")
	}

	docs := docstore.NewGormStore(db)
	sessions := session.New(storage, session.WithTTL(cfg.Webserver.Session.ExpiryTime))
	sync := profile.NewSynchronizer(docs, profile.NewHistory(storage, cfg.Auth.LoginHistoryMax), cfg.Auth.AdminEmails)

	registry, err := access.NewRegistry(cfg.Auth.RegistrySize, sessions, sync)
	if err != nil {
		return nil, err
	}

	opts, local, err := providers(ctx, cfg, db)
	if err != nil {
		return nil, err
	}

	opts.Sessions = sessions
	opts.Contexts = registry
	opts.Profiles = sync
	opts.Storage = storage
	opts.FlowTimeout = cfg.Auth.FlowTimeout
	opts.SyncTimeout = cfg.Auth.FederatedSyncTimeout
	opts.PostLogoutURL = cfg.Auth.OIDC.PostLogoutURL
	opts.RateLimitPerMinute = cfg.Auth.RateLimit.PerMinute
	opts.RateLimitBurst = cfg.Auth.RateLimit.Burst

	adapter, err := auth.New(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create auth adapter")
	}

	log.Info().Str("strategy", adapter.Strategy().String()).Msg("authentication ready")

	svc, err := web.New(&handler.Deps{
		Cfg:      cfg,
		DB:       db,
		Auth:     adapter,
		Registry: registry,
		Profiles: profile.NewManager(sync, registry),
		Content:  content.New(docs),
		Guard:    guard.New(prometheus.DefaultRegisterer),
		Local:    local,
	}, web.OnShutdown(adapter.Close), web.OnShutdown(closeStorage(storage)))
	if err != nil {
		return nil, err
	}

	return &Daemon{cfg: cfg, webService: svc}, nil
}

// providers builds the sign-in providers enabled in cfg. The local provider
// is also returned on its own for credential management; it is nil when
// local sign-in is off.
func providers(ctx context.Context, cfg *config.Config, db *gorm.DB) (auth.Options, *auth.LocalProvider, error) {
	var (
		opts  auth.Options
		local *auth.LocalProvider
	)

	if cfg.Auth.Fixed.Enabled {
		log.Warn().Str("email", cfg.Auth.Fixed.Email).Msg("fixed test identity enabled")

		fixed, err := auth.NewFixedProvider(cfg.Auth.Fixed, cfg.Webserver.URL+oidchandler.CallbackPath)
		if err != nil {
			return opts, nil, err
		}

		opts.Fixed = fixed

		return opts, nil, nil
	}

	if cfg.Auth.Local.Enabled {
		local = auth.NewLocalProvider(db)
		if err := seed(ctx, cfg, local); err != nil {
			return opts, nil, errors.Wrap(err, "failed to seed credential")
		}

		opts.Password = append(opts.Password, local)
	}

	if cfg.Auth.LDAP.Enabled {
		ldap, err := auth.NewLDAPProvider(cfg.Auth.LDAP)
		if err != nil {
			return opts, nil, err
		}

		opts.Password = append(opts.Password, ldap)
	}

	if cfg.Auth.OIDC.Enabled {
		oidc, err := auth.NewOIDCProvider(ctx, cfg.Auth.OIDC)
		if err != nil {
			return opts, nil, err
		}

		opts.Federated = oidc
	}

	return opts, local, nil
}

func closeStorage(s fiber.Storage) func() {
	return func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close key-value storage")
		}
	}
}
