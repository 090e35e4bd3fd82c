// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/bapti-church/bapti-web/internal/config"
)

// MySQL builds a go-sql-driver style DSN: user:pass@tcp(host:port)/name?extras.
func MySQL(cfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s)/%s",
		cfg.DB.User,
		cfg.DB.Password,
		net.JoinHostPort(cfg.DB.Host, strconv.Itoa(cfg.DB.Port)),
		cfg.DB.Name,
	)

	if cfg.DB.Extras != "" {
		out += "?" + cfg.DB.Extras
	}

	return out
}

// Postgres builds a postgres:// URL accepted by pgx and gofiber/storage.
func Postgres(cfg *config.Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.DB.User, cfg.DB.Password),
		Host:     net.JoinHostPort(cfg.DB.Host, strconv.Itoa(cfg.DB.Port)),
		Path:     "/" + cfg.DB.Name,
		RawQuery: cfg.DB.Extras,
	}

	return u.String()
}

// Create returns the DSN for the configured gorm engine. For sqlite it is
// the database file name.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return MySQL(cfg)
	case config.EnginePostgres:
		return Postgres(cfg)
	default:
		return cfg.DB.Name
	}
}
