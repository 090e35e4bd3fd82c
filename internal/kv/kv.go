// Package kv opens the key-value storage used for sessions, pending
// federated logins and the login history.
package kv

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/mysql/v2"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/config"
	"github.com/bapti-church/bapti-web/internal/db/dsn"
)

// RedisPrefix namespaces every key written to redis.
const RedisPrefix = "bapti:"

// Open returns the storage selected by cfg.Storage.Backend. The sql
// backends reuse the database settings from cfg.DB.
func Open(ctx context.Context, cfg *config.Config) (fiber.Storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageMySQL:
		return mysql.New(mysql.Config{
			ConnectionURI: dsn.MySQL(cfg),
			Table:         cfg.Storage.Table,
		}), nil
	case config.StoragePostgres:
		return postgres.New(postgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         cfg.Storage.Table,
		}), nil
	case config.StorageRedis:
		return NewRedis(ctx, cfg.Storage.RedisURL, RedisPrefix)
	case config.StorageMemory, "":
		log.Warn().Msg("using in-memory key-value storage: sessions are lost on restart")

		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownStorage, cfg.Storage.Backend)
	}
}
