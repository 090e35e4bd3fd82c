package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownEngine error if db.gormEngine is not supported.
	ErrUnknownEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrUnknownStorage error if storage.backend is not supported.
	ErrUnknownStorage = errors.New("toml config storage.backend is not supported")

	// ErrRedisURLMissing error if the redis backend is selected without an url.
	ErrRedisURLMissing = errors.New("storage.redisURL is required for the redis backend")

	// ErrFixedWithRemote error if the fixed test identity is enabled next to a real provider.
	ErrFixedWithRemote = errors.New("auth.fixed can not be combined with local, ldap or oidc")

	// ErrNoAuthProvider error if no sign-in method is enabled at all.
	ErrNoAuthProvider = errors.New("at least one auth provider must be enabled")
)
