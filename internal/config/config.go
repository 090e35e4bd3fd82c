// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// JSONOverrideEnv names the env var holding a JSON document merged over main.toml.
const JSONOverrideEnv = "BAPTI_CONFIG_JSON"

// Defaults applied by validate when a value is left empty.
const (
	DefaultSessionExpiry        = 24 * time.Hour
	DefaultLoginHistoryMax      = 20
	DefaultFlowTimeout          = 5 * time.Minute
	DefaultFederatedSyncTimeout = 5 * time.Second
	DefaultRegistrySize         = 4096
	DefaultRatePerMinute        = 5
	DefaultRateBurst            = 5
	DefaultShutDownTime         = 5
	DefaultStorageTable         = "bapti_kv"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(JSONOverrideEnv)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	// secrets from dedicated env vars win over both files
	if err = env.Parse(&c); err != nil {
		return c, errors.Wrap(err, "failed to read config from environment")
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the service can not start without and
// fills in defaults for the rest.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch strings.ToLower(c.DB.GormEngine) {
	case "":
		c.DB.GormEngine = EngineSQLite
	case EngineSQLite, EngineMySQL, EnginePostgres:
		c.DB.GormEngine = strings.ToLower(c.DB.GormEngine)
	default:
		return errors.Wrap(ErrUnknownEngine, c.DB.GormEngine)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case "":
		c.Storage.Backend = StorageMemory
	case StorageMemory, StorageMySQL, StoragePostgres:
		c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	case StorageRedis:
		c.Storage.Backend = StorageRedis
		if c.Storage.RedisURL == "" {
			return errors.Wrap(ErrRedisURLMissing, invalidErrMessage)
		}
	default:
		return errors.Wrap(ErrUnknownStorage, c.Storage.Backend)
	}

	if c.Auth.Fixed.Enabled && c.Auth.RemoteEnabled() {
		return errors.Wrap(ErrFixedWithRemote, invalidErrMessage)
	}

	if !c.Auth.Fixed.Enabled && !c.Auth.RemoteEnabled() {
		return errors.Wrap(ErrNoAuthProvider, invalidErrMessage)
	}

	applyDefaults(c)

	return nil
}

func applyDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = DefaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = DefaultSessionExpiry
	}

	if c.Storage.Table == "" {
		c.Storage.Table = DefaultStorageTable
	}

	if c.Auth.LoginHistoryMax <= 0 {
		c.Auth.LoginHistoryMax = DefaultLoginHistoryMax
	}

	if c.Auth.FlowTimeout == 0 {
		c.Auth.FlowTimeout = DefaultFlowTimeout
	}

	if c.Auth.FederatedSyncTimeout == 0 {
		c.Auth.FederatedSyncTimeout = DefaultFederatedSyncTimeout
	}

	if c.Auth.RegistrySize <= 0 {
		c.Auth.RegistrySize = DefaultRegistrySize
	}

	if c.Auth.RateLimit.PerMinute <= 0 {
		c.Auth.RateLimit.PerMinute = DefaultRatePerMinute
	}

	if c.Auth.RateLimit.Burst <= 0 {
		c.Auth.RateLimit.Burst = DefaultRateBurst
	}
}
