package config

import (
	"time"

	"github.com/bapti-church/bapti-web/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration // lifetime of a login session, default 24h
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Storage   Storage
	Auth      Auth
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable recover middleware
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Storage selects the key-value backend for sessions, federated login
// flows and the login history.
type Storage struct {
	Backend  string // memory, mysql, postgres or redis
	Table    string // table name for the sql backends
	RedisURL string `env:"BAPTI_REDIS_URL"`
}

// Auth holds all sign-in related settings.
type Auth struct {
	Local LocalAuth
	LDAP  LDAPAuth
	OIDC  OIDCAuth
	Fixed FixedAuth

	// AdminEmails are always granted the admin role on login.
	AdminEmails []string

	LoginHistoryMax      int           // ring buffer size of the login history
	FlowTimeout          time.Duration // how long a federated login may stay pending
	FederatedSyncTimeout time.Duration // how long to wait for the profile after a federated login
	RegistrySize         int           // number of live session contexts kept in memory

	RateLimit RateLimit
}

// RateLimit bounds password attempts per email address.
type RateLimit struct {
	PerMinute int
	Burst     int
}

// LocalAuth enables email and password sign-in against the local database.
type LocalAuth struct {
	Enabled      bool
	SeedEmail    string // created on first start when no credential exists
	SeedPassword string `env:"BAPTI_SEED_PASSWORD"`
}

// LDAPAuth holds LDAP directory settings.
type LDAPAuth struct {
	Enabled      bool
	Host         string
	Port         int
	UseSSL       bool
	UseTLS       bool
	SkipVerify   bool
	BindDN       string
	BindPassword string `env:"BAPTI_LDAP_BIND_PASSWORD"`
	BaseDN       string
	UserFilter   string // e.g. "(mail={email})"
	EmailAttr    string
	NameAttr     string
	Timeout      int
}

// OIDCAuth holds OpenID Connect settings for federated sign-in.
type OIDCAuth struct {
	Enabled      bool
	ProviderURL  string
	ClientID     string
	ClientSecret string `env:"BAPTI_OIDC_CLIENT_SECRET"`
	RedirectURL  string
	Scopes       []string
	// PostLogoutURL is passed to the provider's end session endpoint.
	PostLogoutURL string
}

// FixedAuth enables the built-in test identity. It can not be combined
// with any other provider.
type FixedAuth struct {
	Enabled     bool
	UID         string
	Email       string
	Password    string `env:"BAPTI_FIXED_PASSWORD"`
	DisplayName string
}

// RemoteEnabled reports whether any real provider is configured.
func (a Auth) RemoteEnabled() bool {
	return a.Local.Enabled || a.LDAP.Enabled || a.OIDC.Enabled
}
