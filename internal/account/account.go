// Package account holds the identity and profile types shared by the
// session, auth, profile and guard packages.
package account

import (
	"time"

	"github.com/bapti-church/bapti-web/internal/role"
)

// Provider names stored on identities and profiles.
const (
	ProviderPassword = "password"
	ProviderLDAP     = "ldap"
	ProviderOIDC     = "oidc"
	ProviderFixed    = "fixed"
)

// Identity is the principal returned by an auth provider after sign-in.
// The application never edits an identity; a new one is issued on every login.
type Identity struct {
	// UID is the provider issued, stable and unique id.
	UID string `json:"uid"`
	// Email may be empty for providers that do not expose one.
	Email string `json:"email,omitempty"`
	// DisplayName may be empty.
	DisplayName string `json:"displayName,omitempty"`
	// PhotoURL may be empty.
	PhotoURL string `json:"photoURL,omitempty"`
	// EmailVerified as reported by the provider.
	EmailVerified bool `json:"emailVerified"`
	// Provider that issued the identity (see Provider* constants).
	Provider string `json:"provider"`
	// Fixed marks the built-in test identity. It is never set by a real provider.
	Fixed bool `json:"fixed,omitempty"`
}

// Profile is the durable per-identity record kept in the users collection.
type Profile struct {
	UID           string    `json:"uid"           mapstructure:"uid"`
	Email         string    `json:"email"         mapstructure:"email"`
	DisplayName   string    `json:"displayName"   mapstructure:"displayName"`
	PhotoURL      string    `json:"photoURL"      mapstructure:"photoURL"`
	Role          role.Role `json:"role"          mapstructure:"role"`
	CreatedAt     time.Time `json:"createdAt"     mapstructure:"createdAt"`
	LastLoginAt   time.Time `json:"lastLoginAt"   mapstructure:"lastLoginAt"`
	LoginCount    int       `json:"loginCount"    mapstructure:"loginCount"`
	Provider      string    `json:"provider"      mapstructure:"provider"`
	EmailVerified bool      `json:"emailVerified" mapstructure:"emailVerified"`
	PhoneNumber   string    `json:"phoneNumber"   mapstructure:"phoneNumber"`

	// LastUpdatedAt and UpdatedBy are set by role changes only.
	LastUpdatedAt time.Time `json:"lastUpdatedAt,omitzero" mapstructure:"lastUpdatedAt"`
	UpdatedBy     string    `json:"updatedBy,omitempty"    mapstructure:"updatedBy"`
}

// LoginEvent is one entry of the login history.
type LoginEvent struct {
	Email     string    `json:"email"`
	Role      role.Role `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"userAgent"`
	Platform  string    `json:"platform"`
}

// ClientMeta describes the client a login came from.
type ClientMeta struct {
	UserAgent string
	Platform  string
	IP        string
}
