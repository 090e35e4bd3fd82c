// Package handler holds what every web handler shares: the wired services
// and small request helpers.
package handler

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/auth"
	"github.com/bapti-church/bapti-web/internal/config"
	"github.com/bapti-church/bapti-web/internal/content"
	"github.com/bapti-church/bapti-web/internal/guard"
	"github.com/bapti-church/bapti-web/internal/profile"
)

// ErrMissingDeps is returned by Validate when a service is not wired.
var ErrMissingDeps = errors.New("handler dependencies are incomplete")

// Deps are the services handlers work with.
type Deps struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Auth     *auth.Adapter
	Registry *access.Registry
	Profiles *profile.Manager
	Content  *content.Store
	Guard    *guard.Guard

	// Local manages local credentials. It is nil when local sign-in is off.
	Local *auth.LocalProvider
}

// Validate reports ErrMissingDeps if any service is nil.
func (d *Deps) Validate() error {
	if d == nil || d.Cfg == nil || d.DB == nil || d.Auth == nil || d.Registry == nil ||
		d.Profiles == nil || d.Content == nil || d.Guard == nil {
		return ErrMissingDeps
	}

	return nil
}
