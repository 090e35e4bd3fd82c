package setting

import (
	"errors"

	"gorm.io/gorm"
)

// SiteKey names the setting holding Site.
const SiteKey = "site"

// Site holds the settings developers can change at runtime.
type Site struct {
	DefaultLanguage string `json:"defaultLanguage" validate:"required,bcp47_language_tag"`
	ContactEmail    string `json:"contactEmail"    validate:"omitempty,email"`
	Maintenance     bool   `json:"maintenance"`
}

// DefaultSite is used until a developer stores a Site.
func DefaultSite() Site {
	return Site{DefaultLanguage: "hu"}
}

// LoadSite returns the stored Site or DefaultSite.
func LoadSite(db *gorm.DB) (Site, error) {
	site := DefaultSite()

	err := Load(db, SiteKey, &site)
	if errors.Is(err, ErrSettingNotFound) {
		return DefaultSite(), nil
	}

	return site, err
}
