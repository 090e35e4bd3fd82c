// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/alexedwards/argon2id"
)

// Credential is an email and password pair for local sign-in.
// Roles and display data live in the user profile, not here.
type Credential struct {
	// ID is the row id.
	ID uint64 `gorm:"primaryKey"`
	// UID is the stable identity id handed out on sign-in.
	UID string `gorm:"uniqueIndex;size:64;not null"`
	// Email is stored lowercase and used as the login name.
	Email string `gorm:"uniqueIndex;size:255;not null"`
	// Password is the Argon2id hash.
	Password string `gorm:"size:255;not null"`
	// DisplayName is copied into the identity.
	DisplayName string `gorm:"size:255"`
	// Active accounts may sign in.
	Active bool `gorm:"not null;default:true"`
	// EmailVerified is reported on the identity.
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName pins the table name.
func (Credential) TableName() string {
	return "credentials"
}

// HashPassword hashes a plaintext password with Argon2id default parameters.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword compares password against the stored hash in constant time.
// A malformed hash never matches.
func (c *Credential) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, c.Password)
	if err != nil {
		return false
	}

	return match
}
