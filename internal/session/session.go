// Package session persists a signed in identity in key-value storage with a
// fixed lifetime, independent of the auth provider's own session.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/account"
)

const (
	// DefaultTTL is the lifetime of a session record.
	DefaultTTL = 24 * time.Hour

	// CookieName is the name of the cookie carrying the session id.
	CookieName = "session"

	keyPrefix = "bapti_auth_session:"
)

// Record is what gets stored per session.
type Record struct {
	Identity  account.Identity `json:"user"`
	ExpiresAt time.Time        `json:"expiry"`
}

// Store owns the session records. Storage errors never escape Restore or
// Clear; a broken backend reads as "not signed in".
type Store struct {
	storage fiber.Storage
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store on top of storage.
func New(storage fiber.Storage, opts ...Option) *Store {
	if storage == nil {
		panic("session: storage is nil")
	}

	s := &Store{
		storage: storage,
		ttl:     DefaultTTL,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Restore returns the identity stored for sessionID if the record exists
// and has not expired. Expired, unreadable or corrupt records are removed.
// Calling Restore repeatedly without Persist or Clear in between gives the
// same answer.
func (s *Store) Restore(sessionID string) (Record, bool) {
	if sessionID == "" {
		return Record{}, false
	}

	raw, err := s.storage.Get(keyPrefix + sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("session restore failed, treating as signed out")
		s.Clear(sessionID)

		return Record{}, false
	}

	if len(raw) == 0 {
		return Record{}, false
	}

	var rec Record
	if err = json.Unmarshal(raw, &rec); err != nil || rec.Identity.UID == "" {
		log.Warn().Err(err).Msg("corrupt session record removed")
		s.Clear(sessionID)

		return Record{}, false
	}

	if !s.now().Before(rec.ExpiresAt) {
		log.Debug().Str("uid", rec.Identity.UID).Time("expiry", rec.ExpiresAt).Msg("session expired")
		s.Clear(sessionID)

		return Record{}, false
	}

	return rec, true
}

// Persist stores identity under sessionID with expiry now + TTL, replacing
// any previous record. The returned error is informational; callers log it
// and carry on.
func (s *Store) Persist(sessionID string, identity account.Identity) (time.Time, error) {
	rec := Record{
		Identity:  identity,
		ExpiresAt: s.now().Add(s.ttl),
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return rec.ExpiresAt, err //nolint:wrapcheck
	}

	if err = s.storage.Set(keyPrefix+sessionID, out, s.ttl); err != nil {
		return rec.ExpiresAt, err //nolint:wrapcheck
	}

	return rec.ExpiresAt, nil
}

// Clear removes the record for sessionID.
func (s *Store) Clear(sessionID string) {
	if sessionID == "" {
		return
	}

	if err := s.storage.Delete(keyPrefix + sessionID); err != nil {
		log.Warn().Err(err).Msg("failed to delete session record")
	}
}

// NewID generates a new secure random session ID.
func NewID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err //nolint:wrapcheck
	}

	return hex.EncodeToString(b), nil
}
