// Package profile keeps the durable user profiles in the users collection
// consistent with the identities that sign in.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/docstore"
	"github.com/bapti-church/bapti-web/internal/role"
)

// Synchronizer creates and repairs profiles at login time.
type Synchronizer struct {
	repo      repository
	history   *History
	allowlist map[string]struct{}
	locks     *stripes
	now       func() time.Time
}

var _ access.Loader = (*Synchronizer)(nil)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		s.now = now
	}
}

// NewSynchronizer creates a Synchronizer. Emails in adminEmails always
// end up with at least the admin role.
func NewSynchronizer(store docstore.Store, history *History, adminEmails []string, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		repo:      repository{store: store},
		history:   history,
		allowlist: make(map[string]struct{}, len(adminEmails)),
		locks:     &stripes{},
		now:       time.Now,
	}

	for _, email := range adminEmails {
		if email = normalizeEmail(email); email != "" {
			s.allowlist[email] = struct{}{}
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// IsAllowlisted reports whether email is a known administrator.
func (s *Synchronizer) IsAllowlisted(email string) bool {
	_, ok := s.allowlist[normalizeEmail(email)]

	return ok
}

// FallbackRole is the role a brand new profile for email gets.
func (s *Synchronizer) FallbackRole(email string) role.Role {
	if s.IsAllowlisted(email) {
		return role.Admin
	}

	return role.Guest
}

// History returns the login history the synchronizer writes to.
func (s *Synchronizer) History() *History {
	return s.history
}

// Sync makes sure a profile exists for identity and publishes it into ac.
//
// A missing profile is created with the fallback role (admin for allowlisted
// emails). An existing profile is left alone, except that an allowlisted
// email below admin is raised to admin. Only profiles confirmed by the store
// are published; on a failed create nil is published.
func (s *Synchronizer) Sync(
	ctx context.Context,
	ac *access.Context,
	identity account.Identity,
	fallback role.Role,
	meta account.ClientMeta,
) (*account.Profile, error) {
	target := fallback
	if !target.Valid() {
		target = role.Guest
	}

	allowlisted := s.IsAllowlisted(identity.Email)
	if allowlisted {
		target = role.Admin
	}

	p, err := s.reconcile(ctx, identity, target, allowlisted)
	if err != nil {
		log.Error().Err(err).Str("uid", identity.UID).Str("email", identity.Email).Msg("profile sync failed")
	}

	effective := target
	if p != nil {
		effective = p.Role
	}

	if s.history != nil {
		s.history.Append(account.LoginEvent{
			Email:     identity.Email,
			Role:      effective,
			Timestamp: s.now(),
			UserAgent: meta.UserAgent,
			Platform:  meta.Platform,
		})
	}

	if ac != nil && !ac.PublishProfile(p) {
		log.Warn().Str("uid", identity.UID).Msg("profile not published, session identity changed")
	}

	return p, err
}

func (s *Synchronizer) reconcile(
	ctx context.Context,
	identity account.Identity,
	target role.Role,
	allowlisted bool,
) (*account.Profile, error) {
	unlock := s.locks.lock(identity.UID)
	defer unlock()

	existing, err := s.repo.get(ctx, identity.UID)

	switch {
	case errors.Is(err, ErrProfileNotFound):
		return s.create(ctx, identity, target)
	case err != nil:
		return nil, err
	}

	if !allowlisted || role.HigherOrEqual(existing.Role, role.Admin) {
		return existing, nil
	}

	if err = s.repo.update(ctx, identity.UID, docstore.Record{"role": string(role.Admin)}); err != nil {
		return existing, err
	}

	log.Info().Str("uid", identity.UID).Str("from", existing.Role.String()).Msg("raised allowlisted profile to admin")

	healed := *existing
	healed.Role = role.Admin

	return &healed, nil
}

func (s *Synchronizer) create(ctx context.Context, identity account.Identity, target role.Role) (*account.Profile, error) {
	now := s.now().UTC().Truncate(time.Millisecond)

	p := &account.Profile{
		UID:           identity.UID,
		Email:         identity.Email,
		DisplayName:   identity.DisplayName,
		PhotoURL:      identity.PhotoURL,
		Role:          target,
		CreatedAt:     now,
		LastLoginAt:   now,
		LoginCount:    1,
		Provider:      identity.Provider,
		EmailVerified: identity.EmailVerified,
	}

	if err := s.repo.create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().Str("uid", p.UID).Str("role", p.Role.String()).Msg("created profile")

	return p, nil
}

// Load reads the stored profile of identity and publishes it into ac.
// It never writes; a missing profile leaves ac authenticated only.
func (s *Synchronizer) Load(ctx context.Context, ac *access.Context, identity account.Identity) {
	p, err := s.repo.get(ctx, identity.UID)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			log.Error().Err(err).Str("uid", identity.UID).Msg("failed to load profile")
		}

		return
	}

	ac.PublishProfile(p)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
