package profile

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/docstore"
	"github.com/bapti-church/bapti-web/internal/role"
)

// Publisher pushes a changed profile to every live session of uid.
type Publisher interface {
	PublishProfile(uid string, p *account.Profile) int
}

// Manager is the user management side of profiles: listing and role changes.
type Manager struct {
	sync *Synchronizer
	pub  Publisher
}

// NewManager returns a Manager sharing the per-uid locks of s. pub may be nil.
func NewManager(s *Synchronizer, pub Publisher) *Manager {
	return &Manager{sync: s, pub: pub}
}

// UpdateRole changes the role of targetUID on behalf of actor.
// The assignment rules are checked before anything is written.
func (m *Manager) UpdateRole(
	ctx context.Context,
	actor *account.Profile,
	targetUID string,
	next role.Role,
) (*account.Profile, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	if actor.UID == targetUID {
		return nil, role.CanAssign(actor.Role, actor.Role, next, true)
	}

	unlock := m.sync.locks.lock(targetUID)
	defer unlock()

	target, err := m.sync.repo.get(ctx, targetUID)
	if err != nil {
		return nil, err
	}

	if err = role.CanAssign(actor.Role, target.Role, next, false); err != nil {
		log.Warn().Err(err).
			Str("actor", actor.UID).
			Str("target", targetUID).
			Str("role", next.String()).
			Msg("role change refused")

		return nil, err
	}

	now := m.sync.now().UTC().Truncate(time.Millisecond)

	err = m.sync.repo.update(ctx, targetUID, docstore.Record{
		"role":          string(next),
		"lastUpdatedAt": docstore.Millis(now),
		"updatedBy":     actor.UID,
	})
	if err != nil {
		return nil, err
	}

	updated := *target
	updated.Role = next
	updated.LastUpdatedAt = now
	updated.UpdatedBy = actor.UID

	log.Info().
		Str("actor", actor.UID).
		Str("target", targetUID).
		Str("from", target.Role.String()).
		Str("to", next.String()).
		Msg("role changed")

	if m.pub != nil {
		m.pub.PublishProfile(targetUID, &updated)
	}

	return &updated, nil
}

// Get returns the profile of uid or ErrProfileNotFound.
func (m *Manager) Get(ctx context.Context, uid string) (*account.Profile, error) {
	return m.sync.repo.get(ctx, uid)
}

// List returns every profile, newest first.
func (m *Manager) List(ctx context.Context) ([]*account.Profile, error) {
	return m.sync.repo.list(ctx)
}

// Search returns the profiles whose email or display name contains term,
// ignoring case. An empty term matches everything.
func (m *Manager) Search(ctx context.Context, term string) ([]*account.Profile, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return all, nil
	}

	out := all[:0]

	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Email), term) ||
			strings.Contains(strings.ToLower(p.DisplayName), term) {
			out = append(out, p)
		}
	}

	return out, nil
}

// HasRole reports whether uid holds r or a higher role.
func (m *Manager) HasRole(ctx context.Context, uid string, r role.Role) (bool, error) {
	p, err := m.Get(ctx, uid)
	if err != nil {
		return false, err
	}

	return role.HigherOrEqual(p.Role, r), nil
}

// History returns the login history the synchronizer writes to.
func (m *Manager) History() *History {
	return m.sync.History()
}

// CountByRole returns how many profiles hold each role. Every role is
// present in the result.
func (m *Manager) CountByRole(ctx context.Context) (map[role.Role]int, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[role.Role]int, len(role.All()))
	for _, r := range role.All() {
		counts[r] = 0
	}

	for _, p := range all {
		counts[p.Role]++
	}

	return counts, nil
}
