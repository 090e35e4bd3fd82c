// Package access keeps the authentication state of each browser session:
// who is signed in and which profile belongs to them.
//
// A Context moves through three states:
//
//	unauthenticated -> authenticated(identity) -> authorized(identity, profile)
//
// Guards only grant role protected access in the authorized state.
package access

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/observable"
)

// State of a Context.
type State int

const (
	// Unauthenticated means nobody is signed in.
	Unauthenticated State = iota
	// Authenticated means an identity is known but its profile is not (yet).
	Authenticated
	// Authorized means both identity and profile are known.
	Authorized
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Authorized:
		return "authorized"
	default:
		return "unauthenticated"
	}
}

// ErrClosed is returned by AwaitProfile when the context was closed while waiting.
var ErrClosed = errors.New("access context closed")

// Snapshot is a consistent view of a Context at one point in time.
type Snapshot struct {
	State    State
	Identity *account.Identity
	Profile  *account.Profile
}

// Context holds the current identity and profile of one session.
//
// The identity is written by the auth adapter, the profile by the profile
// synchronizer. Published values are shared; readers must not modify them.
type Context struct {
	sessionID string

	mu        sync.Mutex // serialises publishes so identity and profile stay paired
	expiresAt time.Time
	identity  *observable.Subject[*account.Identity]
	profile   *observable.Subject[*account.Profile]
}

// NewContext returns an unauthenticated context for sessionID.
func NewContext(sessionID string) *Context {
	return &Context{
		sessionID: sessionID,
		identity:  observable.New[*account.Identity](nil),
		profile:   observable.New[*account.Profile](nil),
	}
}

// SessionID returns the id of the session this context belongs to.
// Anonymous contexts have an empty id.
func (c *Context) SessionID() string {
	return c.sessionID
}

// Identity returns the current identity or nil.
func (c *Context) Identity() *account.Identity {
	return c.identity.Value()
}

// Profile returns the current profile or nil.
func (c *Context) Profile() *account.Profile {
	return c.profile.Value()
}

// State derives the state from the current values.
func (c *Context) State() State {
	return c.Snapshot().State
}

// Snapshot returns identity, profile and state read together.
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Identity: c.identity.Value(),
		Profile:  c.profile.Value(),
	}

	switch {
	case snap.Identity == nil:
		snap.State = Unauthenticated
	case snap.Profile == nil:
		snap.State = Authenticated
	default:
		snap.State = Authorized
	}

	return snap
}

// ExpiresAt returns the expiry of the backing session record.
func (c *Context) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.expiresAt
}

func (c *Context) setExpiry(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expiresAt = t
}

// PublishIdentity sets the signed in identity. Signing out (nil) or
// switching to another uid drops the profile first, so no reader ever sees
// a new identity paired with the previous profile.
func (c *Context) PublishIdentity(identity *account.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.identity.Value()
	if identity == nil || prev == nil || prev.UID != identity.UID {
		c.profile.Publish(nil)
	}

	c.identity.Publish(identity)
}

// PublishProfile sets the profile of the current identity. A profile for
// another uid, or any profile while signed out, is ignored and false is
// returned. Publishing nil is always accepted.
func (c *Context) PublishProfile(p *account.Profile) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p != nil {
		current := c.identity.Value()
		if current == nil || current.UID != p.UID {
			return false
		}
	}

	c.profile.Publish(p)

	return true
}

// Identities subscribes to identity changes. The current value is replayed.
func (c *Context) Identities() (<-chan *account.Identity, func()) {
	return c.identity.Subscribe()
}

// Profiles subscribes to profile changes. The current value is replayed.
func (c *Context) Profiles() (<-chan *account.Profile, func()) {
	return c.profile.Subscribe()
}

// AwaitProfile blocks until a profile is known or ctx is done.
func (c *Context) AwaitProfile(ctx context.Context) (*account.Profile, error) {
	ch, cancel := c.Profiles()
	defer cancel()

	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return nil, ErrClosed
			}

			if p != nil {
				return p, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err() //nolint:wrapcheck
		}
	}
}

func (c *Context) close() {
	c.identity.Close()
	c.profile.Close()
}
