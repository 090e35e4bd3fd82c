package access

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/session"
)

// Loader fills in the profile of a context rebuilt from a stored session.
// It must only read, never create or change profiles.
type Loader interface {
	Load(ctx context.Context, ac *Context, identity account.Identity)
}

// Registry keeps the live contexts of all sessions in a bounded LRU.
// An evicted context is rebuilt from the session store on the next request.
type Registry struct {
	cache    *lru.Cache[string, *Context]
	sessions *session.Store
	loader   Loader
	group    singleflight.Group
	now      func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryClock replaces time.Now for expiry checks.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a Registry holding at most size contexts. loader may
// be nil, in which case rebuilt contexts stay in the authenticated state.
func NewRegistry(size int, sessions *session.Store, loader Loader, opts ...RegistryOption) (*Registry, error) {
	cache, err := lru.NewWithEvict[string, *Context](size, func(_ string, c *Context) {
		c.close()
	})
	if err != nil {
		return nil, fmt.Errorf("create context cache: %w", err)
	}

	r := &Registry{
		cache:    cache,
		sessions: sessions,
		loader:   loader,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Open registers a fresh, unauthenticated context for sessionID. A
// previous context under the same id is closed.
func (r *Registry) Open(sessionID string, expiresAt time.Time) *Context {
	c := NewContext(sessionID)
	c.setExpiry(expiresAt)

	if old, ok := r.cache.Peek(sessionID); ok {
		old.close()
	}

	r.cache.Add(sessionID, c)

	return c
}

// Get returns the cached context for sessionID without touching the store.
func (r *Registry) Get(sessionID string) (*Context, bool) {
	c, ok := r.cache.Get(sessionID)
	if !ok || !r.fresh(c) {
		return nil, false
	}

	return c, true
}

// Resolve returns the context of sessionID. Unknown or expired sessions
// yield an anonymous, unauthenticated context that is not registered.
// Concurrent rebuilds of one session share a single store read.
func (r *Registry) Resolve(ctx context.Context, sessionID string) *Context {
	if sessionID == "" {
		return NewContext("")
	}

	if c, ok := r.Get(sessionID); ok {
		return c
	}

	// expired contexts leave the cache before the store is asked
	if c, ok := r.cache.Peek(sessionID); ok && !r.fresh(c) {
		r.cache.Remove(sessionID)
	}

	v, _, _ := r.group.Do(sessionID, func() (any, error) {
		if c, ok := r.Get(sessionID); ok {
			return c, nil
		}

		rec, ok := r.sessions.Restore(sessionID)
		if !ok {
			return NewContext(""), nil
		}

		c := NewContext(sessionID)
		c.setExpiry(rec.ExpiresAt)

		identity := rec.Identity
		c.PublishIdentity(&identity)

		if r.loader != nil {
			r.loader.Load(context.WithoutCancel(ctx), c, identity)
		}

		r.cache.Add(sessionID, c)

		return c, nil
	})

	return v.(*Context) //nolint:forcetypeassert
}

// Drop forgets the context of sessionID and closes it.
func (r *Registry) Drop(sessionID string) {
	r.cache.Remove(sessionID)
}

// PublishProfile pushes p into every live context signed in as uid and
// returns how many were updated.
func (r *Registry) PublishProfile(uid string, p *account.Profile) int {
	n := 0

	for _, c := range r.cache.Values() {
		if id := c.Identity(); id != nil && id.UID == uid {
			if c.PublishProfile(p) {
				n++
			}
		}
	}

	return n
}

// Len returns the number of live contexts.
func (r *Registry) Len() int {
	return r.cache.Len()
}

func (r *Registry) fresh(c *Context) bool {
	exp := c.ExpiresAt()

	return exp.IsZero() || r.now().Before(exp)
}
