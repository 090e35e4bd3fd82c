package access_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/kv/kvtest"
	"github.com/bapti-church/bapti-web/internal/role"
	"github.com/bapti-church/bapti-web/internal/session"
)

func identity(uid string) *account.Identity {
	return &account.Identity{UID: uid, Email: uid + "@bapti.org", Provider: account.ProviderPassword}
}

func profile(uid string, r role.Role) *account.Profile {
	return &account.Profile{UID: uid, Email: uid + "@bapti.org", Role: r}
}

func TestContextStates(t *testing.T) {
	c := access.NewContext("sid")
	assert.Equal(t, access.Unauthenticated, c.State())

	c.PublishIdentity(identity("u1"))
	assert.Equal(t, access.Authenticated, c.State())

	require.True(t, c.PublishProfile(profile("u1", role.Staff)))
	assert.Equal(t, access.Authorized, c.State())

	c.PublishIdentity(nil)
	assert.Equal(t, access.Unauthenticated, c.State())
	assert.Nil(t, c.Profile())
}

func TestContextRejectsForeignProfile(t *testing.T) {
	c := access.NewContext("sid")

	assert.False(t, c.PublishProfile(profile("u1", role.Admin)), "no identity yet")

	c.PublishIdentity(identity("u1"))
	assert.False(t, c.PublishProfile(profile("u2", role.Admin)))
	assert.Nil(t, c.Profile())
}

func TestContextSwitchingIdentityDropsProfile(t *testing.T) {
	c := access.NewContext("sid")
	c.PublishIdentity(identity("u1"))
	c.PublishProfile(profile("u1", role.Admin))

	// re-publishing the same uid keeps the profile
	c.PublishIdentity(identity("u1"))
	assert.NotNil(t, c.Profile())

	c.PublishIdentity(identity("u2"))
	assert.Nil(t, c.Profile())
	assert.Equal(t, access.Authenticated, c.State())
}

func TestLateSubscriberGetsCurrentIdentity(t *testing.T) {
	c := access.NewContext("sid")
	c.PublishIdentity(identity("u1"))

	ch, cancel := c.Identities()
	defer cancel()

	got := <-ch
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UID)
}

func TestAwaitProfile(t *testing.T) {
	c := access.NewContext("sid")
	c.PublishIdentity(identity("u1"))

	go func() {
		time.Sleep(10 * time.Millisecond)
		c.PublishProfile(profile("u1", role.Guest))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	p, err := c.AwaitProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, role.Guest, p.Role)
}

func TestAwaitProfileTimeout(t *testing.T) {
	c := access.NewContext("sid")
	c.PublishIdentity(identity("u1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.AwaitProfile(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type countingLoader struct {
	calls atomic.Int32
	role  role.Role
}

func (l *countingLoader) Load(_ context.Context, ac *access.Context, id account.Identity) {
	l.calls.Add(1)
	time.Sleep(5 * time.Millisecond)
	ac.PublishProfile(profile(id.UID, l.role))
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

func newRegistry(t *testing.T, loader access.Loader) (*access.Registry, *session.Store, *clock) {
	t.Helper()

	clk := &clock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}
	store := session.New(kvtest.New(), session.WithClock(clk.now))

	reg, err := access.NewRegistry(16, store, loader, access.WithRegistryClock(clk.now))
	require.NoError(t, err)

	return reg, store, clk
}

func TestResolveRebuildsFromSessionStore(t *testing.T) {
	loader := &countingLoader{role: role.Staff}
	reg, store, _ := newRegistry(t, loader)

	_, err := store.Persist("sid", *identity("u1"))
	require.NoError(t, err)

	c := reg.Resolve(context.Background(), "sid")
	assert.Equal(t, access.Authorized, c.State())
	assert.Equal(t, "sid", c.SessionID())

	// cached now
	again := reg.Resolve(context.Background(), "sid")
	assert.Same(t, c, again)
	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestResolveCoalescesConcurrentRebuilds(t *testing.T) {
	loader := &countingLoader{role: role.Guest}
	reg, store, _ := newRegistry(t, loader)

	_, err := store.Persist("sid", *identity("u1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*access.Context, 8)

	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()
			results[i] = reg.Resolve(context.Background(), "sid")
		}()
	}

	wg.Wait()

	for _, c := range results {
		assert.Same(t, results[0], c)
	}

	assert.Equal(t, int32(1), loader.calls.Load())
}

func TestResolveUnknownSessionIsAnonymous(t *testing.T) {
	reg, _, _ := newRegistry(t, nil)

	c := reg.Resolve(context.Background(), "nope")
	assert.Equal(t, access.Unauthenticated, c.State())
	assert.Equal(t, 0, reg.Len())

	assert.Equal(t, access.Unauthenticated, reg.Resolve(context.Background(), "").State())
}

func TestResolveExpiredContext(t *testing.T) {
	reg, store, clk := newRegistry(t, nil)

	expiry, err := store.Persist("sid", *identity("u1"))
	require.NoError(t, err)

	c := reg.Open("sid", expiry)
	c.PublishIdentity(identity("u1"))

	clk.advance(25 * time.Hour)

	got := reg.Resolve(context.Background(), "sid")
	assert.Equal(t, access.Unauthenticated, got.State())
	assert.Equal(t, 0, reg.Len())
}

func TestOpenReplacesAndDropCloses(t *testing.T) {
	reg, _, _ := newRegistry(t, nil)

	first := reg.Open("sid", time.Time{})
	ch, cancel := first.Identities()
	defer cancel()
	<-ch

	second := reg.Open("sid", time.Time{})
	assert.NotSame(t, first, second)

	_, ok := <-ch
	assert.False(t, ok, "replaced context must be closed")

	reg.Drop("sid")

	_, found := reg.Get("sid")
	assert.False(t, found)
}

func TestPublishProfileFansOut(t *testing.T) {
	reg, _, _ := newRegistry(t, nil)

	a := reg.Open("sid-a", time.Time{})
	a.PublishIdentity(identity("u1"))

	b := reg.Open("sid-b", time.Time{})
	b.PublishIdentity(identity("u1"))

	other := reg.Open("sid-c", time.Time{})
	other.PublishIdentity(identity("u2"))

	n := reg.PublishProfile("u1", profile("u1", role.Staff))
	assert.Equal(t, 2, n)
	assert.Equal(t, role.Staff, a.Profile().Role)
	assert.Equal(t, role.Staff, b.Profile().Role)
	assert.Nil(t, other.Profile())
}
