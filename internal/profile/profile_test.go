package profile_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bapti-church/bapti-web/internal/access"
	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/db/dbtest"
	"github.com/bapti-church/bapti-web/internal/docstore"
	"github.com/bapti-church/bapti-web/internal/kv/kvtest"
	"github.com/bapti-church/bapti-web/internal/profile"
	"github.com/bapti-church/bapti-web/internal/role"
)

var testNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type countingStore struct {
	docstore.Store
	sets    atomic.Int32
	updates atomic.Int32
}

func (c *countingStore) Set(ctx context.Context, collection, id string, rec docstore.Record) error {
	c.sets.Add(1)

	return c.Store.Set(ctx, collection, id, rec)
}

func (c *countingStore) Update(ctx context.Context, collection, id string, fields docstore.Record) error {
	c.updates.Add(1)

	return c.Store.Update(ctx, collection, id, fields)
}

type fixture struct {
	db      docstore.Store
	store   *countingStore
	storage *kvtest.Memory
	sync    *profile.Synchronizer
}

func newFixture(t *testing.T, opts ...docstore.Option) fixture {
	t.Helper()

	db := dbtest.Open(t)
	writer := docstore.NewGormStore(db)
	store := &countingStore{Store: docstore.NewGormStore(db, opts...)}
	storage := kvtest.New()

	s := profile.NewSynchronizer(
		store,
		profile.NewHistory(storage, 20),
		[]string{"Admin@Bapti.org", " pastor@bapti.org "},
		profile.WithClock(func() time.Time { return testNow }),
	)

	return fixture{db: writer, store: store, storage: storage, sync: s}
}

func signedIn(identity account.Identity) *access.Context {
	ac := access.NewContext("sid-" + identity.UID)
	ac.PublishIdentity(&identity)

	return ac
}

func TestSync_CreatesProfile(t *testing.T) {
	f := newFixture(t)
	id := account.Identity{UID: "u1", Email: "guest@example.org", DisplayName: "Guest", Provider: account.ProviderPassword}
	ac := signedIn(id)

	p, err := f.sync.Sync(context.Background(), ac, id, role.Guest, account.ClientMeta{UserAgent: "ua", Platform: "linux"})
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, role.Guest, p.Role)
	assert.Equal(t, 1, p.LoginCount)
	assert.True(t, testNow.Equal(p.CreatedAt))
	assert.True(t, testNow.Equal(p.LastLoginAt))
	assert.Equal(t, p, ac.Profile())
	assert.Equal(t, access.Authorized, ac.State())

	history := f.sync.History().Entries()
	require.Len(t, history, 1)
	assert.Equal(t, account.LoginEvent{
		Email: "guest@example.org", Role: role.Guest, Timestamp: testNow, UserAgent: "ua", Platform: "linux",
	}, history[0])
}

func TestSync_IdempotentForExistingProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := account.Identity{UID: "u1", Email: "guest@example.org"}

	_, err := f.sync.Sync(ctx, signedIn(id), id, role.Guest, account.ClientMeta{})
	require.NoError(t, err)

	before, err := f.db.Get(ctx, profile.Collection, "u1")
	require.NoError(t, err)

	// a different fallback must not change the stored role
	_, err = f.sync.Sync(ctx, signedIn(id), id, role.Staff, account.ClientMeta{})
	require.NoError(t, err)

	after, err := f.db.Get(ctx, profile.Collection, "u1")
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.EqualValues(t, 1, f.store.sets.Load())
	assert.EqualValues(t, 0, f.store.updates.Load())
}

func TestSync_AllowlistCreatesAdmin(t *testing.T) {
	f := newFixture(t)
	id := account.Identity{UID: "u2", Email: "ADMIN@bapti.org"}

	p, err := f.sync.Sync(context.Background(), signedIn(id), id, role.Guest, account.ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, role.Admin, p.Role)
}

func TestSync_AllowlistSelfHeals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Set(ctx, profile.Collection, "u3", docstore.Record{
		"uid": "u3", "email": "pastor@bapti.org", "role": "guest", "loginCount": 7, "displayName": "Pastor",
	}))

	id := account.Identity{UID: "u3", Email: "pastor@bapti.org"}

	p, err := f.sync.Sync(ctx, signedIn(id), id, role.Guest, account.ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, role.Admin, p.Role)
	assert.Equal(t, 7, p.LoginCount)
	assert.Equal(t, "Pastor", p.DisplayName)

	rec, err := f.db.Get(ctx, profile.Collection, "u3")
	require.NoError(t, err)
	assert.Equal(t, "admin", rec["role"])
	assert.InDelta(t, 7, rec["loginCount"], 0)

	// second run is a no-op
	_, err = f.sync.Sync(ctx, signedIn(id), id, role.Guest, account.ClientMeta{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.store.updates.Load())
	assert.EqualValues(t, 0, f.store.sets.Load())
}

func TestSync_AllowlistKeepsDev(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Set(ctx, profile.Collection, "u4", docstore.Record{"email": "admin@bapti.org", "role": "dev"}))

	id := account.Identity{UID: "u4", Email: "admin@bapti.org"}

	p, err := f.sync.Sync(ctx, signedIn(id), id, role.Guest, account.ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, role.Dev, p.Role)
	assert.EqualValues(t, 0, f.store.updates.Load())
}

func TestSync_NeverFabricates(t *testing.T) {
	f := newFixture(t, docstore.ReadOnly())
	id := account.Identity{UID: "u5", Email: "guest@example.org"}
	ac := signedIn(id)

	p, err := f.sync.Sync(context.Background(), ac, id, role.Guest, account.ClientMeta{})
	require.ErrorIs(t, err, profile.ErrPermissionDenied)
	assert.Nil(t, p)
	assert.Nil(t, ac.Profile())
	assert.Equal(t, access.Authenticated, ac.State())

	// the login itself is still recorded
	assert.Len(t, f.sync.History().Entries(), 1)
}

func TestSync_FailedHealPublishesStoredProfile(t *testing.T) {
	f := newFixture(t, docstore.ReadOnly())
	ctx := context.Background()

	require.NoError(t, f.db.Set(ctx, profile.Collection, "u6", docstore.Record{"email": "admin@bapti.org", "role": "staff"}))

	id := account.Identity{UID: "u6", Email: "admin@bapti.org"}
	ac := signedIn(id)

	p, err := f.sync.Sync(ctx, ac, id, role.Guest, account.ClientMeta{})
	require.ErrorIs(t, err, profile.ErrPermissionDenied)
	require.NotNil(t, p)
	assert.Equal(t, role.Staff, p.Role)
	assert.Equal(t, p, ac.Profile())
}

func TestSync_ConcurrentLoginsCreateOnce(t *testing.T) {
	f := newFixture(t)
	id := account.Identity{UID: "u7", Email: "guest@example.org"}

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := f.sync.Sync(context.Background(), signedIn(id), id, role.Guest, account.ClientMeta{})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.EqualValues(t, 1, f.store.sets.Load())
}

func TestLoad_ReadsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := account.Identity{UID: "nobody"}
	ac := signedIn(missing)
	f.sync.Load(ctx, ac, missing)
	assert.Nil(t, ac.Profile())

	_, err := f.db.Get(ctx, profile.Collection, "nobody")
	require.ErrorIs(t, err, docstore.ErrNotFound)

	require.NoError(t, f.db.Set(ctx, profile.Collection, "u8", docstore.Record{"role": "staff"}))

	known := account.Identity{UID: "u8"}
	ac = signedIn(known)
	f.sync.Load(ctx, ac, known)
	require.NotNil(t, ac.Profile())
	assert.Equal(t, role.Staff, ac.Profile().Role)
	assert.Equal(t, "u8", ac.Profile().UID)
}

func TestFallbackRole(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, role.Admin, f.sync.FallbackRole("admin@BAPTI.org"))
	assert.Equal(t, role.Guest, f.sync.FallbackRole("someone@bapti.org"))
	assert.Equal(t, role.Guest, f.sync.FallbackRole(""))
}

func TestHistory_RingBuffer(t *testing.T) {
	h := profile.NewHistory(kvtest.New(), 20)

	for i := range 25 {
		h.Append(account.LoginEvent{Email: fmt.Sprintf("user%d@example.org", i)})
	}

	entries := h.Entries()
	require.Len(t, entries, 20)

	for i, ev := range entries {
		assert.Equal(t, fmt.Sprintf("user%d@example.org", i+5), ev.Email)
	}
}

func TestHistory_For(t *testing.T) {
	h := profile.NewHistory(kvtest.New(), 0)
	assert.Equal(t, profile.DefaultHistoryMax, h.Max())

	h.Append(account.LoginEvent{Email: "a@example.org"})
	h.Append(account.LoginEvent{Email: "b@example.org"})
	h.Append(account.LoginEvent{Email: "A@example.org"})

	assert.Len(t, h.For("a@example.org"), 2)
	assert.Empty(t, h.For("c@example.org"))
}

func TestHistory_StorageFailures(t *testing.T) {
	storage := kvtest.New()
	h := profile.NewHistory(storage, 5)

	storage.Put(profile.HistoryKey, []byte("{not json"))
	assert.Empty(t, h.Entries())

	storage.Fail(assert.AnError)
	h.Append(account.LoginEvent{Email: "a@example.org"})
	assert.Empty(t, h.Entries())

	storage.Fail(nil)
	h.Append(account.LoginEvent{Email: "a@example.org"})
	assert.Len(t, h.Entries(), 1)
}

func TestHistory_ReadFailureKeepsEntries(t *testing.T) {
	storage := kvtest.New()
	h := profile.NewHistory(storage, 20)

	for i := range 10 {
		h.Append(account.LoginEvent{Email: fmt.Sprintf("user%d@example.org", i)})
	}

	storage.FailGet(assert.AnError)
	h.Append(account.LoginEvent{Email: "lost@example.org"})

	entries := h.Entries()
	require.Len(t, entries, 10)
	assert.Equal(t, "user0@example.org", entries[0].Email)
	assert.Equal(t, "user9@example.org", entries[9].Email)

	h.Append(account.LoginEvent{Email: "next@example.org"})
	assert.Len(t, h.Entries(), 11)
}
