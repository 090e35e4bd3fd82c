package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bapti-church/bapti-web/internal/account"
	"github.com/bapti-church/bapti-web/internal/kv/kvtest"
	"github.com/bapti-church/bapti-web/internal/session"
)

const testSID = "sid-1"

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newStore(t *testing.T) (*session.Store, *kvtest.Memory, *clock) {
	t.Helper()

	mem := kvtest.New()
	clk := &clock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	return session.New(mem, session.WithClock(clk.now)), mem, clk
}

func testIdentity() account.Identity {
	return account.Identity{
		UID:      "uid-42",
		Email:    "member@bapti.org",
		Provider: account.ProviderPassword,
	}
}

func TestPersistAndRestore(t *testing.T) {
	store, mem, clk := newStore(t)

	expiry, err := store.Persist(testSID, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, clk.t.Add(24*time.Hour), expiry)
	assert.Equal(t, 24*time.Hour, mem.TTL("bapti_auth_session:"+testSID))

	rec, ok := store.Restore(testSID)
	require.True(t, ok)
	assert.Equal(t, testIdentity(), rec.Identity)
	assert.Equal(t, expiry, rec.ExpiresAt)
}

func TestRestoreWindow(t *testing.T) {
	tests := []struct {
		name    string
		after   time.Duration
		wantOK  bool
		removed bool
	}{
		{name: "just before expiry", after: 23*time.Hour + 59*time.Minute, wantOK: true},
		{name: "exactly at expiry", after: 24 * time.Hour, wantOK: false, removed: true},
		{name: "after expiry", after: 24*time.Hour + time.Minute, wantOK: false, removed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mem, clk := newStore(t)
			start := clk.t

			_, err := store.Persist(testSID, testIdentity())
			require.NoError(t, err)

			clk.t = start.Add(tt.after)

			_, ok := store.Restore(testSID)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, !tt.removed, mem.Has("bapti_auth_session:"+testSID))
		})
	}
}

func TestRestoreIsIdempotent(t *testing.T) {
	store, _, _ := newStore(t)

	_, err := store.Persist(testSID, testIdentity())
	require.NoError(t, err)

	first, ok1 := store.Restore(testSID)
	second, ok2 := store.Restore(testSID)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)

	_, ok := store.Restore("missing")
	assert.False(t, ok)

	_, ok = store.Restore("missing")
	assert.False(t, ok)
}

func TestPersistOverwrites(t *testing.T) {
	store, _, clk := newStore(t)

	_, err := store.Persist(testSID, testIdentity())
	require.NoError(t, err)

	clk.t = clk.t.Add(time.Hour)

	other := testIdentity()
	other.UID = "uid-43"

	expiry, err := store.Persist(testSID, other)
	require.NoError(t, err)

	rec, ok := store.Restore(testSID)
	require.True(t, ok)
	assert.Equal(t, "uid-43", rec.Identity.UID)
	assert.Equal(t, expiry, rec.ExpiresAt)
}

func TestClear(t *testing.T) {
	store, _, _ := newStore(t)

	_, err := store.Persist(testSID, testIdentity())
	require.NoError(t, err)

	store.Clear(testSID)

	_, ok := store.Restore(testSID)
	assert.False(t, ok)

	// clearing twice is fine
	store.Clear(testSID)
}

func TestRestoreCorruptRecord(t *testing.T) {
	store, mem, _ := newStore(t)
	mem.Put("bapti_auth_session:"+testSID, []byte("{not json"))

	_, ok := store.Restore(testSID)
	assert.False(t, ok)
	assert.False(t, mem.Has("bapti_auth_session:"+testSID))
}

func TestStorageFailureMeansNoSession(t *testing.T) {
	store, mem, _ := newStore(t)

	_, err := store.Persist(testSID, testIdentity())
	require.NoError(t, err)

	mem.Fail(errors.New("backend down"))

	_, ok := store.Restore(testSID)
	assert.False(t, ok)

	_, err = store.Persist("sid-2", testIdentity())
	require.Error(t, err)

	assert.NotPanics(t, func() { store.Clear(testSID) })
}

func TestWithTTL(t *testing.T) {
	mem := kvtest.New()
	store := session.New(mem, session.WithTTL(time.Hour))

	assert.Equal(t, time.Hour, store.TTL())
}

func TestNewID(t *testing.T) {
	a, err := session.NewID()
	require.NoError(t, err)

	b, err := session.NewID()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
