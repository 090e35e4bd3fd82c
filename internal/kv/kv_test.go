package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bapti-church/bapti-web/internal/config"
	"github.com/bapti-church/bapti-web/internal/kv"
)

func TestOpenMemory(t *testing.T) {
	store, err := kv.Open(context.Background(), &config.Config{Storage: config.Storage{Backend: config.StorageMemory}})
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Set("k", []byte("v"), time.Minute))

	got, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, store.Delete("k"))

	got, err = store.Get("k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpenUnknown(t *testing.T) {
	_, err := kv.Open(context.Background(), &config.Config{Storage: config.Storage{Backend: "etcd"}})
	require.ErrorIs(t, err, config.ErrUnknownStorage)
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := kv.NewRedis(context.Background(), "not a url", kv.RedisPrefix)
	require.Error(t, err)
}
