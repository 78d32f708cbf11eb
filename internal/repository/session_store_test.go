package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSessionStore(client, 7*24*time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", "token-1"))

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", got)

	// Records live under the namespaced key with the configured TTL.
	assert.True(t, mr.Exists("refresh_token:user-1"))
	assert.Equal(t, 7*24*time.Hour, mr.TTL("refresh_token:user-1"))
}

func TestSessionStore_SaveOverwritesPriorRecord(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", "token-1"))
	require.NoError(t, store.Save(ctx, "user-1", "token-2"))

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "token-2", got, "only the latest refresh token may verify against the store")
}

func TestSessionStore_GetMissing(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewSessionStore(client, time.Hour)

	_, err := store.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_DeleteIsIdempotent(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", "token-1"))
	require.NoError(t, store.Delete(ctx, "user-1"))
	require.NoError(t, store.Delete(ctx, "user-1"))

	_, err := store.Get(ctx, "user-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_RecordExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "user-1", "token-1"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "user-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
