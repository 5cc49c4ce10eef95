package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
	"github.com/target/wardrobe/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	rec := domainauth.SessionRecord{
		ID:        "test-session-1",
		Data:      []byte("encoded-values"),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Data, got.Data)
	assert.WithinDuration(t, rec.ExpiresAt, got.ExpiresAt, 2*time.Second)

	ttl, err := client.TTL(ctx, DefaultKeyPrefix+rec.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 29*time.Minute)
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	_, err := NewSessionStore(client).Get(context.Background(), "non-existent")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_SaveExpiredDeletes(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.SessionRecord{
		ID: "s", Data: []byte("x"), ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, store.Save(ctx, domainauth.SessionRecord{
		ID: "s", Data: []byte("x"), ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := store.Get(ctx, "s")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStoreWithPrefix(client, "test:")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.SessionRecord{
		ID: "d", Data: []byte("x"), ExpiresAt: time.Now().Add(time.Minute),
	}))
	require.NoError(t, store.Delete(ctx, "d"))
	require.NoError(t, store.Delete(ctx, ""))

	_, err := store.Get(ctx, "d")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_EmptyIDRejected(t *testing.T) {
	store := NewSessionStore(nil)
	assert.Error(t, store.Save(context.Background(), domainauth.SessionRecord{}))
	_, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
