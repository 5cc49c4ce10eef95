package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://localhost:3000/auth/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	// Second call should increment counters
	_, state2, nonce2, err := provider.Begin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMockAuthProvider_Exchange_RefreshesExpiry(t *testing.T) {
	provider := &MockAuthProvider{}
	id, err := provider.Exchange(context.Background(), ports.ExchangeInput{Code: "c"})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", id.Subject)
	assert.True(t, id.ExpiresAt.After(time.Now()))
}

func TestMemorySessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	live := domainauth.SessionRecord{ID: "live", Data: []byte("x"), ExpiresAt: time.Now().Add(time.Hour)}
	dead := domainauth.SessionRecord{ID: "dead", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, dead))

	got, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, live, got)

	_, err = store.Get(ctx, "dead")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	n, err := store.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "live"))
	assert.Equal(t, 0, store.Len())

	store.Err = errors.New("down")
	_, err = store.Get(ctx, "live")
	assert.EqualError(t, err, "down")
}

func TestMemoryUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepo()

	u, err := repo.Create(ctx, ports.CreateUserInput{Email: "A@Example.com", Provider: domainauth.ProviderLocal})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)

	_, err = repo.Create(ctx, ports.CreateUserInput{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	ext, err := repo.UpsertExternal(ctx, ports.CreateUserInput{Email: "b@x.io", Provider: domainauth.ProviderOIDC, Subject: "sub"})
	require.NoError(t, err)
	again, err := repo.UpsertExternal(ctx, ports.CreateUserInput{Email: "c@x.io", Provider: domainauth.ProviderOIDC, Subject: "sub"})
	require.NoError(t, err)
	assert.Equal(t, ext.ID, again.ID)
	assert.Equal(t, "c@x.io", again.Email)
}

func TestStaticRoleMapper(t *testing.T) {
	m := StaticRoleMapper{AdminGroup: "admins", UserGroup: "users"}
	assert.Equal(t, domainauth.RoleAdmin, m.Map([]string{"users", "admins"}))
	assert.Equal(t, domainauth.RoleUser, m.Map([]string{"users"}))
	assert.Equal(t, domainauth.RoleGuest, m.Map(nil))
}

func TestPlainHasher(t *testing.T) {
	h, err := PlainHasher{}.Hash("pw")
	require.NoError(t, err)
	assert.NoError(t, PlainHasher{}.Compare(h, "pw"))
	assert.ErrorIs(t, PlainHasher{}.Compare(h, "nope"), ErrMismatch)
}
