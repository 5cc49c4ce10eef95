package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	mockauth "github.com/target/wardrobe/internal/mocks/auth"
)

func TestNewSessionReaperService_RequiresPurger(t *testing.T) {
	_, err := NewSessionReaperService(SessionReaperServiceOptions{})
	require.Error(t, err)
}

func TestSessionReaperService_RunOnce(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domainauth.SessionRecord{ID: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Save(ctx, domainauth.SessionRecord{ID: "edge", ExpiresAt: now}))
	require.NoError(t, store.Save(ctx, domainauth.SessionRecord{ID: "live", ExpiresAt: now.Add(time.Hour)}))

	svc, err := NewSessionReaperService(SessionReaperServiceOptions{
		Purger: store,
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)

	n, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, store.Len())
}

func TestSessionReaperService_RunOnce_Error(t *testing.T) {
	store := mockauth.NewMemorySessionStore()
	store.Err = errors.New("db unreachable")

	svc, err := NewSessionReaperService(SessionReaperServiceOptions{Purger: store})
	require.NoError(t, err)

	n, err := svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
}
