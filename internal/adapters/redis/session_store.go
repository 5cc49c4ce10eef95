// Package redis provides Redis-based adapters for the wardrobe application.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

// DefaultKeyPrefix namespaces session keys.
const DefaultKeyPrefix = "wardrobe:sess:"

// SessionStore keeps encoded session payloads in Redis. Expiry is delegated to key TTLs,
// so no reaper is needed for this backend.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, DefaultKeyPrefix)
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix, now: time.Now}
}

// Save writes the record with a TTL matching its expiry.
func (s *SessionStore) Save(ctx context.Context, rec domainauth.SessionRecord) error {
	if rec.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		// Saving an expired record is a delete.
		return s.Delete(ctx, rec.ID)
	}
	if err := s.client.Set(ctx, s.prefix+rec.ID, rec.Data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get returns the record for id, reconstructing ExpiresAt from the key TTL.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.SessionRecord, error) {
	if id == "" {
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}
	key := s.prefix + id

	var (
		getCmd *redis.StringCmd
		ttlCmd *redis.DurationCmd
	)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		getCmd = p.Get(ctx, key)
		ttlCmd = p.PTTL(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return domainauth.SessionRecord{}, fmt.Errorf("redis get: %w", err)
	}

	data, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}
	if err != nil {
		return domainauth.SessionRecord{}, fmt.Errorf("redis get: %w", err)
	}
	ttl := ttlCmd.Val()
	if ttl <= 0 {
		// -1 means no TTL, which Save never produces; treat it as stale.
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}
	return domainauth.SessionRecord{ID: id, Data: data, ExpiresAt: s.now().Add(ttl)}, nil
}

// Delete removes the record for id.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
