package httpx

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
)

// PrincipalCache keeps recently resolved principals so that page loads do not hit the
// users table on every request. Entries expire after a short TTL so role changes apply
// without a restart. A nil *PrincipalCache caches nothing.
type PrincipalCache struct {
	lru *expirable.LRU[string, domainauth.Principal]
}

// NewPrincipalCache returns a cache holding at most size principals for ttl each.
func NewPrincipalCache(size int, ttl time.Duration) *PrincipalCache {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &PrincipalCache{lru: expirable.NewLRU[string, domainauth.Principal](size, nil, ttl)}
}

// Get returns the cached principal for userID.
func (c *PrincipalCache) Get(userID string) (domainauth.Principal, bool) {
	if c == nil {
		return domainauth.Principal{}, false
	}
	return c.lru.Get(userID)
}

// Add caches p under its user id.
func (c *PrincipalCache) Add(p domainauth.Principal) {
	if c == nil || p.UserID == "" {
		return
	}
	c.lru.Add(p.UserID, p)
}

// Invalidate drops userID, e.g. at logout.
func (c *PrincipalCache) Invalidate(userID string) {
	if c == nil {
		return
	}
	c.lru.Remove(userID)
}
