// Package ports defines interfaces (hexagonal ports) for auth and catalog behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.
package ports

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
)

// ErrSessionNotFound is returned by session stores when no live record exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves session records keyed by session id.
type SessionStore interface {
	Save(ctx context.Context, rec domainauth.SessionRecord) error
	Get(ctx context.Context, id string) (domainauth.SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

// SessionPurger removes expired session records from stores without native expiry.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// PasswordHasher hashes and verifies local account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// CreateUserInput describes a new local or external account.
type CreateUserInput struct {
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Provider     domainauth.Provider
	Subject      string
	Role         domainauth.Role
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, in CreateUserInput) (*domainauth.User, error)
	GetByID(ctx context.Context, id string) (*domainauth.User, error)
	GetByEmail(ctx context.Context, email string) (*domainauth.User, error)
	// UpsertExternal creates or refreshes the account linked to a provider subject.
	UpsertExternal(ctx context.Context, in CreateUserInput) (*domainauth.User, error)
}
