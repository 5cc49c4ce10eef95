// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Provider names the credential scheme a user authenticated with.
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderOIDC  Provider = "oidc"
	ProviderMock  Provider = "mock"
)

// Identity represents the authenticated principal returned by an external IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string // stable identifier at the provider (sub claim)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	Provider  Provider
	ExpiresAt time.Time // absolute expiry from IdP token
}

// User is the persisted account a session points at.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name"  db:"last_name"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	Provider     Provider  `json:"provider"   db:"provider"`
	Subject      string    `json:"-"          db:"subject"`
	Role         Role      `json:"role"       db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Principal is the identity resolved for a single request.
// A request carries either no principal or exactly one.
type Principal struct {
	UserID    string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      Role     `json:"role"`
	Provider  Provider `json:"provider"`
}

// PrincipalFromUser projects a stored user into a request principal.
func PrincipalFromUser(u User) Principal {
	return Principal{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Provider:  u.Provider,
	}
}

// DisplayName returns a human friendly name, falling back to the email address.
func (p Principal) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// IsGuest returns true if the principal role is guest.
func (p Principal) IsGuest() bool { return p.Role == RoleGuest }

// IsAdmin returns true if the principal role is admin.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// SessionRecord is the server-side session row persisted by a session store.
// Data holds the encoded session values and is opaque to the store.
type SessionRecord struct {
	ID        string    `json:"id"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is past its expiry at now.
func (r SessionRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Flashes are one-time notifications queued for the next rendered response.
type Flashes struct {
	Success []string `json:"successMessages"`
	Error   []string `json:"errorMessages"`
}

// Empty reports whether there are no pending messages.
func (f Flashes) Empty() bool {
	return len(f.Success) == 0 && len(f.Error) == 0
}
