// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider   = (*MockAuthProvider)(nil)
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.SessionPurger  = (*MemorySessionStore)(nil)
	_ ports.UserRepository = (*MemoryUserRepo)(nil)
	_ ports.RoleMapper     = (*StaticRoleMapper)(nil)
	_ ports.PasswordHasher = PlainHasher{}
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: defaultIdentity(),
	}
}

func defaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		Subject:   "mock-user-1",
		FirstName: "Mock",
		LastName:  "User",
		Email:     "mock.user@example.com",
		Groups:    []string{"users"},
		Provider:  domainauth.ProviderMock,
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	return authURL, fmt.Sprintf("%s-%d", statePrefix, n), fmt.Sprintf("%s-%d", noncePrefix, n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	if user.Subject == "" {
		user = defaultIdentity()
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
// Set Err to simulate an unreachable backend.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.SessionRecord
	Err      error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.SessionRecord)}
}

func (m *MemorySessionStore) Save(_ context.Context, rec domainauth.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if rec.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[rec.ID] = rec
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return domainauth.SessionRecord{}, m.Err
	}
	rec, ok := m.sessions[id]
	if !ok || rec.Expired(time.Now()) {
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}
	return rec, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for id, rec := range m.sessions {
		if rec.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records, expired or not.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by the memory user repository when an account is not present.
var ErrNotFound error = apperrors.NotFound("user not found")

// ErrDuplicateEmail is returned when creating a second account with the same email.
var ErrDuplicateEmail error = apperrors.Conflict("email already registered")

// MemoryUserRepo is an in-memory ports.UserRepository.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domainauth.User
	seq   int
}

// NewMemoryUserRepo creates an empty in-memory user repository.
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]domainauth.User)}
}

func (m *MemoryUserRepo) Create(_ context.Context, in ports.CreateUserInput) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(in.Email)
	for _, u := range m.users {
		if u.Email == email {
			return nil, ErrDuplicateEmail
		}
	}
	return m.insert(in, email), nil
}

func (m *MemoryUserRepo) insert(in ports.CreateUserInput, email string) *domainauth.User {
	m.seq++
	u := domainauth.User{
		ID:           fmt.Sprintf("user-%d", m.seq),
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: in.PasswordHash,
		Provider:     in.Provider,
		Subject:      in.Subject,
		Role:         in.Role,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	return &u
}

func (m *MemoryUserRepo) GetByID(_ context.Context, id string) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUserRepo) UpsertExternal(_ context.Context, in ports.CreateUserInput) (*domainauth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.Provider == in.Provider && u.Subject == in.Subject {
			u.Email = strings.ToLower(in.Email)
			u.FirstName = in.FirstName
			u.LastName = in.LastName
			u.Role = in.Role
			m.users[id] = u
			return &u, nil
		}
	}
	return m.insert(in, strings.ToLower(in.Email)), nil
}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}

// PlainHasher "hashes" by prefixing the password. Never use outside tests.
type PlainHasher struct{}

// ErrMismatch is returned by PlainHasher.Compare on a wrong password.
var ErrMismatch = errors.New("password mismatch")

func (PlainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (PlainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return ErrMismatch
	}
	return nil
}
