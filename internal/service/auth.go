package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/observability/metrics"
	"github.com/target/wardrobe/internal/ports"
)

var (
	// ErrInvalidCredentials is returned for any failed local login. It never says which part was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrProviderDisabled is returned when a third-party flow is requested but none is configured.
	ErrProviderDisabled = errors.New("third-party login is not configured")
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    ports.UserRepository // Required
	Hasher   ports.PasswordHasher // Required
	Provider ports.AuthProvider   // Optional: third-party login
	Roles    ports.RoleMapper     // Required when Provider is set
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// AuthService orchestrates authentication: local accounts, third-party logins,
// and resolving a session's user id back into a principal.
type AuthService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	provider ports.AuthProvider
	roles    ports.RoleMapper
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if opts.Hasher == nil {
		return nil, errors.New("PasswordHasher is required")
	}
	if opts.Provider != nil && opts.Roles == nil {
		return nil, errors.New("RoleMapper is required with a third-party provider")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    opts.Users,
		hasher:   opts.Hasher,
		provider: opts.Provider,
		roles:    opts.Roles,
		metrics:  opts.Metrics,
		logger:   logger.With("component", "auth_service"),
	}, nil
}

// ProviderEnabled reports whether a third-party login flow is available.
func (s *AuthService) ProviderEnabled() bool {
	return s.provider != nil
}

// Register creates a local account and returns its principal.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*domainauth.Principal, error) {
	if req == nil {
		return nil, errors.New("register request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, ports.CreateUserInput{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Provider:     domainauth.ProviderLocal,
		Role:         domainauth.RoleUser,
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, "An account with that email already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "registered local account", "user_id", u.ID)
	p := domainauth.PrincipalFromUser(*u)
	return &p, nil
}

// Authenticate verifies local credentials.
// Unknown emails, external-only accounts and wrong passwords all yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, req *model.LoginRequest) (*domainauth.Principal, error) {
	if req == nil {
		return nil, ErrInvalidCredentials
	}
	if err := req.Validate(); err != nil {
		s.metrics.RecordLogin(string(domainauth.ProviderLocal), false)
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		s.metrics.RecordLogin(string(domainauth.ProviderLocal), false)
		if apperrors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u.Provider != domainauth.ProviderLocal || u.PasswordHash == "" {
		s.metrics.RecordLogin(string(domainauth.ProviderLocal), false)
		return nil, ErrInvalidCredentials
	}
	if cmpErr := s.hasher.Compare(u.PasswordHash, req.Password); cmpErr != nil {
		s.metrics.RecordLogin(string(domainauth.ProviderLocal), false)
		return nil, ErrInvalidCredentials
	}
	s.metrics.RecordLogin(string(domainauth.ProviderLocal), true)
	p := domainauth.PrincipalFromUser(*u)
	return &p, nil
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates a third-party flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, ErrProviderDisabled
	}
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code for an identity, maps its groups to a role,
// and links it to a local account.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Principal, error) {
	if s.provider == nil {
		return nil, ErrProviderDisabled
	}
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		s.metrics.RecordLogin(string(domainauth.ProviderOIDC), false)
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	u, err := s.users.UpsertExternal(ctx, ports.CreateUserInput{
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Provider:  identity.Provider,
		Subject:   identity.Subject,
		Role:      s.roles.Map(identity.Groups),
	})
	if err != nil {
		s.metrics.RecordLogin(string(identity.Provider), false)
		return nil, fmt.Errorf("link external account: %w", err)
	}
	s.metrics.RecordLogin(string(identity.Provider), true)
	p := domainauth.PrincipalFromUser(*u)
	return &p, nil
}

// ResolvePrincipal loads the principal for a user id stored in a session.
// A user deleted since the session was issued yields a NotFound error.
func (s *AuthService) ResolvePrincipal(ctx context.Context, userID string) (*domainauth.Principal, error) {
	if userID == "" {
		return nil, apperrors.NotFound("user not found")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := domainauth.PrincipalFromUser(*u)
	return &p, nil
}
