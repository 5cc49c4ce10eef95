package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/mocks"
	mockauth "github.com/target/wardrobe/internal/mocks/auth"
	"github.com/target/wardrobe/internal/ports"
)

func newLocalAuth(t *testing.T, users ports.UserRepository) *AuthService {
	t.Helper()
	svc, err := NewAuthService(AuthServiceOptions{Users: users, Hasher: mockauth.PlainHasher{}})
	require.NoError(t, err)
	return svc
}

func newProviderAuth(t *testing.T, provider ports.AuthProvider) (*AuthService, *mockauth.MemoryUserRepo) {
	t.Helper()
	users := mockauth.NewMemoryUserRepo()
	svc, err := NewAuthService(AuthServiceOptions{
		Users:    users,
		Hasher:   mockauth.PlainHasher{},
		Provider: provider,
		Roles:    mockauth.StaticRoleMapper{AdminGroup: "admins", UserGroup: "users"},
	})
	require.NoError(t, err)
	return svc, users
}

func TestNewAuthService_Validation(t *testing.T) {
	_, err := NewAuthService(AuthServiceOptions{Hasher: mockauth.PlainHasher{}})
	require.Error(t, err)

	_, err = NewAuthService(AuthServiceOptions{Users: mockauth.NewMemoryUserRepo()})
	require.Error(t, err)

	_, err = NewAuthService(AuthServiceOptions{
		Users: mockauth.NewMemoryUserRepo(), Hasher: mockauth.PlainHasher{}, Provider: mockauth.NewMockAuthProvider(),
	})
	require.Error(t, err, "role mapper required with provider")
}

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	svc := newLocalAuth(t, mockauth.NewMemoryUserRepo())
	ctx := context.Background()

	p, err := svc.Register(ctx, &model.RegisterRequest{
		Email: "Ada@Example.com", Password: "analytical", ConfirmPassword: "analytical", FirstName: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, domainauth.RoleUser, p.Role)
	assert.False(t, svc.ProviderEnabled())

	got, err := svc.Authenticate(ctx, &model.LoginRequest{Email: "ADA@example.com", Password: "analytical"})
	require.NoError(t, err)
	assert.Equal(t, p.UserID, got.UserID)

	_, err = svc.Authenticate(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "engine"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, &model.LoginRequest{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newLocalAuth(t, mockauth.NewMemoryUserRepo())
	ctx := context.Background()
	req := func() *model.RegisterRequest {
		return &model.RegisterRequest{Email: "dup@example.com", Password: "password1", ConfirmPassword: "password1"}
	}

	_, err := svc.Register(ctx, req())
	require.NoError(t, err)
	_, err = svc.Register(ctx, req())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestAuthService_Register_ValidationError(t *testing.T) {
	svc := newLocalAuth(t, mockauth.NewMemoryUserRepo())
	_, err := svc.Register(context.Background(), &model.RegisterRequest{Email: "bad"})
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAuthService_Authenticate_ExternalAccountHasNoPassword(t *testing.T) {
	users := mockauth.NewMemoryUserRepo()
	_, err := users.UpsertExternal(context.Background(), ports.CreateUserInput{
		Email: "sso@example.com", Provider: domainauth.ProviderOIDC, Subject: "sub", Role: domainauth.RoleUser,
	})
	require.NoError(t, err)

	svc := newLocalAuth(t, users)
	_, err = svc.Authenticate(context.Background(), &model.LoginRequest{Email: "sso@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Authenticate_StoreFailureIsNotMasked(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserRepository(ctrl)
	users.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(nil, errors.New("connection reset"))

	svc := newLocalAuth(t, users)
	_, err := svc.Authenticate(context.Background(), &model.LoginRequest{Email: "ada@example.com", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ProviderDisabled(t *testing.T) {
	svc := newLocalAuth(t, mockauth.NewMemoryUserRepo())
	_, err := svc.BeginLogin(context.Background(), "/")
	assert.ErrorIs(t, err, ErrProviderDisabled)
	_, err = svc.CompleteLogin(context.Background(), CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	assert.ErrorIs(t, err, ErrProviderDisabled)
}

func TestAuthService_BeginLogin(t *testing.T) {
	svc, _ := newProviderAuth(t, mockauth.NewMockAuthProvider())

	res, err := svc.BeginLogin(context.Background(), "/look")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", res.AuthURL)
	assert.Equal(t, "state-1", res.State)
	assert.Equal(t, "nonce-1", res.Nonce)

	_, err = svc.BeginLogin(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthService_CompleteLogin_LinksAccount(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	provider.DefaultUser.Groups = []string{"admins"}
	svc, users := newProviderAuth(t, provider)
	ctx := context.Background()

	in := CompleteLoginInput{Code: "code", State: "state-1", Nonce: "nonce-1"}
	first, err := svc.CompleteLogin(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, first.Role)
	assert.Equal(t, domainauth.ProviderMock, first.Provider)

	second, err := svc.CompleteLogin(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID, "same subject links to the same account")

	resolved, err := svc.ResolvePrincipal(ctx, first.UserID)
	require.NoError(t, err)
	assert.Equal(t, "mock.user@example.com", resolved.Email)

	_, err = users.GetByID(ctx, first.UserID)
	require.NoError(t, err)
}

func TestAuthService_CompleteLogin_Errors(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("idp down")
	}
	svc, _ := newProviderAuth(t, provider)
	ctx := context.Background()

	for _, in := range []CompleteLoginInput{
		{State: "s", Nonce: "n"},
		{Code: "c", Nonce: "n"},
		{Code: "c", State: "s"},
	} {
		_, err := svc.CompleteLogin(ctx, in)
		assert.Error(t, err)
	}

	_, err := svc.CompleteLogin(ctx, CompleteLoginInput{Code: "c", State: "s", Nonce: "n"})
	assert.ErrorContains(t, err, "idp down")
}

func TestAuthService_ResolvePrincipal_Missing(t *testing.T) {
	svc := newLocalAuth(t, mockauth.NewMemoryUserRepo())
	_, err := svc.ResolvePrincipal(context.Background(), "")
	assert.True(t, apperrors.IsNotFound(err))
	_, err = svc.ResolvePrincipal(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}
