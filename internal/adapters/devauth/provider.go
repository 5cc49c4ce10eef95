// Package devauth signs every third-party login in as one configured account. It exists so
// the OAuth callback path can be exercised locally without an identity provider.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

// CallbackPath is where Begin sends the browser; it must match the OAuth callback route.
const CallbackPath = "/auth/callback"

// code is the fixed authorization code handed to the callback.
const code = "dev"

// ErrInvalidCode is returned by Exchange for any code Begin did not issue.
var ErrInvalidCode = errors.New("dev auth: unexpected authorization code")

// Config describes the account every login resolves to. UserID and Email are required.
type Config struct {
	UserID          string
	Email           string
	FirstName       string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
type Provider struct {
	identity domainauth.Identity
	ttl      time.Duration
	now      func() time.Time
}

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	ttl := cfg.SessionDuration
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Provider{
		identity: domainauth.Identity{
			Subject:   cfg.UserID,
			FirstName: cfg.FirstName,
			Email:     cfg.Email,
			Provider:  domainauth.ProviderMock,
			Groups:    append([]string(nil), cfg.Groups...),
		},
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Begin skips the provider hop and points straight at the local callback with a fresh
// state. The nonce is returned for the handler's cookie but never checked.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := token()
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := token()
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {code}, "state": {state}}
	return CallbackPath + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured identity. State is verified by the callback handler
// against its cookie before Exchange is called.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code != code {
		return domainauth.Identity{}, ErrInvalidCode
	}
	id := p.identity
	id.Groups = append([]string(nil), p.identity.Groups...)
	id.ExpiresAt = p.now().Add(p.ttl)
	return id, nil
}

func token() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
