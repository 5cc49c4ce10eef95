// Package oidc signs wardrobe users in through an OpenID Connect identity provider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

const (
	wellKnownSuffix   = "/.well-known/openid-configuration"
	discoveryTimeout  = 15 * time.Second
	defaultSessionTTL = time.Hour
	randomTokenBytes  = 24
)

// ProviderConfig configures the OAuth client registered with the identity provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string // space separated
	DiscoveryURL string // issuer URL, with or without the well-known suffix
	HTTPClient   *http.Client
}

func (c ProviderConfig) validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"client ID", c.ClientID},
		{"client secret", c.ClientSecret},
		{"redirect URL", c.RedirectURL},
		{"discovery URL", c.DiscoveryURL},
	} {
		if f.value == "" {
			missing = append(missing, f.name+" is required")
		}
	}
	if len(missing) > 0 {
		return errors.New(strings.Join(missing, "; "))
	}
	return nil
}

// Provider implements ports.AuthProvider against a discovered OIDC issuer.
type Provider struct {
	oauth    oauth2.Config
	client   *http.Client
	issuer   *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
	now      func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider fetches the issuer's discovery document and builds the OAuth client from it.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	ctx, cancel := context.WithTimeout(context.Background(), discoveryTimeout)
	defer cancel()
	issuer, err := gooidc.NewProvider(oidcContext(ctx, client), issuerURL(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("discover issuer: %w", err)
	}

	return &Provider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     issuer.Endpoint(),
		},
		client:   client,
		issuer:   issuer,
		verifier: issuer.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		now:      time.Now,
	}, nil
}

// Begin returns the authorization URL together with the state and nonce the callback must echo.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("state: %w", err)
	}
	nonce, err := randomToken()
	if err != nil {
		return "", "", "", fmt.Errorf("nonce: %w", err)
	}
	authURL := p.oauth.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange redeems the authorization code. Claims come from the verified ID token when
// the openid scope was requested; the userinfo endpoint fills whatever is still missing.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = oidcContext(ctx, p.client)
	tok, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var c claims
	if slices.Contains(p.oauth.Scopes, gooidc.ScopeOpenID) {
		if c, err = p.idTokenClaims(ctx, tok, in.Nonce); err != nil {
			return domainauth.Identity{}, err
		}
	}
	if c.incomplete() {
		ui, uiErr := p.issuer.UserInfo(ctx, oauth2.StaticTokenSource(tok))
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", uiErr)
		}
		var extra claims
		if uiErr = ui.Claims(&extra); uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("decode user info: %w", uiErr)
		}
		c.fill(extra)
	}
	if c.Subject == "" {
		return domainauth.Identity{}, errors.New("identity provider returned no subject")
	}

	expiresAt := tok.Expiry
	if expiresAt.IsZero() {
		expiresAt = p.now().Add(defaultSessionTTL)
	}
	return domainauth.Identity{
		Subject:   c.Subject,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		Email:     c.email(),
		Groups:    c.Groups,
		Provider:  domainauth.ProviderOIDC,
		ExpiresAt: expiresAt,
	}, nil
}

func (p *Provider) idTokenClaims(ctx context.Context, tok *oauth2.Token, nonce string) (claims, error) {
	raw, err := rawIDToken(tok)
	if err != nil {
		return claims{}, err
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("id_token nonce mismatch")
	}
	var c claims
	if err := idTok.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	return c, nil
}

// claims is the union of the ID token and userinfo fields wardrobe reads.
type claims struct {
	Subject           string   `json:"sub"`
	Email             string   `json:"email"`
	PreferredUsername string   `json:"preferred_username"`
	GivenName         string   `json:"given_name"`
	FamilyName        string   `json:"family_name"`
	Groups            []string `json:"groups"`
}

func (c claims) email() string {
	if c.Email != "" {
		return c.Email
	}
	return c.PreferredUsername
}

func (c claims) incomplete() bool {
	return c.Subject == "" || c.email() == ""
}

// fill copies fields from other that c does not have yet.
func (c *claims) fill(other claims) {
	keep := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	keep(&c.Subject, other.Subject)
	keep(&c.Email, other.Email)
	keep(&c.PreferredUsername, other.PreferredUsername)
	keep(&c.GivenName, other.GivenName)
	keep(&c.FamilyName, other.FamilyName)
	if len(c.Groups) == 0 {
		c.Groups = other.Groups
	}
}

func rawIDToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	if s, ok := tok.Extra("id_token").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("missing id_token in token response")
}

func issuerURL(discovery string) string {
	u := strings.TrimSuffix(discovery, "/")
	return strings.TrimSuffix(u, wellKnownSuffix)
}

func oidcContext(ctx context.Context, client *http.Client) context.Context {
	return gooidc.ClientContext(ctx, client)
}

func randomToken() (string, error) {
	b := make([]byte, randomTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
