package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

type fakeIssuer struct {
	*httptest.Server
	userInfo map[string]any
	codes    []string
}

// newFakeIssuer serves discovery, token, and userinfo endpoints. The token endpoint
// never returns an id_token, so providers must fall back to userinfo.
func newFakeIssuer(t *testing.T) *fakeIssuer {
	t.Helper()
	fi := &fakeIssuer{userInfo: map[string]any{
		"sub":         "sub-123",
		"email":       "ada@example.com",
		"given_name":  "Ada",
		"family_name": "Lovelace",
		"groups":      []string{"stylists"},
	}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"issuer":                 fi.URL,
			"authorization_endpoint": fi.URL + "/authorize",
			"token_endpoint":         fi.URL + "/token",
			"userinfo_endpoint":      fi.URL + "/userinfo",
			"jwks_uri":               fi.URL + "/jwks",
		})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		fi.codes = append(fi.codes, r.PostForm.Get("code"))
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		writeJSON(w, map[string]any{"access_token": "at-1", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, fi.userInfo)
	})
	fi.Server = httptest.NewServer(mux)
	t.Cleanup(fi.Close)
	return fi
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestProvider(t *testing.T, fi *fakeIssuer, scope string) *Provider {
	t.Helper()
	p, err := NewProvider(ProviderConfig{
		ClientID:     "wardrobe",
		ClientSecret: "shh",
		RedirectURL:  "http://localhost:3000/auth/callback",
		Scope:        scope,
		DiscoveryURL: fi.URL + wellKnownSuffix,
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_UsesDiscoveredEndpoints(t *testing.T) {
	fi := newFakeIssuer(t)
	p := newTestProvider(t, fi, "openid profile email")

	assert.Equal(t, fi.URL+"/authorize", p.oauth.Endpoint.AuthURL)
	assert.Equal(t, fi.URL+"/token", p.oauth.Endpoint.TokenURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, p.oauth.Scopes)
}

func TestNewProvider_ReportsEveryMissingSetting(t *testing.T) {
	_, err := NewProvider(ProviderConfig{ClientID: "wardrobe"})
	require.Error(t, err)
	for _, msg := range []string{"client secret is required", "redirect URL is required", "discovery URL is required"} {
		assert.Contains(t, err.Error(), msg)
	}
	assert.NotContains(t, err.Error(), "client ID")
}

func TestNewProvider_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := NewProvider(ProviderConfig{
		ClientID: "wardrobe", ClientSecret: "shh", RedirectURL: "http://x/cb", DiscoveryURL: srv.URL,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover issuer")
}

func TestProvider_Begin(t *testing.T) {
	p := newTestProvider(t, newFakeIssuer(t), "openid email")

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/closet"})
	require.NoError(t, err)
	require.NotEqual(t, state, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "wardrobe", q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))

	_, _, _, err = p.Begin(context.Background(), ports.BeginInput{})
	assert.ErrorContains(t, err, "redirect URL is required")
}

func TestProvider_Exchange_RequiresInputs(t *testing.T) {
	p := newTestProvider(t, newFakeIssuer(t), "profile")
	cases := map[string]ports.ExchangeInput{
		"authorization code is required": {State: "s", Nonce: "n"},
		"state is required":              {Code: "c", Nonce: "n"},
		"nonce is required":              {Code: "c", State: "s"},
	}
	for msg, in := range cases {
		_, err := p.Exchange(context.Background(), in)
		assert.ErrorContains(t, err, msg)
	}
}

func TestProvider_Exchange_UserInfoFallback(t *testing.T) {
	fi := newFakeIssuer(t)
	p := newTestProvider(t, fi, "profile email")
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n"})
	require.NoError(t, err)

	assert.Equal(t, "sub-123", id.Subject)
	assert.Equal(t, "ada@example.com", id.Email)
	assert.Equal(t, "Ada", id.FirstName)
	assert.Equal(t, "Lovelace", id.LastName)
	assert.Equal(t, []string{"stylists"}, id.Groups)
	assert.Equal(t, domainauth.ProviderOIDC, id.Provider)
	assert.True(t, id.ExpiresAt.After(time.Now()), "token expiry wins over the default TTL")
	assert.Equal(t, []string{"good-code"}, fi.codes)
}

func TestProvider_Exchange_NoSubject(t *testing.T) {
	fi := newFakeIssuer(t)
	fi.userInfo = map[string]any{"email": "ada@example.com"}
	p := newTestProvider(t, fi, "email")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n"})
	assert.ErrorContains(t, err, "no subject")
}

func TestProvider_Exchange_RejectedCode(t *testing.T) {
	p := newTestProvider(t, newFakeIssuer(t), "email")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "stale", State: "s", Nonce: "n"})
	assert.ErrorContains(t, err, "exchange code for token")
}

func TestProvider_Exchange_OpenIDNeedsIDToken(t *testing.T) {
	p := newTestProvider(t, newFakeIssuer(t), "openid email")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n"})
	assert.ErrorContains(t, err, "missing id_token")
}

func TestRawIDToken(t *testing.T) {
	raw, err := rawIDToken((&oauth2.Token{}).WithExtra(map[string]any{"id_token": "a.b.c"}))
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", raw)

	_, err = rawIDToken(nil)
	assert.ErrorContains(t, err, "nil token")
}

func TestClaims_Fill(t *testing.T) {
	c := claims{Subject: "keep", PreferredUsername: "ada"}
	c.fill(claims{Subject: "other", Email: "ada@example.com", GivenName: "Ada", Groups: []string{"g"}})

	assert.Equal(t, "keep", c.Subject)
	assert.Equal(t, "ada@example.com", c.email())
	assert.Equal(t, "Ada", c.GivenName)
	assert.Equal(t, []string{"g"}, c.Groups)
	assert.Equal(t, "ada", claims{PreferredUsername: "ada"}.email())
}

func TestIssuerURL(t *testing.T) {
	assert.Equal(t, "https://idp.example.com", issuerURL("https://idp.example.com/.well-known/openid-configuration"))
	assert.Equal(t, "https://idp.example.com", issuerURL("https://idp.example.com/"))
}

func TestRandomToken_Unique(t *testing.T) {
	a, err := randomToken()
	require.NoError(t, err)
	b, err := randomToken()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
