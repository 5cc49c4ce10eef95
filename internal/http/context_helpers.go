package httpx

import (
	"context"

	"github.com/gorilla/sessions"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
)

// Context keys are unexported types to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same keys.
type (
	sessionKey   struct{}
	principalKey struct{}
	flashesKey   struct{}
)

// SetPrincipalInContext returns a child context that carries the given principal.
// If p is nil, the original ctx is returned unchanged.
func SetPrincipalInContext(ctx context.Context, p *domainauth.Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the request principal and whether one is present.
func PrincipalFromContext(ctx context.Context) (*domainauth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*domainauth.Principal)
	return p, ok && p != nil
}

// setSessionInContext stores the loaded web session for downstream handlers.
func setSessionInContext(ctx context.Context, s *sessions.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the web session loaded by the Session middleware, or nil.
func SessionFromContext(ctx context.Context) *sessions.Session {
	s, _ := ctx.Value(sessionKey{}).(*sessions.Session)
	return s
}

func setFlashesInContext(ctx context.Context, f domainauth.Flashes) context.Context {
	return context.WithValue(ctx, flashesKey{}, f)
}

// FlashesFromContext returns the messages extracted for this request by the Flash middleware.
func FlashesFromContext(ctx context.Context) domainauth.Flashes {
	f, _ := ctx.Value(flashesKey{}).(domainauth.Flashes)
	return f
}
