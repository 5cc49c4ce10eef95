package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/service"
	"github.com/target/wardrobe/internal/websession"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	PrincipalResolver
	Register(ctx context.Context, req *model.RegisterRequest) (*domainauth.Principal, error)
	Authenticate(ctx context.Context, req *model.LoginRequest) (*domainauth.Principal, error)
	ProviderEnabled() bool
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*domainauth.Principal, error)
}

// SessionRegenerator replaces a session id when its privilege level changes.
type SessionRegenerator interface {
	Regenerate(r *http.Request, s *sessions.Session) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	Sessions     SessionRegenerator
	Cache        *PrincipalCache
	Renderer     *TemplateRenderer
	CookieDomain string
	CookieSecure bool
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// RegisterForm is the data for the registration page.
type RegisterForm struct {
	Email       string
	FirstName   string
	LastName    string
	FieldErrors map[string]string
}

// LoginForm is the data for the login page.
type LoginForm struct {
	Next             string
	ProviderEnabled  bool
	ProviderLoginURL string
}

// LoginPage renders the login view.
// GET /login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	form := LoginForm{Next: safeRedirectPath(r.URL.Query().Get("next"))}
	if h.Svc != nil && h.Svc.ProviderEnabled() {
		form.ProviderEnabled = true
		form.ProviderLoginURL = "/auth/oauth/login?redirect_uri=" + url.QueryEscape(form.Next)
	}
	NewResponder(w, r, h.Renderer, h.logger()).Render(ViewLogin, form)
}

// Login verifies local credentials.
// POST /auth/login (form or JSON).
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if isJSONRequest(r) {
		if !DecodeJSON(w, r, &req) {
			return
		}
	} else if err := DecodeForm(r, &req); err != nil {
		h.failLogin(w, r, "Please enter your email and password.")
		return
	}

	p, err := h.Svc.Authenticate(r.Context(), &req)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logger().ErrorContext(r.Context(), "login failed", "error", err)
		}
		h.failLogin(w, r, "Invalid email or password.")
		return
	}

	if !h.signIn(w, r, p, "Welcome back, "+p.DisplayName()+".") {
		return
	}
	if isJSONRequest(r) {
		WriteJSON(w, http.StatusOK, statusResponse{Authenticated: true, User: p})
		return
	}
	http.Redirect(w, r, safeRedirectPath(req.Next), http.StatusFound)
}

func (h *AuthHandlers) failLogin(w http.ResponseWriter, r *http.Request, msg string) {
	if isJSONRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "invalid_credentials", Err: errors.New(msg)})
		return
	}
	h.flashAndRedirect(w, r, msg, "/login")
}

// RegisterPage renders the sign-up form.
// GET /auth/register.
func (h *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	NewResponder(w, r, h.Renderer, h.logger()).Render(ViewRegister, RegisterForm{})
}

// Register creates a local account and signs it in.
// POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := DecodeForm(r, &req); err != nil {
		h.renderRegisterErrors(w, r, &req, err)
		return
	}

	p, err := h.Svc.Register(r.Context(), &req)
	switch {
	case err == nil:
	case apperrors.IsConflict(err):
		h.flashAndRedirect(w, r, "An account with that email already exists.", "/auth/register")
		return
	default:
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			h.renderRegisterErrors(w, r, &req, err)
			return
		}
		h.logger().ErrorContext(r.Context(), "registration failed", "error", err)
		h.flashAndRedirect(w, r, "Registration failed, please try again.", "/auth/register")
		return
	}

	if h.signIn(w, r, p, "Your account has been created.") {
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func (h *AuthHandlers) renderRegisterErrors(w http.ResponseWriter, r *http.Request, req *model.RegisterRequest, err error) {
	form := RegisterForm{Email: req.Email, FirstName: req.FirstName, LastName: req.LastName}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		form.FieldErrors = verr.FieldMap()
	}
	page := PageData{Request: NewRequestContext(r), View: ViewRegister, Data: form}
	if renderErr := h.Renderer.RenderPageStatus(w, http.StatusBadRequest, page); renderErr != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Logout destroys the session record and starts a fresh session carrying only the
// signed-out notice.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.Cache.Invalidate(websession.UserID(sess))

	if err := h.Sessions.Regenerate(r, sess); err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
	}
	sess.Values = make(map[any]any)
	websession.AddSuccess(sess, "You have been logged out.")
	if err := sess.Save(r, w); err != nil {
		h.logger().WarnContext(r.Context(), "failed to save signed-out session", "error", err)
	}

	// AJAX requests get a JSON payload; regular requests redirect
	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": "/login",
		})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// ProviderLogin starts the third-party login flow.
// GET /auth/oauth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) ProviderLogin(w http.ResponseWriter, r *http.Request) {
	if !h.Svc.ProviderEnabled() {
		http.NotFound(w, r)
		return
	}
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		h.flashAndRedirect(w, r, "Sign-in is unavailable right now.", "/login")
		return
	}

	h.setOAuthCookies(w, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback completes the third-party login flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.Svc.ProviderEnabled() {
		http.NotFound(w, r)
		return
	}
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		h.flashAndRedirect(w, r, "Sign-in was cancelled or is incomplete.", "/login")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		h.flashAndRedirect(w, r, "Sign-in expired, please try again.", "/login")
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		h.flashAndRedirect(w, r, "Sign-in expired, please try again.", "/login")
		return
	}

	p, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	h.clearCookie(w, "oauth_state")
	h.clearCookie(w, "oauth_nonce")
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login completion failed", "error", err)
		h.flashAndRedirect(w, r, "Sign-in failed.", "/login")
		return
	}

	if h.signIn(w, r, p, "Welcome, "+p.DisplayName()+".") {
		http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
	}
}

type statusResponse struct {
	Authenticated bool                  `json:"authenticated"`
	User          *domainauth.Principal `json:"user,omitempty"`
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		WriteJSON(w, http.StatusOK, statusResponse{})
		return
	}
	WriteJSON(w, http.StatusOK, statusResponse{Authenticated: true, User: p})
}

// signIn binds the principal to a fresh session id. It writes a 500 and returns false on failure.
func (h *AuthHandlers) signIn(w http.ResponseWriter, r *http.Request, p *domainauth.Principal, welcome string) bool {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	if err := h.Sessions.Regenerate(r, sess); err != nil {
		h.logger().ErrorContext(r.Context(), "session regenerate failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	websession.SetUserID(sess, p.UserID)
	websession.AddSuccess(sess, welcome)
	if err := sess.Save(r, w); err != nil {
		h.logger().ErrorContext(r.Context(), "session save failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	h.Cache.Add(*p)
	h.logger().InfoContext(r.Context(), "user signed in", "user_id", p.UserID, "provider", p.Provider)
	return true
}

func (h *AuthHandlers) flashAndRedirect(w http.ResponseWriter, r *http.Request, msg, to string) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		websession.AddError(sess, msg)
		if err := sess.Save(r, w); err != nil {
			h.logger().WarnContext(r.Context(), "failed to save flash", "error", err)
		}
	}
	http.Redirect(w, r, to, http.StatusFound)
}

// clearCookie clears a cookie by setting it to expire immediately.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set OAuth cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in short-lived cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, p oauthCookieParams) {
	for name, value := range map[string]string{
		"oauth_state":         p.State,
		"oauth_nonce":         p.Nonce,
		"post_login_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   h.CookieSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if redirectCookie, err := r.Cookie("post_login_redirect"); err == nil {
		redirectURI = safeRedirectPath(redirectCookie.Value)
		h.clearCookie(w, "post_login_redirect")
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	// Browsers read "/\host" as "//host", so backslashes never reach the Location header.
	if candidate == "" || strings.ContainsRune(candidate, '\\') {
		return "/"
	}
	if len(candidate) > 1 && candidate[1] == '/' {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
