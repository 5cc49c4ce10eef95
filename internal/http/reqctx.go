package httpx

import (
	"io"
	"log/slog"
	"net/http"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
)

// RequestContext is the per-request view handed to page handlers: the request line,
// its cookies, the resolved identity (if any) and the flashes extracted for this response.
// CSRFToken must be echoed by every form that posts back.
type RequestContext struct {
	Method    string
	Path      string
	Cookies   []*http.Cookie
	Identity  *domainauth.Principal
	Flashes   domainauth.Flashes
	CSRFToken string
}

// NewRequestContext builds a RequestContext from a request that has passed through the
// Session, Identity and Flash middleware.
func NewRequestContext(r *http.Request) RequestContext {
	p, _ := PrincipalFromContext(r.Context())
	return RequestContext{
		Method:    r.Method,
		Path:      r.URL.Path,
		Cookies:   r.Cookies(),
		Identity:  p,
		Flashes:   FlashesFromContext(r.Context()),
		CSRFToken: CSRFTokenFromContext(r.Context()),
	}
}

// Authenticated reports whether an identity is attached.
func (rc RequestContext) Authenticated() bool { return rc.Identity != nil }

// Responder is the set of ways a handler can answer a request.
type Responder interface {
	Render(view string, data any)
	Redirect(path string)
	SendText(body string)
	SendJSON(body any)
}

// httpResponder writes responses for a single request.
type httpResponder struct {
	w        http.ResponseWriter
	r        *http.Request
	renderer *TemplateRenderer
	logger   *slog.Logger
}

// NewResponder returns a Responder bound to w and r. Views are rendered with renderer.
func NewResponder(w http.ResponseWriter, r *http.Request, renderer *TemplateRenderer, logger *slog.Logger) Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &httpResponder{w: w, r: r, renderer: renderer, logger: logger}
}

// Render renders view inside the layout with the request context. Failures produce a 500.
func (h *httpResponder) Render(view string, data any) {
	if h.renderer == nil {
		http.Error(h.w, "template renderer not configured", http.StatusInternalServerError)
		return
	}
	page := PageData{Request: NewRequestContext(h.r), View: view, Data: data}
	if err := h.renderer.RenderPage(h.w, page); err != nil {
		h.logger.ErrorContext(h.r.Context(), "render failed", "view", view, "error", err)
		http.Error(h.w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Redirect sends a 302 to path.
func (h *httpResponder) Redirect(path string) {
	http.Redirect(h.w, h.r, path, http.StatusFound)
}

// SendText writes body as text/plain with status 200.
func (h *httpResponder) SendText(body string) {
	h.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	h.w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(h.w, body); err != nil {
		h.logger.DebugContext(h.r.Context(), "write response failed", "error", err)
	}
}

// SendJSON writes body as JSON with status 200.
func (h *httpResponder) SendJSON(body any) {
	WriteJSON(h.w, http.StatusOK, body)
}
