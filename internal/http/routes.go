package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/target/wardrobe/internal/observability/metrics"
	"github.com/target/wardrobe/internal/websession"
)

// Route is one entry of the static routing table.
type Route struct {
	Method  string
	Pattern string
	Name    string
	Handler http.Handler
}

// MuxPattern returns the net/http.ServeMux pattern for the route.
func (rt Route) MuxPattern() string {
	return rt.Method + " " + rt.Pattern
}

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth     AuthServiceInterface
	Products ProductService
	Looks    LookService
	Calendar CalendarService
	Labels   LabelBuilder

	Sessions    *websession.Store
	SessionName string
	Renderer    *TemplateRenderer
	StaticFS    fs.FS
	UploadsDir  string

	CookieDomain   string
	CookieSecure   bool
	CORSOrigins    []string
	MaxUploadBytes int64

	DB             Pinger            // Optional: health check target
	Metrics        *metrics.Metrics  // Optional
	LoginLimiter   *LoginRateLimiter // Optional
	PrincipalCache *PrincipalCache   // Optional
	Logger         *slog.Logger      // Optional
}

func (s RouterServices) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// BuildRoutes returns the ordered routing table. Collaborator prefixes come first, then the
// exact application routes, then static mounts. ServeMux precedence is by specificity, so
// the order is for readability and route tests only.
func BuildRoutes(s RouterServices) []Route {
	logger := s.logger()
	pages := &PageHandlers{Renderer: s.Renderer, Events: s.Calendar, Logger: logger}
	auth := &AuthHandlers{
		Svc:          s.Auth,
		Sessions:     s.Sessions,
		Cache:        s.PrincipalCache,
		Renderer:     s.Renderer,
		CookieDomain: s.CookieDomain,
		CookieSecure: s.CookieSecure,
		Logger:       logger,
	}
	products := &ProductHandlers{Svc: s.Products, MaxUploadBytes: s.MaxUploadBytes}
	looks := &LookHandlers{Svc: s.Looks, Renderer: s.Renderer, Logger: logger}
	events := &CalendarHandlers{Svc: s.Calendar}
	labels := &LabelHandlers{Svc: s.Labels, Renderer: s.Renderer, Logger: logger}

	login := http.Handler(http.HandlerFunc(auth.Login))
	if s.LoginLimiter != nil {
		login = s.LoginLimiter.Middleware(login)
	}
	gated := func(h http.HandlerFunc) http.Handler { return EnsureAuthenticated(h) }
	api := func(h http.HandlerFunc) http.Handler { return RequireAuthJSON(h) }

	var routes []Route
	add := func(method, pattern, name string, h http.Handler) {
		routes = append(routes, Route{Method: method, Pattern: pattern, Name: name, Handler: h})
	}

	// /auth
	add(http.MethodGet, "/auth/login", "auth.login_redirect", http.RedirectHandler("/login", http.StatusFound))
	add(http.MethodPost, "/auth/login", "auth.login", login)
	add(http.MethodGet, "/auth/register", "auth.register_page", http.HandlerFunc(auth.RegisterPage))
	add(http.MethodPost, "/auth/register", "auth.register", http.HandlerFunc(auth.Register))
	add(http.MethodPost, "/auth/logout", "auth.logout", http.HandlerFunc(auth.Logout))
	add(http.MethodGet, "/auth/oauth/login", "auth.oauth_login", http.HandlerFunc(auth.ProviderLogin))
	add(http.MethodGet, "/auth/callback", "auth.callback", http.HandlerFunc(auth.Callback))
	add(http.MethodGet, "/auth/status", "auth.status", http.HandlerFunc(auth.Status))

	// /api/products
	add(http.MethodGet, "/api/products", "products.list", api(products.List))
	add(http.MethodPost, "/api/products", "products.create", api(products.Create))
	add(http.MethodGet, "/api/products/{id}", "products.get", api(products.Get))
	add(http.MethodPut, "/api/products/{id}", "products.update", api(products.Update))
	add(http.MethodDelete, "/api/products/{id}", "products.delete", api(products.Delete))
	add(http.MethodPost, "/api/products/{id}/image", "products.upload_image", api(products.UploadImage))

	// /look
	add(http.MethodGet, "/look", "looks.page", gated(looks.Page))
	add(http.MethodGet, "/look/api", "looks.list", api(looks.List))
	add(http.MethodPost, "/look", "looks.create", gated(looks.Create))
	add(http.MethodDelete, "/look/{id}", "looks.delete", api(looks.Delete))

	// /calendar
	add(http.MethodGet, "/calendar/events", "calendar.events", api(events.List))
	add(http.MethodPost, "/calendar/events", "calendar.create", api(events.Create))
	add(http.MethodDelete, "/calendar/events/{id}", "calendar.delete", api(events.Delete))

	// /api/labels
	add(http.MethodGet, "/api/labels", "labels.get", http.HandlerFunc(labels.Get))
	add(http.MethodGet, "/api/labels/view", "labels.view", http.HandlerFunc(labels.View))

	// application routes
	add(http.MethodGet, "/{$}", "index", http.HandlerFunc(pages.Index))
	add(http.MethodGet, "/calendar", "calendar.page", gated(pages.Calendar))
	add(http.MethodGet, "/login", "login", http.HandlerFunc(auth.LoginPage))
	add(http.MethodGet, "/protected", "protected", gated(pages.Protected))

	// infrastructure
	add(http.MethodGet, "/healthz", "healthz", healthHandler(s.DB))
	if s.Metrics != nil {
		add(http.MethodGet, "/metrics", "metrics", s.Metrics.Handler())
	}

	// static mounts: the same directory under /static/ and as the root fallback
	add(http.MethodGet, "/static/", "static", staticHandler(s.StaticFS, "/static/", nil))
	add(http.MethodGet, "/uploads/", "uploads", uploadsHandler(s.UploadsDir))
	add(http.MethodGet, "/", "static.root", staticHandler(s.StaticFS, "/", http.HandlerFunc(pages.NotFound)))

	return routes
}

// NewRouter registers the routing table on a ServeMux and wraps it with the request
// pipeline: recovery, access log, metrics, CORS, CSRF, session, identity and flash extraction.
func NewRouter(s RouterServices) http.Handler {
	mux := http.NewServeMux()
	for _, rt := range BuildRoutes(s) {
		mux.Handle(rt.MuxPattern(), labelRoute(rt.MuxPattern(), rt.Handler))
	}

	logger := s.logger()
	return Chain(mux,
		Recover(logger),
		Logging(logger),
		Metrics(s.Metrics),
		CORS(s.CORSOrigins),
		CSRFProtection(CSRFConfig{CookieDomain: s.CookieDomain, CookieSecure: s.CookieSecure}),
		Session(s.Sessions, s.SessionName, logger),
		Identity(IdentityOptions{Resolver: s.Auth, Cache: s.PrincipalCache, Logger: logger}),
		Flash(logger),
	)
}

// staticHandler serves files from fsys below prefix. Directories are not listed; a miss
// goes to notFound when set, otherwise a plain 404.
func staticHandler(fsys fs.FS, prefix string, notFound http.Handler) http.Handler {
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	if fsys == nil {
		return notFound
	}
	files := http.StripPrefix(strings.TrimSuffix(prefix, "/"), http.FileServerFS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), strings.TrimSuffix(prefix, "/"))
		name = strings.TrimPrefix(name, "/")
		if !isRegularFile(fsys, name) {
			notFound.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

// uploadsHandler serves user uploads from dir. Uploaded names are random so they may be
// cached for a long time.
func uploadsHandler(dir string) http.Handler {
	if dir == "" {
		return http.NotFoundHandler()
	}
	fsys := os.DirFS(dir)
	files := http.StripPrefix("/uploads", http.FileServerFS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/uploads/")
		if !isRegularFile(fsys, name) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	})
}

func isRegularFile(fsys fs.FS, name string) bool {
	if name == "" || !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && info.Mode().IsRegular()
}
