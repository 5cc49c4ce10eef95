package httpx

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/wardrobe/internal/observability/metrics"
)

type routeKey struct {
	Method  string
	Pattern string
	Name    string
}

func TestBuildRoutes_Table(t *testing.T) {
	routes := BuildRoutes(RouterServices{Metrics: metrics.New()})

	got := make([]routeKey, 0, len(routes))
	for _, rt := range routes {
		require.NotNil(t, rt.Handler, rt.Name)
		got = append(got, routeKey{rt.Method, rt.Pattern, rt.Name})
	}

	want := []routeKey{
		{"GET", "/auth/login", "auth.login_redirect"},
		{"POST", "/auth/login", "auth.login"},
		{"GET", "/auth/register", "auth.register_page"},
		{"POST", "/auth/register", "auth.register"},
		{"POST", "/auth/logout", "auth.logout"},
		{"GET", "/auth/oauth/login", "auth.oauth_login"},
		{"GET", "/auth/callback", "auth.callback"},
		{"GET", "/auth/status", "auth.status"},
		{"GET", "/api/products", "products.list"},
		{"POST", "/api/products", "products.create"},
		{"GET", "/api/products/{id}", "products.get"},
		{"PUT", "/api/products/{id}", "products.update"},
		{"DELETE", "/api/products/{id}", "products.delete"},
		{"POST", "/api/products/{id}/image", "products.upload_image"},
		{"GET", "/look", "looks.page"},
		{"GET", "/look/api", "looks.list"},
		{"POST", "/look", "looks.create"},
		{"DELETE", "/look/{id}", "looks.delete"},
		{"GET", "/calendar/events", "calendar.events"},
		{"POST", "/calendar/events", "calendar.create"},
		{"DELETE", "/calendar/events/{id}", "calendar.delete"},
		{"GET", "/api/labels", "labels.get"},
		{"GET", "/api/labels/view", "labels.view"},
		{"GET", "/{$}", "index"},
		{"GET", "/calendar", "calendar.page"},
		{"GET", "/login", "login"},
		{"GET", "/protected", "protected"},
		{"GET", "/healthz", "healthz"},
		{"GET", "/metrics", "metrics"},
		{"GET", "/static/", "static"},
		{"GET", "/uploads/", "uploads"},
		{"GET", "/", "static.root"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("route table mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRoutes_MetricsRouteOnlyWhenEnabled(t *testing.T) {
	for _, rt := range BuildRoutes(RouterServices{}) {
		assert.NotEqual(t, "/metrics", rt.Pattern)
	}
}

func TestNewRouter_PatternsRegisterWithoutConflict(t *testing.T) {
	assert.NotPanics(t, func() {
		NewRouter(RouterServices{Metrics: metrics.New()})
	})
}

func TestProtected_WithoutIdentityRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/protected")

	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, "/login", resp.Location)
	assert.NotContains(t, resp.Body, "This is a protected route")
}

func TestProtected_WithIdentityReturnsText(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	resp := env.get(t, "/protected")

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "This is a protected route", resp.Body)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestCalendar_GuardedPage(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/calendar")
	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, "/login", resp.Location)

	env.signUp(t)
	env.events.EXPECT().ListRange(gomock.Any(), gomock.Any()).Return(nil, nil)

	resp = env.get(t, "/calendar")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "user:"+testEmail)
	assert.Contains(t, resp.Body, "calendar events=0")
}

func TestIndex_RendersIdentity(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "anonymous|index")

	env.signUp(t)
	resp = env.get(t, "/")
	assert.Contains(t, resp.Body, "user:"+testEmail+"|index")
}

func TestLoginPage_Renders(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/login")

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "<title>Sign in · Wardrobe</title>")
	assert.Contains(t, resp.Body, "login form provider")
}

func TestStatic_MountedTwice(t *testing.T) {
	env := newTestEnv(t)

	a := env.get(t, "/static/css/app.css")
	b := env.get(t, "/css/app.css")

	assert.Equal(t, http.StatusOK, a.Status)
	assert.Equal(t, http.StatusOK, b.Status)
	assert.Equal(t, "body{}", a.Body)
	assert.Equal(t, a.Body, b.Body)
}

func TestStatic_MissingFiles(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/static/css/missing.css")
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = env.get(t, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Contains(t, resp.Body, "error 404")

	resp = env.get(t, "/css/")
	assert.Equal(t, http.StatusNotFound, resp.Status, "directories are not listed")
}

func TestUploads_ServesFilesFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "p1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p1", "a.png"), []byte("png"), 0o600))
	env := newTestEnv(t, func(s *RouterServices) { s.UploadsDir = dir })

	resp := env.get(t, "/uploads/p1/a.png")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "png", resp.Body)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	assert.Equal(t, http.StatusNotFound, env.get(t, "/uploads/p1/b.png").Status)
	assert.Equal(t, http.StatusNotFound, env.get(t, "/uploads/p1/").Status)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/healthz")

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body)
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	m := metrics.New()
	env := newTestEnv(t, func(s *RouterServices) { s.Metrics = m })

	env.get(t, "/protected")
	env.get(t, "/healthz")

	resp := env.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, `route="GET /protected"`)
	assert.Contains(t, resp.Body, `route="GET /healthz"`)
}

func TestSession_BackendFailureIs500(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)
	env.sessions.Err = assert.AnError

	resp := env.get(t, "/")

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
}
