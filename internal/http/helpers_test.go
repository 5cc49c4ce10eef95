package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/wardrobe/internal/mocks"
	mockauth "github.com/target/wardrobe/internal/mocks/auth"
	"github.com/target/wardrobe/internal/service"
	"github.com/target/wardrobe/internal/websession"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "correct horse"
)

func testTemplateFS() fstest.MapFS {
	file := func(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }
	return fstest.MapFS{
		"layout.tmpl": file(`{{define "layout"}}<title>{{.Title}}</title>{{template "flash" .}}` +
			`{{with .Request.Identity}}user:{{.Email}}{{else}}anonymous{{end}}|{{view .View .}}` +
			`<input name="csrf_token" value="csrf:{{.Request.CSRFToken}}">{{end}}`),
		"partials/flash.tmpl": file(`{{define "flash"}}{{range .Request.Flashes.Success}}<p class="ok">{{.}}</p>{{end}}` +
			`{{range .Request.Flashes.Error}}<p class="err">{{.}}</p>{{end}}{{end}}`),
		"pages/index.tmpl":    file(`{{define "view:index"}}index{{end}}`),
		"pages/login.tmpl":    file(`{{define "view:login"}}login form{{if .Data.ProviderEnabled}} provider{{end}}{{end}}`),
		"pages/register.tmpl": file(`{{define "view:register"}}register{{range $k, $v := .Data.FieldErrors}} {{$k}}:{{$v}}{{end}}{{end}}`),
		"pages/calendar.tmpl": file(`{{define "view:calendar"}}calendar events={{len .Data.Events}}{{end}}`),
		"pages/looks.tmpl":    file(`{{define "view:looks"}}looks{{range .Data.Looks}} {{.Name}}{{end}}{{end}}`),
		"pages/label.tmpl":    file(`{{define "view:label"}}label{{range .Data.Lines}} [{{.}}]{{end}}{{end}}`),
		"pages/error.tmpl":    file(`{{define "view:error"}}error {{.Data.Status}} {{.Data.Message}}{{end}}`),
	}
}

func testStaticFS() fstest.MapFS {
	return fstest.MapFS{
		"css/app.css":  &fstest.MapFile{Data: []byte("body{}")},
		"robots.txt":   &fstest.MapFile{Data: []byte("User-agent: *")},
		"img/logo.svg": &fstest.MapFile{Data: []byte("<svg/>")},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	server   *httptest.Server
	client   *http.Client
	sessions *mockauth.MemorySessionStore
	users    *mockauth.MemoryUserRepo
	products *mocks.MockProductRepository
	looks    *mocks.MockLookRepository
	events   *mocks.MockEventRepository
	files    *mocks.MockFileStore
	cache    *PrincipalCache
}

type testEnvOption func(*RouterServices)

func newTestEnv(t *testing.T, opts ...testEnvOption) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	env := &testEnv{
		sessions: mockauth.NewMemorySessionStore(),
		users:    mockauth.NewMemoryUserRepo(),
		products: mocks.NewMockProductRepository(ctrl),
		looks:    mocks.NewMockLookRepository(ctrl),
		events:   mocks.NewMockEventRepository(ctrl),
		files:    mocks.NewMockFileStore(ctrl),
		cache:    NewPrincipalCache(16, time.Minute),
	}

	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Users:    env.users,
		Hasher:   mockauth.PlainHasher{},
		Provider: mockauth.NewMockAuthProvider(),
		Roles:    mockauth.StaticRoleMapper{UserGroup: "users"},
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	store, err := websession.NewStore(env.sessions, websession.Options{Secret: "test-secret", MaxAge: time.Hour})
	require.NoError(t, err)
	renderer, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: testTemplateFS(), Logger: discardLogger()})
	require.NoError(t, err)
	products := service.NewProductService(service.ProductServiceOptions{Repo: env.products, Files: env.files, Logger: discardLogger()})
	labels, err := service.NewLabelService(service.LabelServiceOptions{Products: env.products})
	require.NoError(t, err)

	svcs := RouterServices{
		Auth:           authSvc,
		Products:       products,
		Looks:          service.NewLookService(env.looks),
		Calendar:       service.NewCalendarService(env.events, time.Now),
		Labels:         labels,
		Sessions:       store,
		SessionName:    "connect.sid",
		Renderer:       renderer,
		StaticFS:       testStaticFS(),
		UploadsDir:     t.TempDir(),
		CORSOrigins:    []string{"http://localhost:3000"},
		PrincipalCache: env.cache,
		Logger:         discardLogger(),
	}
	for _, o := range opts {
		o(&svcs)
	}

	env.server = httptest.NewServer(NewRouter(svcs))
	t.Cleanup(env.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	env.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return env
}

type testResponse struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

// do sends req with the client's cookies. Unsafe requests that carry no token yet get the
// CSRF header, as app.js does.
func (e *testEnv) do(t *testing.T, req *http.Request) testResponse {
	t.Helper()
	if unsafeMethod(req.Method) && req.Header.Get(CSRFHeaderName) == "" && req.Header.Get("Content-Type") != formContentType {
		req.Header.Set(CSRFHeaderName, e.csrfToken(t))
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testResponse{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Header:   resp.Header,
		Body:     string(body),
	}
}

func (e *testEnv) get(t *testing.T, path string) testResponse {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	return e.do(t, req)
}

const formContentType = "application/x-www-form-urlencoded"

// postForm submits form like a browser would, with the hidden csrf_token field filled in
// unless the caller set it.
func (e *testEnv) postForm(t *testing.T, path string, form url.Values) testResponse {
	t.Helper()
	values := url.Values{}
	for k, v := range form {
		values[k] = v
	}
	if _, ok := values[CSRFCookieName]; !ok {
		values.Set(CSRFCookieName, e.csrfToken(t))
	}
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", formContentType)
	return e.do(t, req)
}

// csrfToken returns the client's CSRF cookie, fetching one first when the jar has none.
func (e *testEnv) csrfToken(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(e.server.URL)
	require.NoError(t, err)
	find := func() string {
		for _, c := range e.client.Jar.Cookies(u) {
			if c.Name == CSRFCookieName {
				return c.Value
			}
		}
		return ""
	}
	if token := find(); token != "" {
		return token
	}
	resp, err := e.client.Get(e.server.URL + "/healthz")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	token := find()
	require.NotEmpty(t, token, "csrf cookie not issued")
	return token
}

// logout signs the client out through the nav form.
func (e *testEnv) logout(t *testing.T) {
	t.Helper()
	resp := e.postForm(t, "/auth/logout", nil)
	require.Equal(t, http.StatusFound, resp.Status, resp.Body)
}

func (e *testEnv) sendJSON(t *testing.T, method, path, body string) testResponse {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

// signUp registers the test account, which also signs the client in.
func (e *testEnv) signUp(t *testing.T) {
	t.Helper()
	resp := e.postForm(t, "/auth/register", url.Values{
		"email":            {testEmail},
		"password":         {testPassword},
		"confirm_password": {testPassword},
		"first_name":       {"Ada"},
	})
	require.Equal(t, http.StatusFound, resp.Status, resp.Body)
	require.Equal(t, "/", resp.Location)
}

// userID returns the id of the registered test account.
func (e *testEnv) userID(t *testing.T) string {
	t.Helper()
	u, err := e.users.GetByEmail(t.Context(), testEmail)
	require.NoError(t, err)
	return u.ID
}
