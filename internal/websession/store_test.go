package websession

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockauth "github.com/target/wardrobe/internal/mocks/auth"
)

const cookieName = "connect.sid"

func newTestStore(t *testing.T) (*Store, *mockauth.MemorySessionStore) {
	t.Helper()
	backend := mockauth.NewMemorySessionStore()
	s, err := NewStore(backend, Options{Secret: "test-secret", MaxAge: time.Hour})
	require.NoError(t, err)
	return s, backend
}

// roundTrip returns a request carrying the cookies set on rec.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(nil, Options{Secret: "x"})
	assert.Error(t, err)
	_, err = NewStore(mockauth.NewMemorySessionStore(), Options{})
	assert.Error(t, err)
}

func TestStore_NewSessionIsNotPersistedUntilSaved(t *testing.T) {
	s, backend := newTestStore(t)
	sess, err := s.New(httptest.NewRequest(http.MethodGet, "/", nil), cookieName)
	require.NoError(t, err)
	assert.True(t, sess.IsNew)
	assert.Empty(t, sess.ID)
	assert.Zero(t, backend.Len())
}

func TestStore_SaveAndLoad(t *testing.T) {
	s, backend := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := s.New(req, cookieName)
	require.NoError(t, err)
	SetUserID(sess, "user-1")

	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(req, rec, sess))
	assert.Equal(t, 1, backend.Len())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, cookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.NotContains(t, c.Value, "user-1")

	loaded, err := s.New(roundTrip(rec), cookieName)
	require.NoError(t, err)
	assert.False(t, loaded.IsNew)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "user-1", UserID(loaded))
}

func TestStore_TamperedCookieStartsFresh(t *testing.T) {
	s, _ := newTestStore(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "forged"})

	sess, err := s.New(req, cookieName)
	require.NoError(t, err)
	assert.True(t, sess.IsNew)
	assert.Empty(t, UserID(sess))
}

func TestStore_BackendFailureIsReported(t *testing.T) {
	s, backend := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := s.New(req, cookieName)
	require.NoError(t, err)
	SetUserID(sess, "user-1")
	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(req, rec, sess))

	backend.Err = errors.New("connection refused")
	_, err = s.New(roundTrip(rec), cookieName)
	assert.Error(t, err)
}

func TestStore_ExpireDeletesRecordAndCookie(t *testing.T) {
	s, backend := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := s.New(req, cookieName)
	SetUserID(sess, "user-1")
	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(req, rec, sess))

	loaded, err := s.New(roundTrip(rec), cookieName)
	require.NoError(t, err)
	Expire(loaded)
	out := httptest.NewRecorder()
	require.NoError(t, s.Save(req, out, loaded))

	assert.Zero(t, backend.Len())
	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestStore_RegenerateIssuesNewID(t *testing.T) {
	s, backend := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := s.New(req, cookieName)
	AddSuccess(sess, "hello")
	require.NoError(t, s.Save(req, httptest.NewRecorder(), sess))
	oldID := sess.ID

	require.NoError(t, s.Regenerate(req, sess))
	SetUserID(sess, "user-1")
	require.NoError(t, s.Save(req, httptest.NewRecorder(), sess))

	assert.NotEqual(t, oldID, sess.ID)
	assert.Equal(t, 1, backend.Len())
}

func TestFlashes_DeliveredOnce(t *testing.T) {
	s, _ := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _ := s.New(req, cookieName)
	AddSuccess(sess, "Saved")
	AddError(sess, "Careful")
	rec := httptest.NewRecorder()
	require.NoError(t, s.Save(req, rec, sess))

	next, err := s.New(roundTrip(rec), cookieName)
	require.NoError(t, err)
	flashes, changed := ConsumeFlashes(next)
	assert.True(t, changed)
	assert.Equal(t, []string{"Saved"}, flashes.Success)
	assert.Equal(t, []string{"Careful"}, flashes.Error)
	rec2 := httptest.NewRecorder()
	require.NoError(t, s.Save(req, rec2, next))

	after, err := s.New(roundTrip(rec2), cookieName)
	require.NoError(t, err)
	flashes, changed = ConsumeFlashes(after)
	assert.False(t, changed)
	assert.True(t, flashes.Empty())
}
