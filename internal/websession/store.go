// Package websession provides a gorilla/sessions Store whose cookie carries only a signed
// session id while the session values live in a ports.SessionStore (Postgres or Redis).
package websession

import (
	"encoding/base32"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

// Options configures a Store.
type Options struct {
	Secret string        // Required: signs the cookie and the stored values
	MaxAge time.Duration // Cookie lifetime and record expiry
	Domain string
	Secure bool
	Now    func() time.Time
}

// Store implements sessions.Store over a ports.SessionStore.
type Store struct {
	codecs  []securecookie.Codec
	options sessions.Options
	backend ports.SessionStore
	now     func() time.Time
}

var _ sessions.Store = (*Store)(nil)

// NewStore returns a Store persisting session values in backend.
func NewStore(backend ports.SessionStore, opts Options) (*Store, error) {
	if backend == nil {
		return nil, errors.New("session backend is required")
	}
	if opts.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	maxAge := int(opts.MaxAge / time.Second)
	codecs := securecookie.CodecsFromPairs([]byte(opts.Secret))
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(maxAge)
			// Values are stored server side, so the browser cookie size limit does not apply.
			sc.MaxLength(0)
		}
	}
	return &Store{
		codecs: codecs,
		options: sessions.Options{
			Path:     "/",
			Domain:   opts.Domain,
			MaxAge:   maxAge,
			Secure:   opts.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		backend: backend,
		now:     opts.Now,
	}, nil
}

// Get returns the named session, cached per request via the sessions registry.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session referenced by the request cookie, or returns a fresh one.
// A missing, tampered, or expired cookie yields a new empty session. An error is only
// returned when the backend cannot be reached.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil || id == "" {
		return session, nil
	}

	rec, err := s.backend.Get(r.Context(), id)
	if errors.Is(err, ports.ErrSessionNotFound) {
		return session, nil
	}
	if err != nil {
		return session, fmt.Errorf("load session: %w", err)
	}
	if err := securecookie.DecodeMulti(name, string(rec.Data), &session.Values, s.codecs...); err != nil {
		return session, nil
	}
	session.ID = id
	session.IsNew = false
	return session, nil
}

// Save persists the session values and writes the cookie. A negative MaxAge deletes the
// stored record and expires the cookie.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.backend.Delete(r.Context(), session.ID); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}
	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	rec := domainauth.SessionRecord{
		ID:        session.ID,
		Data:      []byte(data),
		ExpiresAt: s.now().Add(time.Duration(session.Options.MaxAge) * time.Second),
	}
	if err := s.backend.Save(r.Context(), rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	cookie, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), cookie, session.Options))
	session.IsNew = false
	return nil
}

// Regenerate discards the stored record and assigns a new id on the next Save, keeping values.
// Call it when the session's privilege level changes, such as at login.
func (s *Store) Regenerate(r *http.Request, session *sessions.Session) error {
	if session.ID != "" {
		if err := s.backend.Delete(r.Context(), session.ID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	session.ID = ""
	return nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}
