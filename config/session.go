package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset.
// It is public knowledge and must not be relied on outside local development.
const DefaultSessionSecret = "default_secret"

// SessionBackend selects where session records are persisted.
type SessionBackend string

const (
	// SessionBackendPostgres stores sessions in the sessions table.
	SessionBackendPostgres SessionBackend = "postgres"
	// SessionBackendRedis stores sessions as expiring Redis keys.
	SessionBackendRedis SessionBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "postgres", "redis":
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: postgres, redis)", v)
	}
}

// SessionConfig contains session cookie and store configuration.
type SessionConfig struct {
	// Secret signs the session cookie.
	Secret string `env:"SECRET" envDefault:"default_secret"`

	// Name is the session cookie name.
	Name string `env:"NAME" envDefault:"connect.sid"`

	// MaxAge bounds both the cookie lifetime and the stored record expiry.
	MaxAge time.Duration `env:"MAX_AGE" envDefault:"24h"`

	// Secure sets the Secure cookie attribute. Off by default so the
	// application works over plain HTTP.
	Secure bool `env:"COOKIE_SECURE" envDefault:"false"`

	// Store selects the session backend.
	Store SessionBackend `env:"STORE" envDefault:"postgres"`

	// ReapSchedule is a cron spec for deleting expired session records.
	ReapSchedule string `env:"REAP_SCHEDULE" envDefault:"@every 15m"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if strings.TrimSpace(s.Secret) == "" {
		s.Secret = DefaultSessionSecret
	}
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		s.Name = "connect.sid"
	}
	if s.MaxAge <= 0 {
		s.MaxAge = 24 * time.Hour
	}
	if s.Store == "" {
		s.Store = SessionBackendPostgres
	}
	if strings.TrimSpace(s.ReapSchedule) == "" {
		s.ReapSchedule = "@every 15m"
	}
}

// UsesDefaultSecret reports whether the insecure fallback secret is in effect.
func (s SessionConfig) UsesDefaultSecret() bool {
	return s.Secret == DefaultSessionSecret
}
