// Package config loads wardrobe settings from the environment with caarlos0/env.
// Each concern lives in its own file: auth.go, database.go, http.go and session.go.
package config

import (
	"os"
	"strings"
)

// AppConfig is the root of the environment-driven configuration tree.
type AppConfig struct {
	// IsDev serves templates and static assets from disk. NODE_ENV=development also enables it.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth AuthConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP      HTTPConfig
	Session   SessionConfig `envPrefix:"SESSION_"`
	RateLimit RateLimitConfig
}

// Sanitize clamps out-of-range values. Call it once after env.Parse.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Session.Sanitize()
	c.RateLimit.Sanitize()
	if !c.IsDev {
		c.IsDev = isDevEnv(os.Getenv("NODE_ENV"))
	}
}

func isDevEnv(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "development", "dev":
		return true
	}
	return false
}
