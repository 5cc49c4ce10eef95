package config

import (
	"net"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 3000
	defaultMaxUploadBytes = 10 << 20
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Host is the interface to bind. Defaults to all interfaces.
	Host string `env:"HOST" envDefault:"0.0.0.0"`

	// Port is the TCP port to listen on.
	Port int `env:"PORT" envDefault:"3000"`

	// BaseURL is the externally visible base URL of the application.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// CORSOrigins lists the origins allowed to make credentialed cross-origin requests.
	CORSOrigins []string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000" envSeparator:","`

	// UploadsDir is where product images are written and served from under /uploads.
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"uploads"`

	// StaticDir and TemplateDir are read from disk in dev mode only.
	StaticDir   string `env:"STATIC_DIR"   envDefault:"frontend/static"`
	TemplateDir string `env:"TEMPLATE_DIR" envDefault:"frontend/templates"`

	// MaxUploadBytes caps multipart upload bodies.
	MaxUploadBytes int64 `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
}

// Addr returns the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.Host = strings.TrimSpace(h.Host)
	if h.Host == "" {
		h.Host = defaultHost
	}
	if h.Port <= 0 || h.Port > 65535 {
		h.Port = defaultPort
	}
	if strings.TrimSpace(h.UploadsDir) == "" {
		h.UploadsDir = "uploads"
	}
	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = defaultMaxUploadBytes
	}

	origins := h.CORSOrigins[:0]
	for _, o := range h.CORSOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	h.CORSOrigins = origins

	h.CookieDomain = sanitizeCookieDomain(h.CookieDomain)
}

// sanitizeCookieDomain normalizes the cookie domain and drops values that
// browsers would reject, such as a bare public suffix ("com", "co.uk").
func sanitizeCookieDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, ".")
	if d == "" {
		return ""
	}
	if net.ParseIP(d) != nil {
		return d
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(d); err != nil {
		return ""
	}
	return d
}

// RateLimitConfig controls throttling of credential submissions.
type RateLimitConfig struct {
	// LoginPerMinute is the sustained number of login attempts allowed per client.
	LoginPerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
	// LoginBurst is the number of attempts allowed in a burst.
	LoginBurst int `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

// Sanitize applies guardrails to rate limit configuration values.
func (r *RateLimitConfig) Sanitize() {
	if r.LoginPerMinute < 1 {
		r.LoginPerMinute = 1
	}
	if r.LoginBurst < 1 {
		r.LoginBurst = 1
	}
}
