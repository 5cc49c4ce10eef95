package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/target/wardrobe/internal/domain/model"
)

// View names rendered by the page handlers.
const (
	ViewIndex    = "index"
	ViewLogin    = "login"
	ViewRegister = "register"
	ViewCalendar = "calendar"
	ViewLooks    = "looks"
	ViewLabel    = "label"
	ViewError    = "error"
)

//nolint:gochecknoglobals // read-only
var viewTitles = map[string]string{
	ViewIndex:    "Home",
	ViewLogin:    "Sign in",
	ViewRegister: "Create account",
	ViewCalendar: "Calendar",
	ViewLooks:    "Looks",
	ViewLabel:    "Label",
	ViewError:    "Error",
}

// PageData is the value every page template receives.
type PageData struct {
	Request RequestContext
	View    string
	Data    any
}

// Title returns the document title for the view.
func (p PageData) Title() string {
	if t, ok := viewTitles[p.View]; ok {
		return t + " · Wardrobe"
	}
	return "Wardrobe"
}

// ErrorView is the data for the error page.
type ErrorView struct {
	Status  int
	Message string
}

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	mu      sync.RWMutex
	t       *template.Template
	fsys    fs.FS
	devMode bool         // Re-parse templates on each render
	logger  *slog.Logger // For logging template errors
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing templates (required)
	DevMode    bool         // Enable hot reloading of templates
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &TemplateRenderer{fsys: cfg.TemplateFS, devMode: cfg.DevMode, logger: logger}
	t, err := r.parse()
	if err != nil {
		logger.Error("template parsing failed", slog.Any("error", err), slog.String("phase", "initialization"))
		return nil, err
	}
	r.t = t
	return r, nil
}

func (r *TemplateRenderer) parse() (*template.Template, error) {
	var t *template.Template
	t, err := template.New("root").Funcs(templateFuncs(&t)).ParseFS(r.fsys,
		"*.tmpl",
		"pages/*.tmpl",
		"partials/*.tmpl",
	)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (r *TemplateRenderer) templates() (*template.Template, error) {
	if r.devMode {
		t, err := r.parse()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.t = t
		r.mu.Unlock()
		return t, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.t, nil
}

// RenderPage renders the layout around the page's view with status 200.
func (r *TemplateRenderer) RenderPage(w http.ResponseWriter, page PageData) error {
	return r.RenderPageStatus(w, http.StatusOK, page)
}

// RenderPageStatus renders the layout around the page's view with the given status.
// Nothing is written when rendering fails.
func (r *TemplateRenderer) RenderPageStatus(w http.ResponseWriter, status int, page PageData) error {
	if r == nil {
		return errors.New("template renderer not configured")
	}
	t, err := r.templates()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		r.logger.Error("template execution failed", slog.String("view", page.View), slog.Any("error", err))
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("failed to write rendered template", slog.String("view", page.View), slog.Any("error", err))
	}
	return nil
}

// templateFuncs returns helpers available to every template. t is filled in after parsing
// so "view" can execute sibling templates.
func templateFuncs(t **template.Template) template.FuncMap {
	return template.FuncMap{
		"view": func(name string, data any) (template.HTML, error) {
			if t == nil || *t == nil {
				return "", errors.New("template not initialized")
			}
			var buf bytes.Buffer
			if err := (*t).ExecuteTemplate(&buf, "view:"+name, data); err != nil {
				return "", err
			}
			// #nosec G203 - output of html/template, already escaped
			return template.HTML(buf.String()), nil
		},
		"ago": func(ts time.Time) string {
			if ts.IsZero() {
				return ""
			}
			return humanize.Time(ts)
		},
		"until": func(ts *time.Time) string {
			if ts == nil || ts.IsZero() {
				return ""
			}
			return humanize.RelTime(*ts, time.Now(), "ago", "from now")
		},
		"money": func(cents int64) string {
			sign := ""
			if cents < 0 {
				sign, cents = "-", -cents
			}
			return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
		},
		"date": func(ts any) string {
			switch v := ts.(type) {
			case time.Time:
				return v.Format(model.DateLayout)
			case *time.Time:
				if v != nil {
					return v.Format(model.DateLayout)
				}
			}
			return ""
		},
		"clock": func(ts time.Time) string { return ts.Format("Jan 2 15:04") },
		"bytes": func(n int64) string {
			if n < 0 {
				return ""
			}
			return humanize.Bytes(uint64(n))
		},
	}
}
