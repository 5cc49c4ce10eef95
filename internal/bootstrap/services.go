package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	wardrobe "github.com/target/wardrobe"
	"github.com/target/wardrobe/config"
	"github.com/target/wardrobe/internal/adapters/filestore"
	"github.com/target/wardrobe/internal/adapters/password"
	"github.com/target/wardrobe/internal/adapters/reaper"
	redisadapter "github.com/target/wardrobe/internal/adapters/redis"
	"github.com/target/wardrobe/internal/data"
	httpx "github.com/target/wardrobe/internal/http"
	"github.com/target/wardrobe/internal/observability/metrics"
	"github.com/target/wardrobe/internal/ports"
	"github.com/target/wardrobe/internal/service"
	"github.com/target/wardrobe/internal/websession"
)

const (
	redisSessionPrefix  = "wardrobe:sess:"
	principalCacheSize  = 1024
	principalCacheTTL   = 30 * time.Second
	sessionReapDeadline = time.Minute
)

// ServiceDeps contains dependencies for building the application services.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // Required when the session store is redis
	Uploads     *filestore.Store
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Services is the wired application: the router inputs plus background workers.
type Services struct {
	Router httpx.RouterServices
	// Reaper purges expired session rows. Nil when the session backend expires records itself.
	Reaper *reaper.Runner
}

// NewServices builds repositories, services and the session store from deps.
func NewServices(deps *ServiceDeps) (*Services, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service dependencies are required")
	}
	if deps.DB == nil {
		return nil, errors.New("database is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backend, purger, err := buildSessionBackend(deps)
	if err != nil {
		return nil, err
	}
	sessionStore, err := websession.NewStore(backend, websession.Options{
		Secret: cfg.Session.Secret,
		MaxAge: cfg.Session.MaxAge,
		Domain: cfg.HTTP.CookieDomain,
		Secure: cfg.Session.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	provider, roles, err := BuildAuthProvider(cfg.Auth, logger)
	if err != nil {
		return nil, err
	}
	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Users:    data.NewUserRepo(deps.DB),
		Hasher:   password.BcryptHasher{},
		Provider: provider,
		Roles:    roles,
		Metrics:  deps.Metrics,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	productRepo := data.NewProductRepo(deps.DB)
	uploads := deps.Uploads
	if uploads == nil {
		uploads = filestore.New(cfg.HTTP.UploadsDir)
	}
	labels, err := service.NewLabelService(service.LabelServiceOptions{Products: productRepo})
	if err != nil {
		return nil, fmt.Errorf("label service: %w", err)
	}

	templateFS, staticFS, err := assetFS(cfg)
	if err != nil {
		return nil, err
	}
	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{
		TemplateFS: templateFS,
		DevMode:    cfg.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("template renderer: %w", err)
	}

	svcs := &Services{
		Router: httpx.RouterServices{
			Auth: authSvc,
			Products: service.NewProductService(service.ProductServiceOptions{
				Repo:          productRepo,
				Files:         uploads,
				MaxImageBytes: cfg.HTTP.MaxUploadBytes,
				Logger:        logger,
			}),
			Looks:    service.NewLookService(data.NewLookRepo(deps.DB)),
			Calendar: service.NewCalendarService(data.NewEventRepo(deps.DB), time.Now),
			Labels:   labels,

			Sessions:    sessionStore,
			SessionName: cfg.Session.Name,
			Renderer:    renderer,
			StaticFS:    staticFS,
			UploadsDir:  uploads.Dir(),

			CookieDomain:   cfg.HTTP.CookieDomain,
			CookieSecure:   cfg.Session.Secure,
			CORSOrigins:    cfg.HTTP.CORSOrigins,
			MaxUploadBytes: cfg.HTTP.MaxUploadBytes,

			DB:             deps.DB,
			Metrics:        deps.Metrics,
			LoginLimiter:   httpx.NewLoginRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst, logger),
			PrincipalCache: httpx.NewPrincipalCache(principalCacheSize, principalCacheTTL),
			Logger:         logger,
		},
	}

	if purger != nil {
		svcs.Reaper, err = newSessionReaper(purger, cfg.Session.ReapSchedule, deps.Metrics, logger)
		if err != nil {
			return nil, err
		}
	}
	return svcs, nil
}

// buildSessionBackend returns the session record store and, for stores without native
// expiry, the purger the reaper drives.
//
//nolint:ireturn // backend is selected by configuration.
func buildSessionBackend(deps *ServiceDeps) (ports.SessionStore, ports.SessionPurger, error) {
	switch deps.Config.Session.Store {
	case config.SessionBackendRedis:
		if deps.RedisClient == nil {
			return nil, nil, errors.New("redis session store selected but redis is not connected")
		}
		return redisadapter.NewSessionStoreWithPrefix(deps.RedisClient, redisSessionPrefix), nil, nil
	default:
		repo := data.NewSessionRepo(deps.DB)
		return repo, repo, nil
	}
}

func newSessionReaper(
	purger ports.SessionPurger,
	schedule string,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*reaper.Runner, error) {
	svc, err := service.NewSessionReaperService(service.SessionReaperServiceOptions{
		Purger:  purger,
		Logger:  logger,
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("session reaper service: %w", err)
	}
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		Purger:   svc,
		Schedule: schedule,
		Timeout:  sessionReapDeadline,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("session reaper: %w", err)
	}
	return runner, nil
}

// assetFS returns the template and static file systems. Dev mode reads from disk so edits
// show up without a rebuild; otherwise the embedded copies are used.
//
//nolint:ireturn // fs.FS is the common type of embed and os.DirFS.
func assetFS(cfg *config.AppConfig) (fs.FS, fs.FS, error) {
	if cfg.IsDev {
		return os.DirFS(cfg.HTTP.TemplateDir), os.DirFS(cfg.HTTP.StaticDir), nil
	}
	templates, err := fs.Sub(wardrobe.TemplateFS, "frontend/templates")
	if err != nil {
		return nil, nil, fmt.Errorf("embedded templates: %w", err)
	}
	static, err := fs.Sub(wardrobe.StaticFS, "frontend/static")
	if err != nil {
		return nil, nil, fmt.Errorf("embedded static files: %w", err)
	}
	return templates, static, nil
}
