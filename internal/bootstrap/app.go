package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/wardrobe/config"
	httpx "github.com/target/wardrobe/internal/http"
	"github.com/target/wardrobe/internal/observability/metrics"
)

// App is the wardrobe server process: configuration, shared connections and the
// startup lifecycle.
type App struct {
	cfg    *config.AppConfig
	logger *slog.Logger

	db          *sql.DB
	redisClient redis.UniversalClient
	services    *Services
	server      *HTTPServer
	lifecycle   *Lifecycle
}

// NewApp returns an application for cfg. Nothing is connected until Run.
func NewApp(cfg *config.AppConfig, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger}
}

// Phase reports the startup phase the application has reached.
func (a *App) Phase() Phase {
	if a.lifecycle == nil {
		return PhaseStarting
	}
	return a.lifecycle.Phase()
}

// Run starts the application and blocks until SIGINT/SIGTERM or a fatal error.
// Startup failures are returned without retry and nothing is left listening.
func (a *App) Run(ctx context.Context) (err error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	LogStartupInfo(ctx, a.logger, a.cfg)
	defer func() {
		if cerr := a.close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	uploads, err := EnsureUploadsDir(ctx, a.cfg.HTTP.UploadsDir, a.logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStartupFailed, err)
	}
	if a.db, err = OpenDB(DatabaseConfig{DBConfig: a.cfg.Postgres, Logger: a.logger}); err != nil {
		return fmt.Errorf("%w: %w", ErrStartupFailed, err)
	}
	m := metrics.New()

	a.lifecycle = NewLifecycle(LifecycleSteps{
		CheckDB: a.checkConnections,
		InitSchema: func(ctx context.Context) error {
			if !a.cfg.Postgres.RunMigrationsOnStart {
				a.logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
				return nil
			}
			return RunMigrations(ctx, a.db, a.logger)
		},
		Listen: func(ctx context.Context) error {
			svcs, err := NewServices(&ServiceDeps{
				Config:      a.cfg,
				DB:          a.db,
				RedisClient: a.redisClient,
				Uploads:     uploads,
				Metrics:     m,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			a.services = svcs
			a.server = NewHTTPServer(a.cfg.HTTP.Addr(), httpx.NewRouter(svcs.Router), a.logger)
			return a.server.Listen(ctx)
		},
	}, a.logger)

	if err := a.lifecycle.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.server.Serve(gctx) })
	if a.services.Reaper != nil {
		g.Go(func() error { return a.services.Reaper.Run(gctx) })
	}
	return g.Wait()
}

func (a *App) checkConnections(ctx context.Context) error {
	if err := PingDB(ctx, a.db); err != nil {
		return err
	}
	if a.cfg.Session.Store != config.SessionBackendRedis {
		return nil
	}
	client, err := ConnectRedis(ctx, DatabaseConfig{RedisConfig: a.cfg.Redis, Logger: a.logger})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	a.redisClient = client
	return nil
}

func (a *App) close() error {
	var errs []error
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
