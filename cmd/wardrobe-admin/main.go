package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/target/wardrobe/config"
	"github.com/target/wardrobe/internal/bootstrap"
	"github.com/target/wardrobe/internal/data"
	"github.com/target/wardrobe/internal/migrate"
	"github.com/target/wardrobe/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdin  io.Reader
	Stdout io.Writer
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = time.Minute
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	stop()
	if runErr != nil {
		if errors.Is(runErr, flag.ErrHelp) {
			os.Exit(0) //nolint:forbidigo // -h is not a failure
		}
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations (use --pending to list without applying)",
			run:         runMigrations,
		},
		"create-user": {
			name:        "create-user",
			description: "Create a local account with a password",
			run:         runCreateUser,
		},
		"purge-sessions": {
			name:        "purge-sessions",
			description: "Delete expired session records from Postgres",
			run:         runPurgeSessions,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: wardrobe-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
	Pending bool
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")
	fs.BoolVar(&opts.Pending, "pending", false, "List migrations that have not been applied and exit")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	return withDB(ctx, cmdCtx, func(ctx context.Context, db *sql.DB) error {
		if opts.Pending {
			pending, err := migrate.Pending(ctx, db, migrate.Migrations())
			if err != nil {
				return fmt.Errorf("list pending migrations: %w", err)
			}
			if len(pending) == 0 {
				return writeln(cmdCtx.Stdout, "No pending migrations")
			}
			for _, name := range pending {
				if err := writeln(cmdCtx.Stdout, name); err != nil {
					return err
				}
			}
			return nil
		}

		cmdCtx.Logger.InfoContext(ctx, "running database migrations")
		if err := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); err != nil {
			return err
		}
		return writeln(cmdCtx.Stdout, "Migrations complete")
	})
}

type purgeOptions struct {
	Timeout time.Duration
}

func parsePurgeFlags(args []string) (purgeOptions, error) {
	fs := flag.NewFlagSet("purge-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := purgeOptions{Timeout: defaultCommandTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration of the purge")

	if err := fs.Parse(args); err != nil {
		return purgeOptions{}, err
	}
	if opts.Timeout <= 0 {
		return purgeOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runPurgeSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parsePurgeFlags(args)
	if err != nil {
		return err
	}
	if cmdCtx.Config.Session.Store != config.SessionBackendPostgres {
		return fmt.Errorf("session store is %q; only postgres sessions need purging", cmdCtx.Config.Session.Store)
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	return withDB(ctx, cmdCtx, func(ctx context.Context, db *sql.DB) error {
		reaper, err := service.NewSessionReaperService(service.SessionReaperServiceOptions{
			Purger: data.NewSessionRepo(db),
			Logger: cmdCtx.Logger,
		})
		if err != nil {
			return err
		}
		n, err := reaper.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("purge sessions: %w", err)
		}
		return writef(cmdCtx.Stdout, "Deleted %d expired sessions\n", n)
	})
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
