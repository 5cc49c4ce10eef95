// Package reaper runs the expired-session purge on a cron schedule.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultTimeout bounds a single purge run.
const DefaultTimeout = time.Minute

// Purger runs one purge pass. *service.SessionReaperService satisfies it.
type Purger interface {
	RunOnce(ctx context.Context) (int64, error)
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Purger   Purger // Required
	Schedule string // Required: cron spec, e.g. "@every 15m" or "*/10 * * * *"
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Runner schedules purge passes. Overlapping runs are skipped and panics are recovered.
type Runner struct {
	purger   Purger
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRunner validates the schedule and returns a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Purger == nil {
		return nil, errors.New("purger is required")
	}
	if _, err := cron.ParseStandard(opts.Schedule); err != nil {
		return nil, fmt.Errorf("invalid reap schedule %q: %w", opts.Schedule, err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		purger:   opts.Purger,
		schedule: opts.Schedule,
		timeout:  opts.Timeout,
		logger:   opts.Logger.With("component", "session_reaper_runner"),
	}, nil
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for an in-flight run.
func (r *Runner) Run(ctx context.Context) error {
	logger := cronLogger{l: r.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger), cron.Recover(logger)),
	)
	if _, err := c.AddFunc(r.schedule, func() { r.runOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule session reaper: %w", err)
	}

	r.logger.InfoContext(ctx, "starting session reaper", "schedule", r.schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	r.logger.InfoContext(context.WithoutCancel(ctx), "session reaper stopped")
	return nil
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	// Errors are logged and counted by the purger.
	_, _ = r.purger.RunOnce(runCtx)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
