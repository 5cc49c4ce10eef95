package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Phase is a step of application startup.
type Phase string

const (
	PhaseStarting   Phase = "STARTING"
	PhaseDBCheck    Phase = "DB_CHECK"
	PhaseSchemaInit Phase = "SCHEMA_INIT"
	PhaseListening  Phase = "LISTENING"
	PhaseFailed     Phase = "FAILED"
)

// ErrStartupFailed wraps every error that stops startup before the server listens.
var ErrStartupFailed = errors.New("startup failed")

// LifecycleSteps are the actions performed on entering each startup phase.
// A nil step is skipped.
type LifecycleSteps struct {
	CheckDB    func(ctx context.Context) error
	InitSchema func(ctx context.Context) error
	Listen     func(ctx context.Context) error
}

// Lifecycle drives STARTING → DB_CHECK → SCHEMA_INIT → LISTENING. Any step error moves it
// to FAILED, which is terminal: there is no retry and later steps never run.
type Lifecycle struct {
	steps  LifecycleSteps
	logger *slog.Logger

	mu      sync.Mutex
	phase   Phase
	history []Phase
}

// NewLifecycle returns a lifecycle in the STARTING phase.
func NewLifecycle(steps LifecycleSteps, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{
		steps:   steps,
		logger:  logger.With("component", "lifecycle"),
		phase:   PhaseStarting,
		history: []Phase{PhaseStarting},
	}
}

// Phase returns the current phase.
func (l *Lifecycle) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// History returns every phase entered so far, in order.
func (l *Lifecycle) History() []Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Phase(nil), l.history...)
}

func (l *Lifecycle) enter(p Phase) {
	l.mu.Lock()
	l.phase = p
	l.history = append(l.history, p)
	l.mu.Unlock()
}

// Start runs the startup steps. It may be called once; a second call returns an error.
func (l *Lifecycle) Start(ctx context.Context) error {
	if l.Phase() != PhaseStarting {
		return fmt.Errorf("%w: lifecycle already in phase %s", ErrStartupFailed, l.Phase())
	}

	for _, s := range []struct {
		phase Phase
		run   func(ctx context.Context) error
	}{
		{PhaseDBCheck, l.steps.CheckDB},
		{PhaseSchemaInit, l.steps.InitSchema},
		{PhaseListening, l.steps.Listen},
	} {
		l.enter(s.phase)
		l.logger.InfoContext(ctx, "entering phase", "phase", s.phase)
		if s.run == nil {
			continue
		}
		if err := s.run(ctx); err != nil {
			l.enter(PhaseFailed)
			l.logger.ErrorContext(ctx, "startup failed", "phase", s.phase, "error", err)
			return fmt.Errorf("%w in %s: %w", ErrStartupFailed, s.phase, err)
		}
	}
	return nil
}
