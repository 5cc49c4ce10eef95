package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/wardrobe/internal/observability/metrics"
	"github.com/target/wardrobe/internal/ports"
)

// SessionReaperServiceOptions groups dependencies for SessionReaperService.
type SessionReaperServiceOptions struct {
	Purger  ports.SessionPurger // Required: store that can delete expired records
	Logger  *slog.Logger        // Optional: structured logger
	Metrics *metrics.Metrics    // Optional: Prometheus collectors
	Now     func() time.Time    // Optional: clock, defaults to time.Now
}

// SessionReaperService deletes expired session records from stores that lack native expiry.
type SessionReaperService struct {
	purger  ports.SessionPurger
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSessionReaperService constructs a new SessionReaperService.
func NewSessionReaperService(opts SessionReaperServiceOptions) (*SessionReaperService, error) {
	if opts.Purger == nil {
		return nil, errors.New("SessionPurger is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SessionReaperService{
		purger:  opts.Purger,
		logger:  logger.With("component", "session_reaper"),
		metrics: opts.Metrics,
		now:     now,
	}, nil
}

// RunOnce purges every record that expired at or before now.
func (s *SessionReaperService) RunOnce(ctx context.Context) (int64, error) {
	start := s.now()
	n, err := s.purger.PurgeExpired(ctx, start)
	s.metrics.RecordReap(n, err)
	if err != nil {
		if isContextCancellation(err) {
			s.logger.DebugContext(ctx, "session purge canceled", "error", err)
		} else {
			s.logger.ErrorContext(ctx, "session purge failed", "error", err)
		}
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "purged expired sessions", "count", n, "duration", s.now().Sub(start))
	}
	return n, nil
}

// isContextCancellation reports whether err stems from a canceled or timed out context.
func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
