package service

import (
	"context"
	"time"

	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/ports"
)

// MaxEventRange bounds how wide a single calendar query may be.
const MaxEventRange = 366 * 24 * time.Hour

// CalendarService schedules looks and notes on a calendar.
type CalendarService struct {
	repo ports.EventRepository
	now  func() time.Time
}

// NewCalendarService constructs a new CalendarService. A nil now uses time.Now.
func NewCalendarService(repo ports.EventRepository, now func() time.Time) *CalendarService {
	if now == nil {
		now = time.Now
	}
	return &CalendarService{repo: repo, now: now}
}

// Range returns the owner's events overlapping r. A zero window defaults to the current month.
func (s *CalendarService) Range(ctx context.Context, r model.EventRange) ([]*model.CalendarEvent, error) {
	if r.From.IsZero() && r.To.IsZero() {
		r = model.DefaultEventRange(r.OwnerID, s.now().UTC())
	}
	if r.From.IsZero() {
		r.From = r.To.AddDate(0, -1, 0)
	}
	if r.To.IsZero() {
		r.To = r.From.AddDate(0, 1, 0)
	}
	if !r.To.After(r.From) {
		return nil, apperrors.ValidationField("to", "must be after from")
	}
	if r.To.Sub(r.From) > MaxEventRange {
		return nil, apperrors.ValidationField("to", "range may span at most one year")
	}
	return s.repo.ListRange(ctx, r)
}

// Create schedules an event.
func (s *CalendarService) Create(ctx context.Context, ownerID string, req *model.CreateEventRequest) (*model.CalendarEvent, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthorized("owner is required")
	}
	return s.repo.Create(ctx, ownerID, req)
}

// Delete removes an event owned by ownerID.
func (s *CalendarService) Delete(ctx context.Context, id, ownerID string) error {
	ok, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("event not found")
	}
	return nil
}
