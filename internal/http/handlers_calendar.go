package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/target/wardrobe/internal/domain/model"
)

// CalendarService is the calendar behaviour the event handlers depend on.
type CalendarService interface {
	EventLister
	Create(ctx context.Context, ownerID string, req *model.CreateEventRequest) (*model.CalendarEvent, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// CalendarHandlers serves the /calendar/events JSON API.
type CalendarHandlers struct {
	Svc CalendarService
}

type eventRangeQuery struct {
	From time.Time `schema:"from"`
	To   time.Time `schema:"to"`
}

// List returns events overlapping [from, to). Both bounds are optional.
// GET /calendar/events?from=&to=.
func (h *CalendarHandlers) List(w http.ResponseWriter, r *http.Request) {
	var q eventRangeQuery
	if err := DecodeQuery(r, &q); err != nil {
		WriteServiceError(w, err)
		return
	}
	events, err := h.Svc.Range(r.Context(), model.EventRange{OwnerID: ownerID(r), From: q.From, To: q.To})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if events == nil {
		events = []*model.CalendarEvent{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": events})
}

// Create schedules an event from JSON or a form post.
// POST /calendar/events.
func (h *CalendarHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if isJSONRequest(r) {
		if !DecodeJSON(w, r, &req) {
			return
		}
	} else if err := DecodeForm(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}
	ev, err := h.Svc.Create(r.Context(), ownerID(r), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ev)
}

// Delete removes an event.
// DELETE /calendar/events/{id}.
func (h *CalendarHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id"), ownerID(r)); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

