package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/target/wardrobe/internal/domain/model"
)

// EventLister returns the calendar events in a range.
type EventLister interface {
	Range(ctx context.Context, r model.EventRange) ([]*model.CalendarEvent, error)
}

// PageHandlers serves the top-level HTML pages.
type PageHandlers struct {
	Renderer *TemplateRenderer
	Events   EventLister
	Logger   *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *PageHandlers) responder(w http.ResponseWriter, r *http.Request) Responder {
	return NewResponder(w, r, h.Renderer, h.logger())
}

// Index renders the home page with the current identity.
// GET /.
func (h *PageHandlers) Index(w http.ResponseWriter, r *http.Request) {
	h.responder(w, r).Render(ViewIndex, nil)
}

// CalendarPageData is the data for the calendar view.
type CalendarPageData struct {
	Range  model.EventRange
	Events []*model.CalendarEvent
}

// Calendar renders the current month for the signed-in user.
// GET /calendar (guarded).
func (h *PageHandlers) Calendar(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	data := CalendarPageData{Range: model.EventRange{OwnerID: p.UserID}}
	if h.Events != nil {
		events, err := h.Events.Range(r.Context(), data.Range)
		if err != nil {
			h.logger().ErrorContext(r.Context(), "failed to load calendar events", "error", err)
			h.renderError(w, r, http.StatusInternalServerError, "The calendar could not be loaded.")
			return
		}
		data.Events = events
	}
	h.responder(w, r).Render(ViewCalendar, data)
}

// Protected is the canonical gated route.
// GET /protected (guarded).
func (h *PageHandlers) Protected(w http.ResponseWriter, r *http.Request) {
	h.responder(w, r).SendText("This is a protected route")
}

// NotFound renders the HTML not-found page.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
}

func (h *PageHandlers) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	page := PageData{
		Request: NewRequestContext(r),
		View:    ViewError,
		Data:    ErrorView{Status: status, Message: msg},
	}
	if err := h.Renderer.RenderPageStatus(w, status, page); err != nil {
		http.Error(w, http.StatusText(status), status)
	}
}
