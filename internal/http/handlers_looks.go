package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/target/wardrobe/internal/domain/model"
	"github.com/target/wardrobe/internal/service"
	"github.com/target/wardrobe/internal/websession"
)

// LookService is the look behaviour the look handlers depend on.
type LookService interface {
	Create(ctx context.Context, ownerID string, req *model.CreateLookRequest) (*model.Look, error)
	List(ctx context.Context, ownerID string) ([]service.LookView, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// LookHandlers serves the /look page and its JSON API.
type LookHandlers struct {
	Svc      LookService
	Renderer *TemplateRenderer
	Logger   *slog.Logger
}

func (h *LookHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// LooksPageData is the data for the looks view.
type LooksPageData struct {
	Looks []service.LookView
}

// Page lists the caller's looks.
// GET /look (guarded).
func (h *LookHandlers) Page(w http.ResponseWriter, r *http.Request) {
	looks, err := h.Svc.List(r.Context(), ownerID(r))
	if err != nil {
		h.logger().ErrorContext(r.Context(), "failed to list looks", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	NewResponder(w, r, h.Renderer, h.logger()).Render(ViewLooks, LooksPageData{Looks: looks})
}

// List returns the caller's looks as JSON.
// GET /look/api.
func (h *LookHandlers) List(w http.ResponseWriter, r *http.Request) {
	looks, err := h.Svc.List(r.Context(), ownerID(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	out := make([]*model.Look, 0, len(looks))
	for _, l := range looks {
		out = append(out, l.Look)
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

// Create stores a look. JSON callers get the look back; form posts redirect to /look
// with a flash.
// POST /look.
func (h *LookHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLookRequest
	jsonReq := isJSONRequest(r)
	if jsonReq {
		if !DecodeJSON(w, r, &req) {
			return
		}
	} else if err := DecodeForm(r, &req); err != nil {
		h.formResult(w, r, "", err)
		return
	}

	look, err := h.Svc.Create(r.Context(), ownerID(r), &req)
	if jsonReq {
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, look)
		return
	}
	if err != nil {
		h.formResult(w, r, "", err)
		return
	}
	h.formResult(w, r, "Saved look "+look.Name+".", nil)
}

func (h *LookHandlers) formResult(w http.ResponseWriter, r *http.Request, ok string, err error) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		if err != nil {
			websession.AddError(sess, "The look could not be saved: "+err.Error())
		} else {
			websession.AddSuccess(sess, ok)
		}
		if saveErr := sess.Save(r, w); saveErr != nil {
			h.logger().WarnContext(r.Context(), "failed to save flash", "error", saveErr)
		}
	}
	http.Redirect(w, r, "/look", http.StatusFound)
}

// Delete removes a look.
// DELETE /look/{id}.
func (h *LookHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id"), ownerID(r)); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
