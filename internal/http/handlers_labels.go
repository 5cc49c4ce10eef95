package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/target/wardrobe/internal/domain/model"
)

// LabelBuilder builds printable labels.
type LabelBuilder interface {
	Build(ctx context.Context, ownerID string, req *model.LabelRequest) (*model.Label, error)
}

// LabelHandlers serves /api/labels.
type LabelHandlers struct {
	Svc      LabelBuilder
	Renderer *TemplateRenderer
	Logger   *slog.Logger
}

func (h *LabelHandlers) build(r *http.Request) (*model.Label, error) {
	var req model.LabelRequest
	if err := DecodeQuery(r, &req); err != nil {
		return nil, err
	}
	return h.Svc.Build(r.Context(), ownerID(r), &req)
}

// Get returns a label as JSON.
// GET /api/labels?productName=&expiryDate=&productId=.
func (h *LabelHandlers) Get(w http.ResponseWriter, r *http.Request) {
	label, err := h.build(r)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, label)
}

// View renders the printable label page.
// GET /api/labels/view.
func (h *LabelHandlers) View(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	label, err := h.build(r)
	if err != nil {
		page := PageData{
			Request: NewRequestContext(r),
			View:    ViewError,
			Data:    ErrorView{Status: http.StatusBadRequest, Message: "The label could not be built: " + err.Error()},
		}
		if renderErr := h.Renderer.RenderPageStatus(w, http.StatusBadRequest, page); renderErr != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		}
		return
	}
	NewResponder(w, r, h.Renderer, logger).Render(ViewLabel, label)
}
